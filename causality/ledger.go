package causality

import (
	"sync"

	"github.com/hupe1980/agentphysics/core"
)

// Ledger is the in-memory event ledger. It is safe for concurrent use:
// reads proceed in parallel, insertions serialize through one critical
// section so "parents exist" and "insert self" happen as a single atomic
// step. Committed nodes are immutable and retained for the ledger's
// lifetime.
type Ledger struct {
	mu     sync.RWMutex
	nodes  map[string]core.EventNode
	seq    uint64
	strict bool
}

// NewLedger constructs an empty ledger. With strict ordering enabled,
// timestamp ties with a parent are rejected unless the proposed node is
// content-identical (same parent set and timestamp) to an existing node.
func NewLedger(strict bool) *Ledger {
	return &Ledger{nodes: make(map[string]core.EventNode), strict: strict}
}

// Validate checks a descriptor against the current ledger snapshot without
// mutating anything. The checks run in a fixed order: unresolved parents,
// causal ordering, duplicate identifier.
func (l *Ledger) Validate(desc core.EventDescriptor) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.checkLocked(desc)
}

// Stage validates the descriptor and, on success, returns a StagedEvent
// holding the ledger's write lock. Exactly one of Commit or Abort must be
// called on the returned stage. On failure nothing is held and nothing
// was mutated.
func (l *Ledger) Stage(desc core.EventDescriptor) (*StagedEvent, error) {
	l.mu.Lock()
	if err := l.checkLocked(desc); err != nil {
		l.mu.Unlock()
		return nil, err
	}
	return &StagedEvent{ledger: l, desc: desc}, nil
}

// Contains reports whether an event id has been committed.
func (l *Ledger) Contains(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.nodes[id]
	return ok
}

// Get returns a committed node by id.
func (l *Ledger) Get(id string) (core.EventNode, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n, ok := l.nodes[id]
	return n, ok
}

// Size returns the number of committed events.
func (l *Ledger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.nodes)
}

// checkLocked runs the causal admission checks. Caller holds at least the
// read lock.
func (l *Ledger) checkLocked(desc core.EventDescriptor) error {
	var maxParent core.EventNode
	haveParent := false
	for _, pid := range desc.Parents {
		parent, ok := l.nodes[pid]
		if !ok {
			return &core.UnknownParentError{EventID: desc.ID, Parent: pid}
		}
		if !haveParent || parent.Timestamp.After(maxParent.Timestamp) {
			maxParent = parent
			haveParent = true
		}
	}

	if haveParent {
		ts := desc.Timestamp
		switch {
		case ts.Before(maxParent.Timestamp):
			return &core.CausalOrderError{
				EventID:         desc.ID,
				Timestamp:       ts,
				ParentTimestamp: maxParent.Timestamp,
			}
		case l.strict && ts.Equal(maxParent.Timestamp) && !l.contentIdenticalLocked(desc):
			return &core.CausalOrderError{
				EventID:         desc.ID,
				Timestamp:       ts,
				ParentTimestamp: maxParent.Timestamp,
			}
		}
	}

	if _, ok := l.nodes[desc.ID]; ok {
		return &core.DuplicateEventError{EventID: desc.ID}
	}
	return nil
}

// contentIdenticalLocked reports whether some committed node shares the
// descriptor's parent set and timestamp. Nodes carry no payload, so this
// is the content-identity used to permit ties in strict mode.
func (l *Ledger) contentIdenticalLocked(desc core.EventDescriptor) bool {
	for _, n := range l.nodes {
		if n.Timestamp.Equal(desc.Timestamp) && sameParentSet(n.Parents, desc.Parents) {
			return true
		}
	}
	return false
}

func sameParentSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

// StagedEvent is a validated insertion holding the ledger write lock.
type StagedEvent struct {
	ledger *Ledger
	desc   core.EventDescriptor
	done   bool
}

// Commit inserts the node and releases the lock. It returns the committed
// node.
func (s *StagedEvent) Commit() core.EventNode {
	if s.done {
		panic("causality: staged event already finished")
	}
	s.done = true
	s.ledger.seq++
	node := core.EventNode{
		ID:        s.desc.ID,
		Parents:   append([]string(nil), s.desc.Parents...),
		Timestamp: s.desc.Timestamp,
		Seq:       s.ledger.seq,
	}
	s.ledger.nodes[node.ID] = node
	s.ledger.mu.Unlock()
	return node
}

// Abort releases the lock without mutating the ledger.
func (s *StagedEvent) Abort() {
	if s.done {
		return
	}
	s.done = true
	s.ledger.mu.Unlock()
}

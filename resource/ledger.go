package resource

import (
	"sync"
	"time"

	"github.com/hupe1980/agentphysics/core"
)

// Budgets declares the configured budget per entity per resource kind.
// Entities or kinds absent from the map have a budget of zero.
type Budgets map[core.EntityID]map[core.ResourceKind]float64

type shardKey struct {
	entity core.EntityID
	kind   core.ResourceKind
}

// shard serializes allocations for one (entity, kind) pair.
type shard struct {
	mu     sync.Mutex
	used   float64
	allocs map[core.AllocationRef]core.Allocation
}

// Ledger tracks live allocations against configured budgets. Budgets are
// immutable after construction; usage mutates under per-shard locks.
type Ledger struct {
	budgets Budgets

	mu     sync.Mutex // guards shards map creation only
	shards map[shardKey]*shard

	refsMu sync.Mutex // guards the ref -> shard index
	refs   map[core.AllocationRef]shardKey
}

// NewLedger constructs a ledger with the given budgets. The map is copied
// so callers cannot mutate budgets after construction.
func NewLedger(budgets Budgets) *Ledger {
	copied := make(Budgets, len(budgets))
	for entity, kinds := range budgets {
		inner := make(map[core.ResourceKind]float64, len(kinds))
		for k, v := range kinds {
			inner[k] = v
		}
		copied[entity] = inner
	}
	return &Ledger{
		budgets: copied,
		shards:  make(map[shardKey]*shard),
		refs:    make(map[core.AllocationRef]shardKey),
	}
}

// Budget returns the configured budget for an entity and kind. The second
// return value is false when no budget was configured.
func (l *Ledger) Budget(entity core.EntityID, kind core.ResourceKind) (float64, bool) {
	kinds, ok := l.budgets[entity]
	if !ok {
		return 0, false
	}
	b, ok := kinds[kind]
	return b, ok
}

// Usage returns the live allocation sum for an entity and kind.
func (l *Ledger) Usage(entity core.EntityID, kind core.ResourceKind) float64 {
	sh := l.shard(shardKey{entity, kind})
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.used
}

// Validate checks a request against the current snapshot without reserving
// anything. A zero amount always passes.
func (l *Ledger) Validate(entity core.EntityID, req core.ResourceRequest) error {
	if req.Amount == 0 {
		return nil
	}
	key := shardKey{entity, req.Kind}
	budget, _ := l.Budget(entity, req.Kind)
	sh := l.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return checkHeadroom(req, sh.used, budget)
}

// Stage atomically checks headroom and, on success, returns a
// StagedAllocation holding the shard lock. Exactly one of Commit or Abort
// must be called. Requests for distinct (entity, kind) pairs stage without
// contention.
func (l *Ledger) Stage(entity core.EntityID, req core.ResourceRequest) (*StagedAllocation, error) {
	key := shardKey{entity, req.Kind}
	budget, _ := l.Budget(entity, req.Kind)
	sh := l.shard(key)
	sh.mu.Lock()
	if err := checkHeadroom(req, sh.used, budget); err != nil {
		sh.mu.Unlock()
		return nil, err
	}
	return &StagedAllocation{ledger: l, key: key, sh: sh, entity: entity, req: req}, nil
}

// Release frees a live allocation, returning its amount to the entity's
// headroom. Releasing an unknown reference fails with UnknownAllocation.
func (l *Ledger) Release(ref core.AllocationRef) error {
	l.refsMu.Lock()
	key, ok := l.refs[ref]
	l.refsMu.Unlock()
	if !ok {
		return &core.UnknownAllocationError{Ref: ref}
	}

	sh := l.shard(key)
	sh.mu.Lock()
	alloc, ok := sh.allocs[ref]
	if !ok {
		sh.mu.Unlock()
		return &core.UnknownAllocationError{Ref: ref}
	}
	delete(sh.allocs, ref)
	sh.used -= alloc.Amount
	sh.mu.Unlock()

	l.refsMu.Lock()
	delete(l.refs, ref)
	l.refsMu.Unlock()
	return nil
}

// ReleaseEntity frees every live allocation of an entity (teardown).
func (l *Ledger) ReleaseEntity(entity core.EntityID) {
	for _, kind := range core.Kinds() {
		sh := l.shard(shardKey{entity, kind})
		sh.mu.Lock()
		refs := make([]core.AllocationRef, 0, len(sh.allocs))
		for ref := range sh.allocs {
			refs = append(refs, ref)
		}
		for _, ref := range refs {
			sh.used -= sh.allocs[ref].Amount
			delete(sh.allocs, ref)
		}
		sh.mu.Unlock()

		l.refsMu.Lock()
		for _, ref := range refs {
			delete(l.refs, ref)
		}
		l.refsMu.Unlock()
	}
}

// UsageSnapshot returns the live allocation sum per entity per kind for
// every pair that currently has usage.
func (l *Ledger) UsageSnapshot() map[core.EntityID]map[core.ResourceKind]float64 {
	l.mu.Lock()
	keys := make([]shardKey, 0, len(l.shards))
	for key := range l.shards {
		keys = append(keys, key)
	}
	l.mu.Unlock()

	snap := make(map[core.EntityID]map[core.ResourceKind]float64)
	for _, key := range keys {
		sh := l.shard(key)
		sh.mu.Lock()
		used := sh.used
		sh.mu.Unlock()
		if used == 0 {
			continue
		}
		if snap[key.entity] == nil {
			snap[key.entity] = make(map[core.ResourceKind]float64)
		}
		snap[key.entity][key.kind] = used
	}
	return snap
}

// LiveAllocations returns the number of unreleased allocations.
func (l *Ledger) LiveAllocations() int {
	l.mu.Lock()
	keys := make([]shardKey, 0, len(l.shards))
	for key := range l.shards {
		keys = append(keys, key)
	}
	l.mu.Unlock()

	total := 0
	for _, key := range keys {
		sh := l.shard(key)
		sh.mu.Lock()
		total += len(sh.allocs)
		sh.mu.Unlock()
	}
	return total
}

func (l *Ledger) shard(key shardKey) *shard {
	l.mu.Lock()
	defer l.mu.Unlock()
	sh, ok := l.shards[key]
	if !ok {
		sh = &shard{allocs: make(map[core.AllocationRef]core.Allocation)}
		l.shards[key] = sh
	}
	return sh
}

func checkHeadroom(req core.ResourceRequest, used, budget float64) error {
	if used+req.Amount > budget {
		return &core.InsufficientResourceError{
			Kind:      req.Kind,
			Required:  req.Amount,
			Available: budget - used,
		}
	}
	return nil
}

// StagedAllocation is a validated reservation holding its shard lock.
type StagedAllocation struct {
	ledger *Ledger
	key    shardKey
	sh     *shard
	entity core.EntityID
	req    core.ResourceRequest
	done   bool
}

// Commit records the allocation, releases the shard lock and returns the
// minted allocation reference.
func (s *StagedAllocation) Commit() core.Allocation {
	if s.done {
		panic("resource: staged allocation already finished")
	}
	s.done = true
	alloc := core.Allocation{
		Ref:         core.AllocationRef(core.NewID()),
		Entity:      s.entity,
		Kind:        s.req.Kind,
		Amount:      s.req.Amount,
		AllocatedAt: time.Now().UTC(),
	}
	s.sh.allocs[alloc.Ref] = alloc
	s.sh.used += alloc.Amount
	s.sh.mu.Unlock()

	s.ledger.refsMu.Lock()
	s.ledger.refs[alloc.Ref] = s.key
	s.ledger.refsMu.Unlock()
	return alloc
}

// Abort releases the shard lock without reserving anything.
func (s *StagedAllocation) Abort() {
	if s.done {
		return
	}
	s.done = true
	s.sh.mu.Unlock()
}

// Package energy implements conservation accounting for computational
// energy. Total system energy is a conserved quantity: it can be allocated
// from the free pool, transferred between entities and dissipated by
// decay, but never created. Every mutation re-verifies the conservation
// invariant before it becomes visible.
package energy

import (
	"math"
	"sync"
	"time"

	"github.com/hupe1980/agentphysics/core"
)

// Config tunes the conservation rules.
type Config struct {
	// TotalSystemEnergy is the conserved total, normalized around 1.0.
	TotalSystemEnergy float64
	// DecayRate is the energy an idle entity loses per second.
	DecayRate float64
	// DormancyThreshold is the level below which an entity is considered
	// dormant. Purely informational; decay removes fully drained entities.
	DormancyThreshold float64
}

// DefaultConfig mirrors the conventional normalized defaults.
func DefaultConfig() Config {
	return Config{
		TotalSystemEnergy: 1.0,
		DecayRate:         0.01,
		DormancyThreshold: 0.05,
	}
}

// Transaction records one energy movement. From is nil for allocations out
// of the system's free pool.
type Transaction struct {
	ID        string         `json:"id"`
	From      *core.EntityID `json:"from,omitempty"`
	To        core.EntityID  `json:"to"`
	Amount    float64        `json:"amount"`
	Timestamp time.Time      `json:"timestamp"`
}

// Ledger tracks per-entity energy under a single mutex; energy operations
// are infrequent relative to resource checks, so one critical section
// keeps the conservation verification trivially atomic.
type Ledger struct {
	mu          sync.Mutex
	cfg         Config
	allocations map[core.EntityID]float64
	log         []Transaction
}

// NewLedger constructs a ledger with all energy in the free pool.
func NewLedger(cfg Config) *Ledger {
	return &Ledger{cfg: cfg, allocations: make(map[core.EntityID]float64)}
}

// Allocate moves energy from the system free pool to an entity.
func (l *Ledger) Allocate(entity core.EntityID, amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	free := l.cfg.TotalSystemEnergy - l.totalAllocatedLocked()
	if amount > free {
		return &core.InsufficientEnergyError{Requested: amount, Available: free}
	}

	l.allocations[entity] += amount
	l.appendLocked(Transaction{
		ID:        core.NewID(),
		To:        entity,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	})
	return l.verifyConservationLocked()
}

// Transfer moves energy between entities as one atomic step.
func (l *Ledger) Transfer(from, to core.EntityID, amount float64) (Transaction, error) {
	staged, err := l.Stage(from, to, amount)
	if err != nil {
		return Transaction{}, err
	}
	return staged.Commit(), nil
}

// Stage validates a transfer and holds the ledger lock until Commit or
// Abort, so the admission pipeline can line it up with other staged
// ledger mutations.
func (l *Ledger) Stage(from, to core.EntityID, amount float64) (*StagedTransfer, error) {
	l.mu.Lock()
	source, ok := l.allocations[from]
	if !ok {
		l.mu.Unlock()
		return nil, &core.UnknownEntityError{Entity: from}
	}
	if source < amount {
		l.mu.Unlock()
		return nil, &core.InsufficientEnergyError{Requested: amount, Available: source}
	}
	return &StagedTransfer{ledger: l, from: from, to: to, amount: amount}, nil
}

// ApplyDecay drains every entity by DecayRate * elapsedSeconds, removing
// fully drained entities. Dissipated energy returns to the free pool.
func (l *Ledger) ApplyDecay(elapsedSeconds float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	loss := l.cfg.DecayRate * elapsedSeconds
	for entity, level := range l.allocations {
		next := math.Max(level-loss, 0)
		if next == 0 {
			delete(l.allocations, entity)
			continue
		}
		l.allocations[entity] = next
	}
}

// EntityEnergy returns the current allocation of an entity (zero when
// unknown).
func (l *Ledger) EntityEnergy(entity core.EntityID) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allocations[entity]
}

// ReleaseEntity returns an entity's allocation to the free pool
// (teardown).
func (l *Ledger) ReleaseEntity(entity core.EntityID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.allocations, entity)
}

// History returns a copy of the transaction log.
func (l *Ledger) History() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Transaction, len(l.log))
	copy(out, l.log)
	return out
}

// State returns the current conservation state with distribution
// statistics over active entities.
func (l *Ledger) State() core.EnergyState {
	l.mu.Lock()
	defer l.mu.Unlock()

	allocated := l.totalAllocatedLocked()
	state := core.EnergyState{
		TotalEnergy:     l.cfg.TotalSystemEnergy,
		AllocatedEnergy: allocated,
		FreeEnergy:      l.cfg.TotalSystemEnergy - allocated,
		ActiveEntities:  len(l.allocations),
	}
	if len(l.allocations) == 0 {
		return state
	}

	mean := allocated / float64(len(l.allocations))
	variance := 0.0
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, level := range l.allocations {
		variance += (level - mean) * (level - mean)
		min = math.Min(min, level)
		max = math.Max(max, level)
	}
	state.Distribution = core.EnergyDistribution{
		Mean:     mean,
		Variance: variance / float64(len(l.allocations)),
		Min:      min,
		Max:      max,
	}
	return state
}

func (l *Ledger) totalAllocatedLocked() float64 {
	total := 0.0
	for _, level := range l.allocations {
		total += level
	}
	return total
}

func (l *Ledger) appendLocked(tx Transaction) {
	l.log = append(l.log, tx)
}

// verifyConservationLocked rejects states where allocations exceed the
// system total beyond floating point noise.
func (l *Ledger) verifyConservationLocked() error {
	const epsilon = 1e-10
	allocated := l.totalAllocatedLocked()
	if allocated > l.cfg.TotalSystemEnergy+epsilon {
		return &core.ConservationError{Total: l.cfg.TotalSystemEnergy, Allocated: allocated}
	}
	return nil
}

// StagedTransfer is a validated transfer holding the ledger lock.
type StagedTransfer struct {
	ledger *Ledger
	from   core.EntityID
	to     core.EntityID
	amount float64
	done   bool
}

// Commit applies the transfer, records it and releases the lock.
func (s *StagedTransfer) Commit() Transaction {
	if s.done {
		panic("energy: staged transfer already finished")
	}
	s.done = true
	l := s.ledger
	l.allocations[s.from] -= s.amount
	l.allocations[s.to] += s.amount
	from := s.from
	tx := Transaction{
		ID:        core.NewID(),
		From:      &from,
		To:        s.to,
		Amount:    s.amount,
		Timestamp: time.Now().UTC(),
	}
	l.appendLocked(tx)
	l.mu.Unlock()
	return tx
}

// Abort releases the lock without moving anything.
func (s *StagedTransfer) Abort() {
	if s.done {
		return
	}
	s.done = true
	s.ledger.mu.Unlock()
}

package sink

import (
	"context"
	"sync"

	"github.com/hupe1980/agentphysics/core"
)

// InMemory is a volatile Sink implementation storing records in process
// local slices. It is safe for concurrent access and best suited for
// tests or ephemeral demo setups.
type InMemory struct {
	mu         sync.RWMutex
	admissions []core.AdmissionReceipt
	snapshots  []core.Statistics
}

// NewInMemory constructs an empty in-memory sink.
func NewInMemory() *InMemory { return &InMemory{} }

// RecordAdmission appends the receipt.
func (s *InMemory) RecordAdmission(_ context.Context, receipt core.AdmissionReceipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admissions = append(s.admissions, receipt)
	return nil
}

// RecordSnapshot appends the snapshot.
func (s *InMemory) RecordSnapshot(_ context.Context, stats core.Statistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, stats)
	return nil
}

// Admissions returns a copy of the recorded receipts.
func (s *InMemory) Admissions() []core.AdmissionReceipt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.AdmissionReceipt, len(s.admissions))
	copy(out, s.admissions)
	return out
}

// Snapshots returns a copy of the recorded snapshots.
func (s *InMemory) Snapshots() []core.Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Statistics, len(s.snapshots))
	copy(out, s.snapshots)
	return out
}

// Package agentphysics provides a high-level façade over the admission
// engine governing operations issued by autonomous agents. Most
// applications interact with this package by:
//  1. Creating a System via New() or from a configuration document
//     (FromConfig / FromFile)
//  2. Submitting operations for admission (Admit)
//  3. Managing capabilities, allocations and energy through the
//     administrative surface
//
// The façade delegates validation and commit to engine.Engine while
// keeping setup and usage ergonomics concise. All defaults are safe for
// local development and testing; production deployments typically supply
// a persistent sink and a structured logger.
package agentphysics

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentphysics/config"
	"github.com/hupe1980/agentphysics/core"
	"github.com/hupe1980/agentphysics/engine"
)

// System is the high-level façade aggregating the admission engine.
type System struct {
	engine *engine.Engine
}

// New creates a System with optional overrides. Without options the
// system has no budgets, no grants and the default energy pool.
func New(optFns ...func(o *engine.Options)) *System {
	return &System{engine: engine.New(optFns...)}
}

// FromConfig creates a System from a configuration document. The
// document is validated before any component configures itself; an
// invalid document fails construction and no partial system exists.
func FromConfig(doc *config.Document, optFns ...func(o *engine.Options)) (*System, error) {
	e, err := engine.FromConfig(doc, optFns...)
	if err != nil {
		return nil, err
	}
	return &System{engine: e}, nil
}

// FromFile loads a YAML configuration file and creates a System from it.
func FromFile(path string, optFns ...func(o *engine.Options)) (*System, error) {
	doc, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return FromConfig(doc, optFns...)
}

// Admit submits an operation to the admission pipeline. On success the
// operation's sections have been committed atomically and the receipt
// records the produced ledger entries. On failure a typed violation
// error is returned and no state was mutated.
func (s *System) Admit(ctx context.Context, op core.Operation) (core.AdmissionReceipt, error) {
	return s.engine.Admit(ctx, op)
}

// Grant gives an entity a capability.
func (s *System) Grant(entity core.EntityID, capability string) {
	s.engine.Grant(entity, capability)
}

// Revoke removes a capability from an entity.
func (s *System) Revoke(entity core.EntityID, capability string) {
	s.engine.Revoke(entity, capability)
}

// Release frees a live resource allocation by its reference.
func (s *System) Release(ref core.AllocationRef) error {
	return s.engine.Release(ref)
}

// ReleaseEntity tears an entity down across all ledgers.
func (s *System) ReleaseEntity(entity core.EntityID) {
	s.engine.ReleaseEntity(entity)
}

// AllocateEnergy moves energy from the system free pool to an entity.
func (s *System) AllocateEnergy(entity core.EntityID, amount float64) error {
	return s.engine.AllocateEnergy(entity, amount)
}

// ApplyEnergyDecay drains every entity by the configured decay rate
// times the elapsed seconds.
func (s *System) ApplyEnergyDecay(elapsedSeconds float64) {
	s.engine.ApplyEnergyDecay(elapsedSeconds)
}

// Statistics returns a read-only snapshot of system state.
func (s *System) Statistics() core.Statistics {
	return s.engine.Statistics()
}

// Snapshot records a statistics snapshot to the configured sink and
// returns it.
func (s *System) Snapshot(ctx context.Context) (core.Statistics, error) {
	return s.engine.Snapshot(ctx)
}

// Close drains in-flight sink deliveries.
func (s *System) Close() error {
	return s.engine.Close()
}

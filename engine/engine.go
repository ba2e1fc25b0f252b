package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/agentphysics/causality"
	"github.com/hupe1980/agentphysics/config"
	"github.com/hupe1980/agentphysics/core"
	"github.com/hupe1980/agentphysics/energy"
	"github.com/hupe1980/agentphysics/logging"
	"github.com/hupe1980/agentphysics/resource"
	"github.com/hupe1980/agentphysics/schema"
	"github.com/hupe1980/agentphysics/security"
	"github.com/hupe1980/agentphysics/sink"
)

// Options configures an Engine instance using the functional options
// pattern. All fields have working defaults so New() without options
// yields a usable engine for development and testing.
type Options struct {
	// Budgets declares the per-entity resource budgets. Entities absent
	// from the map have zero budget for every kind.
	Budgets resource.Budgets

	// Energy tunes the conservation ledger. Defaults to the normalized
	// configuration (total 1.0).
	Energy energy.Config

	// StrictOrdering selects the causal ordering mode. In strict mode
	// timestamp ties with a parent are rejected unless the event is
	// content-identical to a committed one.
	StrictOrdering bool

	// Sink receives admission receipts and statistics snapshots.
	// Defaults to a no-op sink.
	Sink sink.Sink

	// Hooks observe admission outcomes. Empty by default.
	Hooks []Hook

	// Logger provides structured logging. Defaults to a no-op logger so
	// the engine carries no logging dependency unless asked to.
	Logger logging.Logger
}

// WithBudgets sets the per-entity resource budgets.
func WithBudgets(budgets resource.Budgets) func(o *Options) {
	return func(o *Options) { o.Budgets = budgets }
}

// WithEnergyConfig sets the energy conservation parameters.
func WithEnergyConfig(cfg energy.Config) func(o *Options) {
	return func(o *Options) { o.Energy = cfg }
}

// WithStrictOrdering enables strict causal ordering.
func WithStrictOrdering() func(o *Options) {
	return func(o *Options) { o.StrictOrdering = true }
}

// WithSink sets the receipt and snapshot sink.
func WithSink(s sink.Sink) func(o *Options) {
	return func(o *Options) { o.Sink = s }
}

// WithHook registers an admission outcome hook.
func WithHook(h Hook) func(o *Options) {
	return func(o *Options) { o.Hooks = append(o.Hooks, h) }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = logger }
}

// Engine is the admission pipeline. It owns the four stateful validators
// (event ledger, resource ledger, energy ledger, capability registry) and
// is the only component allowed to mutate them. All public methods are
// safe for concurrent use.
type Engine struct {
	events    *causality.Ledger
	resources *resource.Ledger
	registry  *security.Registry
	energy    *energy.Ledger

	logger logging.Logger
	sink   sink.Sink
	hooks  *hookManager

	violationsMu sync.Mutex
	violations   map[core.ViolationClass]uint64

	// wg tracks in-flight asynchronous sink deliveries so Close can
	// drain them.
	wg sync.WaitGroup
}

// New creates an Engine with the given options. The zero configuration
// (no budgets, no grants, default energy) admits operations that carry
// no resource, energy or capability sections.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Energy: energy.DefaultConfig(),
		Sink:   sink.Noop{},
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Engine{
		events:     causality.NewLedger(opts.StrictOrdering),
		resources:  resource.NewLedger(opts.Budgets),
		registry:   security.NewRegistry(),
		energy:     energy.NewLedger(opts.Energy),
		logger:     opts.Logger,
		sink:       opts.Sink,
		hooks:      newHookManager(opts.Hooks, opts.Logger),
		violations: make(map[core.ViolationClass]uint64),
	}
}

// FromConfig builds an Engine from a configuration document. The
// document is schema-validated first; a structurally invalid document
// fails construction with a SchemaError and no engine is created.
// Entity budgets, capability grants and initial energy allocations are
// applied in declaration order.
func FromConfig(doc *config.Document, optFns ...func(o *Options)) (*Engine, error) {
	if result := schema.ValidateConfig(doc); !result.Valid {
		return nil, result.Err()
	}

	budgets := make(resource.Budgets, len(doc.Entities))
	for _, entity := range doc.Entities {
		kinds := make(map[core.ResourceKind]float64, len(entity.Budgets))
		for name, amount := range entity.Budgets {
			kind, err := core.ParseResourceKind(name)
			if err != nil {
				// Unreachable after schema validation.
				return nil, err
			}
			kinds[kind] = amount
		}
		budgets[core.EntityID(entity.ID)] = kinds
	}

	energyCfg := energy.DefaultConfig()
	if doc.Energy != nil {
		energyCfg = energy.Config{
			TotalSystemEnergy: doc.Energy.TotalSystemEnergy,
			DecayRate:         doc.Energy.DecayRate,
			DormancyThreshold: doc.Energy.DormancyThreshold,
		}
	}

	fns := append([]func(o *Options){
		WithBudgets(budgets),
		WithEnergyConfig(energyCfg),
	}, optFns...)
	if doc.StrictOrdering {
		fns = append(fns, WithStrictOrdering())
	}

	e := New(fns...)

	for _, entity := range doc.Entities {
		id := core.EntityID(entity.ID)
		for _, capability := range entity.Capabilities {
			e.registry.Grant(id, capability)
		}
		if entity.InitialEnergy > 0 {
			if err := e.energy.Allocate(id, entity.InitialEnergy); err != nil {
				return nil, fmt.Errorf("failed to allocate initial energy for %s: %w", id, err)
			}
		}
	}

	return e, nil
}

// Admit validates an operation and, if every check passes, commits all
// of its sections atomically. On rejection it returns a typed violation
// error and guarantees that no ledger was mutated.
//
// Validation order is fixed: schema, causality, resource, energy,
// security. The first violation wins; later validators never run for a
// rejected operation.
func (e *Engine) Admit(ctx context.Context, op core.Operation) (core.AdmissionReceipt, error) {
	if err := ctx.Err(); err != nil {
		return core.AdmissionReceipt{}, err
	}

	if result := schema.ValidateOperation(op); !result.Valid {
		return core.AdmissionReceipt{}, e.reject(ctx, op, result.Err())
	}

	// Stage in the global lock order. Each stage holds its ledger's
	// lock until commit or abort.
	var (
		stagedEvent    *causality.StagedEvent
		stagedAlloc    *resource.StagedAllocation
		stagedTransfer *energy.StagedTransfer
	)
	abort := func() {
		if stagedTransfer != nil {
			stagedTransfer.Abort()
		}
		if stagedAlloc != nil {
			stagedAlloc.Abort()
		}
		if stagedEvent != nil {
			stagedEvent.Abort()
		}
	}

	if op.Event != nil {
		staged, err := e.events.Stage(*op.Event)
		if err != nil {
			return core.AdmissionReceipt{}, e.reject(ctx, op, err)
		}
		stagedEvent = staged
	}

	// A zero-amount request reserves nothing and is skipped entirely.
	if op.Resource != nil && op.Resource.Amount > 0 {
		staged, err := e.resources.Stage(op.Entity, *op.Resource)
		if err != nil {
			abort()
			return core.AdmissionReceipt{}, e.reject(ctx, op, err)
		}
		stagedAlloc = staged
	}

	if op.EnergyTransfer != nil {
		staged, err := e.energy.Stage(op.Entity, op.EnergyTransfer.To, op.EnergyTransfer.Amount)
		if err != nil {
			abort()
			return core.AdmissionReceipt{}, e.reject(ctx, op, err)
		}
		stagedTransfer = staged
	}

	if err := e.registry.Check(op.Entity, op.RequiredCapability); err != nil {
		abort()
		return core.AdmissionReceipt{}, e.reject(ctx, op, err)
	}

	// Every validator passed; commit all stages. Commits release the
	// ledger locks in acquisition order.
	receipt := core.AdmissionReceipt{
		ID:         core.NewID(),
		Entity:     op.Entity,
		AdmittedAt: time.Now().UTC(),
	}
	if stagedEvent != nil {
		receipt.EventID = stagedEvent.Commit().ID
	}
	if stagedAlloc != nil {
		receipt.AllocationRef = stagedAlloc.Commit().Ref
	}
	if stagedTransfer != nil {
		receipt.EnergyTxID = stagedTransfer.Commit().ID
	}

	e.logger.Debug("operation admitted entity=%s receipt=%s", string(op.Entity), receipt.ID)
	e.hooks.run(ctx, HookOnAdmit, &HookContext{Operation: op, Receipt: &receipt})

	// Receipt delivery is the only asynchronous step; admission itself
	// never waits on the sink.
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		if err := e.sink.RecordAdmission(context.WithoutCancel(ctx), receipt); err != nil {
			e.logger.Warn("failed to record admission %s: %v", receipt.ID, err)
		}
	}()

	return receipt, nil
}

// reject counts the violation, notifies hooks and returns the error
// unchanged so callers can match it with errors.As.
func (e *Engine) reject(ctx context.Context, op core.Operation, err error) error {
	class, ok := core.ClassOf(err)
	if ok {
		e.violationsMu.Lock()
		e.violations[class]++
		e.violationsMu.Unlock()
	}

	e.logger.Warn("operation rejected entity=%s class=%s: %v", string(op.Entity), string(class), err)
	e.hooks.run(ctx, HookOnReject, &HookContext{Operation: op, Err: err, Class: class})
	return err
}

// Grant gives an entity a capability. Granting an already-held
// capability succeeds with no state change.
func (e *Engine) Grant(entity core.EntityID, capability string) {
	e.registry.Grant(entity, capability)
	e.logger.Debug("capability granted entity=%s capability=%s", string(entity), capability)
}

// Revoke removes a capability from an entity. Operations admitted while
// the capability was held remain admitted; only future admissions see
// the revocation.
func (e *Engine) Revoke(entity core.EntityID, capability string) {
	e.registry.Revoke(entity, capability)
	e.logger.Debug("capability revoked entity=%s capability=%s", string(entity), capability)
}

// HasCapability reports whether the entity currently holds the
// capability.
func (e *Engine) HasCapability(entity core.EntityID, capability string) bool {
	return e.registry.Has(entity, capability)
}

// Release frees a live resource allocation by its reference, returning
// the amount to the owning entity's headroom.
func (e *Engine) Release(ref core.AllocationRef) error {
	return e.resources.Release(ref)
}

// ReleaseEntity tears an entity down: frees its live allocations,
// returns its energy to the free pool and drops its capability grants.
// Its committed events remain in the ledger.
func (e *Engine) ReleaseEntity(entity core.EntityID) {
	e.resources.ReleaseEntity(entity)
	e.energy.ReleaseEntity(entity)
	e.registry.RemoveEntity(entity)
	e.logger.Debug("entity released entity=%s", string(entity))
}

// AllocateEnergy moves energy from the system free pool to an entity.
func (e *Engine) AllocateEnergy(entity core.EntityID, amount float64) error {
	return e.energy.Allocate(entity, amount)
}

// ApplyEnergyDecay drains every entity by the configured decay rate
// times the elapsed seconds. Fully drained entities are removed from
// the energy ledger.
func (e *Engine) ApplyEnergyDecay(elapsedSeconds float64) {
	e.energy.ApplyDecay(elapsedSeconds)
}

// EntityEnergy returns an entity's current energy allocation (zero when
// unknown).
func (e *Engine) EntityEnergy(entity core.EntityID) float64 {
	return e.energy.EntityEnergy(entity)
}

// ContainsEvent reports whether an event id has been committed to the
// event ledger.
func (e *Engine) ContainsEvent(id string) bool {
	return e.events.Contains(id)
}

// Statistics returns a read-only snapshot of engine state. Producing it
// never mutates any ledger.
func (e *Engine) Statistics() core.Statistics {
	e.violationsMu.Lock()
	violations := make(map[core.ViolationClass]uint64, len(e.violations))
	for class, count := range e.violations {
		violations[class] = count
	}
	e.violationsMu.Unlock()

	return core.Statistics{
		EventCount:      e.events.Size(),
		Usage:           e.resources.UsageSnapshot(),
		LiveAllocations: e.resources.LiveAllocations(),
		Violations:      violations,
		Energy:          e.energy.State(),
	}
}

// Snapshot produces a statistics snapshot and records it to the sink
// synchronously.
func (e *Engine) Snapshot(ctx context.Context) (core.Statistics, error) {
	stats := e.Statistics()
	if err := e.sink.RecordSnapshot(ctx, stats); err != nil {
		return stats, fmt.Errorf("failed to record snapshot: %w", err)
	}
	return stats, nil
}

// Close drains in-flight sink deliveries. The engine remains usable
// afterwards; Close exists so callers can ensure every admitted
// operation has reached the sink before shutdown.
func (e *Engine) Close() error {
	e.wg.Wait()
	return nil
}

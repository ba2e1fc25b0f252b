package testutil

import (
	"time"

	"github.com/hupe1980/agentphysics/core"
)

// OperationBuilder provides a fluent helper for constructing operations
// in tests. Example:
//
//	op := NewOperationBuilder("researcher").Event("evt-1").Memory(6).Build()
//
// Chain only the sections you need; absent sections are omitted from the
// operation.
type OperationBuilder struct {
	entity     core.EntityID
	event      *core.EventDescriptor
	resource   *core.ResourceRequest
	transfer   *core.EnergyTransfer
	capability string
	payload    any
}

// NewOperationBuilder creates a builder for the given issuing entity.
func NewOperationBuilder(entity core.EntityID) *OperationBuilder {
	return &OperationBuilder{entity: entity}
}

// Event adds an event section with the given id and optional parents,
// timestamped now (chainable).
func (b *OperationBuilder) Event(id string, parents ...string) *OperationBuilder {
	b.event = &core.EventDescriptor{ID: id, Parents: parents, Timestamp: time.Now().UTC()}
	return b
}

// EventAt adds an event section with an explicit timestamp (chainable).
// Use in tests where causal ordering matters.
func (b *OperationBuilder) EventAt(id string, ts time.Time, parents ...string) *OperationBuilder {
	b.event = &core.EventDescriptor{ID: id, Parents: parents, Timestamp: ts}
	return b
}

// Resource adds a resource section (chainable).
func (b *OperationBuilder) Resource(kind core.ResourceKind, amount float64) *OperationBuilder {
	b.resource = &core.ResourceRequest{Kind: kind, Amount: amount}
	return b
}

// Memory adds a memory resource section (chainable).
func (b *OperationBuilder) Memory(amount float64) *OperationBuilder {
	return b.Resource(core.ResourceMemory, amount)
}

// CPU adds a cpu resource section (chainable).
func (b *OperationBuilder) CPU(amount float64) *OperationBuilder {
	return b.Resource(core.ResourceCPU, amount)
}

// Transfer adds an energy transfer section (chainable).
func (b *OperationBuilder) Transfer(to core.EntityID, amount float64) *OperationBuilder {
	b.transfer = &core.EnergyTransfer{To: to, Amount: amount}
	return b
}

// Requires sets the required capability (chainable).
func (b *OperationBuilder) Requires(capability string) *OperationBuilder {
	b.capability = capability
	return b
}

// Payload attaches an opaque payload (chainable).
func (b *OperationBuilder) Payload(p any) *OperationBuilder {
	b.payload = p
	return b
}

// Build constructs the core.Operation value.
func (b *OperationBuilder) Build() core.Operation {
	return core.Operation{
		Entity:             b.entity,
		Event:              b.event,
		Resource:           b.resource,
		EnergyTransfer:     b.transfer,
		RequiredCapability: b.capability,
		Payload:            b.payload,
	}
}

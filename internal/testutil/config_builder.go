package testutil

import "github.com/hupe1980/agentphysics/config"

// ConfigBuilder assembles configuration documents for tests.
type ConfigBuilder struct {
	doc config.Document
}

// NewConfigBuilder creates an empty document builder.
func NewConfigBuilder() *ConfigBuilder { return &ConfigBuilder{} }

// Strict enables strict causal ordering (chainable).
func (b *ConfigBuilder) Strict() *ConfigBuilder {
	b.doc.StrictOrdering = true
	return b
}

// Energy sets the energy section (chainable).
func (b *ConfigBuilder) Energy(total, decayRate, dormancy float64) *ConfigBuilder {
	b.doc.Energy = &config.EnergySection{
		TotalSystemEnergy: total,
		DecayRate:         decayRate,
		DormancyThreshold: dormancy,
	}
	return b
}

// Entity appends an entity declaration (chainable).
func (b *ConfigBuilder) Entity(id string, budgets map[string]float64, capabilities ...string) *ConfigBuilder {
	b.doc.Entities = append(b.doc.Entities, config.EntitySection{
		ID:           id,
		Budgets:      budgets,
		Capabilities: capabilities,
	})
	return b
}

// EntityWithEnergy appends an entity declaration carrying an initial
// energy allocation (chainable).
func (b *ConfigBuilder) EntityWithEnergy(id string, budgets map[string]float64, initialEnergy float64, capabilities ...string) *ConfigBuilder {
	b.doc.Entities = append(b.doc.Entities, config.EntitySection{
		ID:            id,
		Budgets:       budgets,
		Capabilities:  capabilities,
		InitialEnergy: initialEnergy,
	})
	return b
}

// Build returns the assembled document.
func (b *ConfigBuilder) Build() *config.Document {
	return &b.doc
}

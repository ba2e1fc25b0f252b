// Package config defines the configuration document the engine is built
// from: per-entity resource budgets, initial capability grants, the causal
// ordering mode and the energy conservation parameters. The package only
// parses; semantic validation lives in the schema package and runs before
// any engine component configures itself.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the root of the configuration file.
type Document struct {
	// StrictOrdering selects the causal ordering mode: strict mode rejects
	// timestamp ties among events that are not content-identical.
	StrictOrdering bool `yaml:"strict_ordering"`

	// Energy tunes the conservation ledger. Omitted sections fall back to
	// normalized defaults.
	Energy *EnergySection `yaml:"energy,omitempty"`

	// Entities declares every entity known at startup.
	Entities []EntitySection `yaml:"entities"`
}

// EnergySection mirrors energy.Config in document form.
type EnergySection struct {
	TotalSystemEnergy float64 `yaml:"total_system_energy"`
	DecayRate         float64 `yaml:"decay_rate"`
	DormancyThreshold float64 `yaml:"dormancy_threshold"`
}

// EntitySection declares one entity: its budgets per resource kind,
// initial capability grants and optional initial energy allocation.
type EntitySection struct {
	ID            string             `yaml:"id"`
	Budgets       map[string]float64 `yaml:"budgets"`
	Capabilities  []string           `yaml:"capabilities,omitempty"`
	InitialEnergy float64            `yaml:"initial_energy,omitempty"`
}

// Parse decodes a YAML document. Decoding errors are returned verbatim;
// semantic validation is the schema validator's job.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &doc, nil
}

// LoadFile reads and decodes a YAML configuration file.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	return Parse(data)
}

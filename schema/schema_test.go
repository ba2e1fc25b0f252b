package schema

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentphysics/config"
	"github.com/hupe1980/agentphysics/core"
)

func validDoc() *config.Document {
	return &config.Document{
		Entities: []config.EntitySection{
			{
				ID:           "researcher",
				Budgets:      map[string]float64{"memory": 10, "cpu": 50},
				Capabilities: []string{"observe"},
			},
		},
	}
}

func TestValidateConfig_OK(t *testing.T) {
	res := ValidateConfig(validDoc())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Violations)
	assert.NoError(t, res.Err())
}

func TestValidateConfig_Violations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Document)
		want   string
	}{
		{"nil budgets", func(d *config.Document) { d.Entities[0].Budgets = nil }, "missing budgets"},
		{"missing id", func(d *config.Document) { d.Entities[0].ID = "" }, "missing id"},
		{"negative budget", func(d *config.Document) { d.Entities[0].Budgets["memory"] = -1 }, "negative"},
		{"nan budget", func(d *config.Document) { d.Entities[0].Budgets["cpu"] = math.NaN() }, "NaN"},
		{"unknown kind", func(d *config.Document) { d.Entities[0].Budgets["plutonium"] = 1 }, "unknown resource kind"},
		{"empty capability", func(d *config.Document) { d.Entities[0].Capabilities = []string{""} }, "empty capability"},
		{"duplicate entity", func(d *config.Document) {
			d.Entities = append(d.Entities, d.Entities[0])
		}, "duplicate entity id"},
		{"bad energy total", func(d *config.Document) {
			d.Energy = &config.EnergySection{TotalSystemEnergy: 0}
		}, "total_system_energy"},
		{"negative decay", func(d *config.Document) {
			d.Energy = &config.EnergySection{TotalSystemEnergy: 1, DecayRate: -0.1}
		}, "decay_rate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := validDoc()
			tc.mutate(doc)
			res := ValidateConfig(doc)
			require.False(t, res.Valid)
			require.NotEmpty(t, res.Violations)
			assert.True(t, containsSubstring(res.Violations, tc.want),
				"violations %v should mention %q", res.Violations, tc.want)

			var schemaErr *core.SchemaError
			require.ErrorAs(t, res.Err(), &schemaErr)
		})
	}
}

func TestValidateConfig_Nil(t *testing.T) {
	res := ValidateConfig(nil)
	assert.False(t, res.Valid)
}

func TestValidateOperation_OK(t *testing.T) {
	op := core.Operation{
		Entity: "researcher",
		Event: &core.EventDescriptor{
			ID:        core.NewID(),
			Parents:   []string{"p1", "p2"},
			Timestamp: time.Now().UTC(),
		},
		Resource:           &core.ResourceRequest{Kind: core.ResourceMemory, Amount: 6},
		EnergyTransfer:     &core.EnergyTransfer{To: "coordinator", Amount: 0.1},
		RequiredCapability: "CodeAnalysis",
	}
	assert.True(t, ValidateOperation(op).Valid)

	// Minimal operation: entity only.
	assert.True(t, ValidateOperation(core.Operation{Entity: "researcher"}).Valid)
}

func TestValidateOperation_Violations(t *testing.T) {
	ts := time.Now().UTC()
	cases := []struct {
		name string
		op   core.Operation
		want string
	}{
		{"missing entity", core.Operation{}, "missing entity"},
		{"event without id", core.Operation{Entity: "e", Event: &core.EventDescriptor{Timestamp: ts}}, "missing id"},
		{"event without timestamp", core.Operation{Entity: "e", Event: &core.EventDescriptor{ID: "x"}}, "missing timestamp"},
		{"self parent", core.Operation{Entity: "e", Event: &core.EventDescriptor{ID: "x", Parents: []string{"x"}, Timestamp: ts}}, "references itself"},
		{"duplicate parent", core.Operation{Entity: "e", Event: &core.EventDescriptor{ID: "x", Parents: []string{"p", "p"}, Timestamp: ts}}, "duplicate parent"},
		{"negative amount", core.Operation{Entity: "e", Resource: &core.ResourceRequest{Kind: core.ResourceCPU, Amount: -1}}, "negative"},
		{"infinite amount", core.Operation{Entity: "e", Resource: &core.ResourceRequest{Kind: core.ResourceCPU, Amount: math.Inf(1)}}, "infinite"},
		{"unknown kind", core.Operation{Entity: "e", Resource: &core.ResourceRequest{Kind: "plutonium", Amount: 1}}, "unknown resource kind"},
		{"transfer to self", core.Operation{Entity: "e", EnergyTransfer: &core.EnergyTransfer{To: "e", Amount: 0.1}}, "destination equals source"},
		{"transfer without destination", core.Operation{Entity: "e", EnergyTransfer: &core.EnergyTransfer{Amount: 0.1}}, "missing destination"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ValidateOperation(tc.op)
			require.False(t, res.Valid)
			assert.True(t, containsSubstring(res.Violations, tc.want),
				"violations %v should mention %q", res.Violations, tc.want)
		})
	}
}

func containsSubstring(haystack []string, needle string) bool {
	for _, s := range haystack {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

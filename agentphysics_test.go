package agentphysics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentphysics/core"
	"github.com/hupe1980/agentphysics/internal/testutil"
)

const testConfigYAML = `
strict_ordering: false
energy:
  total_system_energy: 1.0
  decay_rate: 0.01
  dormancy_threshold: 0.05
entities:
  - id: researcher
    budgets:
      memory: 10
      cpu: 4
    capabilities:
      - spawn
    initial_energy: 0.4
  - id: writer
    budgets:
      memory: 5
`

func TestSystem_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o600))

	sys, err := FromFile(path)
	require.NoError(t, err)

	ctx := context.Background()

	receipt, err := sys.Admit(ctx, core.Operation{
		Entity:             "researcher",
		Event:              &core.EventDescriptor{ID: "evt-1", Timestamp: time.Now().UTC()},
		Resource:           &core.ResourceRequest{Kind: core.ResourceMemory, Amount: 6},
		RequiredCapability: "spawn",
	})
	require.NoError(t, err)
	assert.Equal(t, "evt-1", receipt.EventID)
	assert.NotEmpty(t, receipt.AllocationRef)

	stats := sys.Statistics()
	assert.Equal(t, 1, stats.EventCount)
	assert.InDelta(t, 0.4, stats.Energy.AllocatedEnergy, 1e-9)

	require.NoError(t, sys.Close())
}

func TestSystem_FromFile_Missing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestSystem_InvalidConfigFailsConstruction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	broken := `
entities:
  - id: researcher
    budgets:
      plutonium: 10
`
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o600))

	sys, err := FromFile(path)
	require.Nil(t, sys)

	var schemaErr *core.SchemaError
	require.ErrorAs(t, err, &schemaErr)
}

func TestSystem_FromConfig(t *testing.T) {
	doc := testutil.NewConfigBuilder().
		Strict().
		Energy(1.0, 0.01, 0.05).
		EntityWithEnergy("researcher", map[string]float64{"memory": 10}, 0.3, "spawn").
		Entity("writer", map[string]float64{"memory": 5}).
		Build()

	sys, err := FromConfig(doc)
	require.NoError(t, err)

	op := testutil.NewOperationBuilder("researcher").
		Event("evt-1").
		Memory(4).
		Requires("spawn").
		Build()

	receipt, err := sys.Admit(context.Background(), op)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", receipt.EventID)
	assert.InDelta(t, 0.3, sys.Statistics().Energy.AllocatedEnergy, 1e-9)
}

func TestSystem_EndToEnd(t *testing.T) {
	sys := New()
	ctx := context.Background()

	sys.Grant("researcher", "transfer")
	require.NoError(t, sys.AllocateEnergy("researcher", 0.5))

	op := testutil.NewOperationBuilder("researcher").
		Transfer("writer", 0.2).
		Requires("transfer").
		Build()

	_, err := sys.Admit(ctx, op)
	require.NoError(t, err)

	sys.ApplyEnergyDecay(1.0)

	stats := sys.Statistics()
	assert.InDelta(t, 0.48, stats.Energy.AllocatedEnergy, 1e-9)

	sys.ReleaseEntity("researcher")
	assert.InDelta(t, 0.19, sys.Statistics().Energy.AllocatedEnergy, 1e-9)
}

package security

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentphysics/core"
)

func TestRegistry_GrantCheckRevoke(t *testing.T) {
	r := NewRegistry()

	// Rejected before grant.
	err := r.Check("E", "CodeAnalysis")
	var denied *core.CapabilityDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, core.EntityID("E"), denied.Entity)
	assert.Equal(t, "CodeAnalysis", denied.Capability)

	// Accepted after grant.
	r.Grant("E", "CodeAnalysis")
	assert.NoError(t, r.Check("E", "CodeAnalysis"))
	assert.True(t, r.Has("E", "CodeAnalysis"))

	// Rejected again after revoke.
	r.Revoke("E", "CodeAnalysis")
	require.ErrorAs(t, r.Check("E", "CodeAnalysis"), &denied)
}

func TestRegistry_NoRequirementPasses(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.Check("E", ""))
}

func TestRegistry_Idempotency(t *testing.T) {
	r := NewRegistry()
	r.Grant("E", "observe")
	r.Grant("E", "observe")
	assert.Equal(t, []string{"observe"}, r.Capabilities("E"))

	r.Revoke("E", "never-held")
	r.Revoke("E", "observe")
	r.Revoke("E", "observe")
	assert.Empty(t, r.Capabilities("E"))
}

func TestRegistry_Capabilities(t *testing.T) {
	r := NewRegistry()
	r.Grant("E", "communicate")
	r.Grant("E", "analyze")
	r.Grant("E", "observe")
	assert.Equal(t, []string{"analyze", "communicate", "observe"}, r.Capabilities("E"))

	r.RemoveEntity("E")
	assert.Empty(t, r.Capabilities("E"))
}

func TestRegistry_ConcurrentLookups(t *testing.T) {
	r := NewRegistry()
	r.Grant("E", "observe")

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				r.Grant("E", "observe")
			}
			// Racing a grant may see either state, never a torn one.
			_ = r.Check("E", "observe")
			_ = r.Has("E", "observe")
		}(i)
	}
	wg.Wait()
	assert.True(t, r.Has("E", "observe"))
}

package resource

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentphysics/core"
)

func newTestLedger(budget float64) *Ledger {
	return NewLedger(Budgets{
		"E": {core.ResourceMemory: budget},
	})
}

func TestLedger_AllocateWithinBudget(t *testing.T) {
	l := newTestLedger(10)

	staged, err := l.Stage("E", core.ResourceRequest{Kind: core.ResourceMemory, Amount: 6})
	require.NoError(t, err)
	alloc := staged.Commit()

	assert.NotEmpty(t, alloc.Ref)
	assert.Equal(t, 6.0, l.Usage("E", core.ResourceMemory))
	assert.Equal(t, 1, l.LiveAllocations())

	// Second allocation exceeding headroom is rejected with the exact
	// remaining availability, and usage stays put.
	_, err = l.Stage("E", core.ResourceRequest{Kind: core.ResourceMemory, Amount: 6})
	var insufficientErr *core.InsufficientResourceError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, core.ResourceMemory, insufficientErr.Kind)
	assert.Equal(t, 6.0, insufficientErr.Required)
	assert.Equal(t, 4.0, insufficientErr.Available)
	assert.Equal(t, 6.0, l.Usage("E", core.ResourceMemory))
}

func TestLedger_ZeroAmountIsNoOp(t *testing.T) {
	l := newTestLedger(0)
	err := l.Validate("E", core.ResourceRequest{Kind: core.ResourceMemory, Amount: 0})
	assert.NoError(t, err)
}

func TestLedger_UnconfiguredEntityHasZeroBudget(t *testing.T) {
	l := newTestLedger(10)
	_, err := l.Stage("stranger", core.ResourceRequest{Kind: core.ResourceCPU, Amount: 1})
	var insufficientErr *core.InsufficientResourceError
	require.ErrorAs(t, err, &insufficientErr)

	_, ok := l.Budget("stranger", core.ResourceCPU)
	assert.False(t, ok)
}

func TestLedger_ReleaseRestoresHeadroom(t *testing.T) {
	l := newTestLedger(10)

	staged, err := l.Stage("E", core.ResourceRequest{Kind: core.ResourceMemory, Amount: 8})
	require.NoError(t, err)
	alloc := staged.Commit()

	require.NoError(t, l.Release(alloc.Ref))
	assert.Equal(t, 0.0, l.Usage("E", core.ResourceMemory))
	assert.Equal(t, 0, l.LiveAllocations())

	// Double release is an unknown allocation.
	err = l.Release(alloc.Ref)
	var unknownErr *core.UnknownAllocationError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, alloc.Ref, unknownErr.Ref)
}

func TestLedger_ReleaseUnknownRef(t *testing.T) {
	l := newTestLedger(10)
	err := l.Release("no-such-ref")
	var unknownErr *core.UnknownAllocationError
	require.ErrorAs(t, err, &unknownErr)
}

func TestLedger_ReleaseEntityFreesEverything(t *testing.T) {
	l := NewLedger(Budgets{
		"E": {core.ResourceMemory: 10, core.ResourceCPU: 100},
	})
	for _, req := range []core.ResourceRequest{
		{Kind: core.ResourceMemory, Amount: 4},
		{Kind: core.ResourceMemory, Amount: 3},
		{Kind: core.ResourceCPU, Amount: 50},
	} {
		staged, err := l.Stage("E", req)
		require.NoError(t, err)
		staged.Commit()
	}
	require.Equal(t, 3, l.LiveAllocations())

	l.ReleaseEntity("E")
	assert.Equal(t, 0, l.LiveAllocations())
	assert.Equal(t, 0.0, l.Usage("E", core.ResourceMemory))
	assert.Equal(t, 0.0, l.Usage("E", core.ResourceCPU))
}

func TestLedger_AbortReservesNothing(t *testing.T) {
	l := newTestLedger(10)
	staged, err := l.Stage("E", core.ResourceRequest{Kind: core.ResourceMemory, Amount: 6})
	require.NoError(t, err)
	staged.Abort()

	assert.Equal(t, 0.0, l.Usage("E", core.ResourceMemory))
	assert.Equal(t, 0, l.LiveAllocations())
}

// Budget conservation under concurrent stress: many goroutines race
// allocations whose sum exceeds the budget; the committed total must never
// exceed it and exactly the allocations that fit are accepted.
func TestLedger_ConcurrentBudgetConservation(t *testing.T) {
	const (
		budget  = 100.0
		racers  = 50
		request = 3.0
	)
	l := newTestLedger(budget)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			staged, err := l.Stage("E", core.ResourceRequest{Kind: core.ResourceMemory, Amount: request})
			if err != nil {
				return
			}
			staged.Commit()
			mu.Lock()
			accepted++
			mu.Unlock()
		}()
	}
	wg.Wait()

	usage := l.Usage("E", core.ResourceMemory)
	assert.LessOrEqual(t, usage, budget)
	assert.Equal(t, float64(accepted)*request, usage)
	// 33 requests of 3.0 fit into 100.
	assert.Equal(t, 33, accepted)
}

func TestLedger_IndependentEntitiesDoNotContend(t *testing.T) {
	l := NewLedger(Budgets{
		"A": {core.ResourceMemory: 1},
		"B": {core.ResourceMemory: 1},
	})

	// Hold a staged reservation for A; B must still be able to stage.
	stagedA, err := l.Stage("A", core.ResourceRequest{Kind: core.ResourceMemory, Amount: 1})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		stagedB, err := l.Stage("B", core.ResourceRequest{Kind: core.ResourceMemory, Amount: 1})
		if err == nil {
			stagedB.Commit()
		}
		close(done)
	}()
	<-done

	stagedA.Commit()
	assert.Equal(t, 1.0, l.Usage("A", core.ResourceMemory))
	assert.Equal(t, 1.0, l.Usage("B", core.ResourceMemory))
}

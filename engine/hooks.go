package engine

import (
	"context"

	"github.com/hupe1980/agentphysics/core"
	"github.com/hupe1980/agentphysics/logging"
)

// HookType names the admission lifecycle points where hooks run.
//
// Hooks provide a way to attach cross-cutting logic (auditing, metrics,
// alerting) to admission outcomes without modifying the pipeline itself.
// They run synchronously after the outcome is final: an admitted
// operation has already committed and a rejected one has already been
// rolled back, so hooks observe outcomes, they do not veto them.
type HookType string

const (
	// HookOnAdmit fires after an operation commits successfully.
	HookOnAdmit HookType = "on_admit"

	// HookOnReject fires after an operation is rejected and all staged
	// mutations have been aborted.
	HookOnReject HookType = "on_reject"
)

// HookContext carries the outcome details passed to each hook.
type HookContext struct {
	// Operation is the operation as submitted.
	Operation core.Operation

	// Receipt is set for admitted operations, nil on rejection.
	Receipt *core.AdmissionReceipt

	// Err is the violation that caused rejection, nil on admission.
	Err error

	// Class is the violation class of Err, empty on admission.
	Class core.ViolationClass
}

// Hook is an admission lifecycle observer. Implementations should be
// fast (they run on the admission path) and must not panic. A returned
// error is logged by the engine but never alters the admission outcome.
type Hook interface {
	// Type returns the lifecycle point this hook observes.
	Type() HookType

	// Execute runs the hook logic with the outcome context.
	Execute(ctx context.Context, hookCtx *HookContext) error
}

// FunctionHook wraps a plain function as a Hook.
type FunctionHook struct {
	hookType HookType
	fn       func(ctx context.Context, hookCtx *HookContext) error
}

// NewFunctionHook creates a function-based hook for the given lifecycle
// point.
func NewFunctionHook(hookType HookType, fn func(ctx context.Context, hookCtx *HookContext) error) *FunctionHook {
	return &FunctionHook{hookType: hookType, fn: fn}
}

// Type returns the lifecycle point this hook observes.
func (h *FunctionHook) Type() HookType { return h.hookType }

// Execute calls the wrapped function.
func (h *FunctionHook) Execute(ctx context.Context, hookCtx *HookContext) error {
	return h.fn(ctx, hookCtx)
}

// hookManager routes outcomes to the hooks registered for each type.
// Registration happens at construction time only, so execution needs no
// locking.
type hookManager struct {
	hooks  map[HookType][]Hook
	logger logging.Logger
}

func newHookManager(hooks []Hook, logger logging.Logger) *hookManager {
	m := &hookManager{hooks: make(map[HookType][]Hook), logger: logger}
	for _, h := range hooks {
		m.hooks[h.Type()] = append(m.hooks[h.Type()], h)
	}
	return m
}

// run executes all hooks for the type in registration order. Hook errors
// are logged and swallowed; the admission outcome is already final.
func (m *hookManager) run(ctx context.Context, hookType HookType, hookCtx *HookContext) {
	for _, h := range m.hooks[hookType] {
		if err := h.Execute(ctx, hookCtx); err != nil {
			m.logger.Warn("hook %s failed: %v", string(hookType), err)
		}
	}
}

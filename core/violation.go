package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidationResult is the outcome of a pure validation step: a pass/fail
// flag plus the list of violation descriptions collected on failure. A
// failed result always carries at least one violation.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations,omitempty"`
}

// OK returns a passing result.
func OK() ValidationResult { return ValidationResult{Valid: true} }

// Fail returns a failing result with the given violations.
func Fail(violations ...string) ValidationResult {
	return ValidationResult{Valid: false, Violations: violations}
}

// Err converts a failed result into a *SchemaError; it returns nil for a
// passing result.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &SchemaError{Reason: strings.Join(r.Violations, "; ")}
}

// ViolationClass groups the violation taxonomy for counting and reporting.
type ViolationClass string

const (
	// ViolationSchema covers malformed configuration or operations.
	ViolationSchema ViolationClass = "schema"
	// ViolationCausality covers unknown parents, duplicates and ordering.
	ViolationCausality ViolationClass = "causality"
	// ViolationResource covers budget exhaustion and unknown allocations.
	ViolationResource ViolationClass = "resource"
	// ViolationEnergy covers conservation and insufficient-energy failures.
	ViolationEnergy ViolationClass = "energy"
	// ViolationSecurity covers denied capabilities.
	ViolationSecurity ViolationClass = "security"
)

// SchemaError reports a structurally invalid configuration or operation.
// It is non-retryable without caller changes.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string { return fmt.Sprintf("schema invalid: %s", e.Reason) }

// UnknownParentError reports an event descriptor referencing a parent that
// does not exist in the event ledger.
type UnknownParentError struct {
	EventID string
	Parent  string
}

func (e *UnknownParentError) Error() string {
	return fmt.Sprintf("unknown parent %s for event %s", e.Parent, e.EventID)
}

// DuplicateEventError reports an event identifier already present in the
// ledger.
type DuplicateEventError struct {
	EventID string
}

func (e *DuplicateEventError) Error() string {
	return fmt.Sprintf("duplicate event %s", e.EventID)
}

// CausalOrderError reports an event timestamped before one of its parents.
type CausalOrderError struct {
	EventID         string
	Timestamp       time.Time
	ParentTimestamp time.Time
}

func (e *CausalOrderError) Error() string {
	return fmt.Sprintf("causal order violated for event %s: %s precedes parent at %s",
		e.EventID, e.Timestamp.Format(time.RFC3339Nano), e.ParentTimestamp.Format(time.RFC3339Nano))
}

// InsufficientResourceError reports a resource request exceeding the
// entity's remaining budget headroom for that kind.
type InsufficientResourceError struct {
	Kind      ResourceKind
	Required  float64
	Available float64
}

func (e *InsufficientResourceError) Error() string {
	return fmt.Sprintf("insufficient %s: required %g, available %g", e.Kind, e.Required, e.Available)
}

// UnknownAllocationError reports a release of an allocation reference the
// ledger does not know.
type UnknownAllocationError struct {
	Ref AllocationRef
}

func (e *UnknownAllocationError) Error() string {
	return fmt.Sprintf("unknown allocation %s", e.Ref)
}

// CapabilityDeniedError reports an operation requiring a capability the
// issuing entity does not hold.
type CapabilityDeniedError struct {
	Entity     EntityID
	Capability string
}

func (e *CapabilityDeniedError) Error() string {
	return fmt.Sprintf("capability denied: %s lacks %q", e.Entity, e.Capability)
}

// InsufficientEnergyError reports an energy allocation or transfer
// exceeding what the source holds (or what the system has free).
type InsufficientEnergyError struct {
	Requested float64
	Available float64
}

func (e *InsufficientEnergyError) Error() string {
	return fmt.Sprintf("insufficient energy: requested %g, available %g", e.Requested, e.Available)
}

// ConservationError reports a violated energy conservation invariant:
// allocated energy exceeding the total system energy.
type ConservationError struct {
	Total     float64
	Allocated float64
}

func (e *ConservationError) Error() string {
	return fmt.Sprintf("energy conservation violated: allocated %g exceeds total %g", e.Allocated, e.Total)
}

// UnknownEntityError reports an energy operation naming an entity with no
// allocation record.
type UnknownEntityError struct {
	Entity EntityID
}

func (e *UnknownEntityError) Error() string {
	return fmt.Sprintf("entity %s not found in energy ledger", e.Entity)
}

// ClassOf maps a violation error to its class. The second return value is
// false for errors outside the admission taxonomy (internal failures).
func ClassOf(err error) (ViolationClass, bool) {
	var (
		schemaErr   *SchemaError
		parentErr   *UnknownParentError
		dupErr      *DuplicateEventError
		orderErr    *CausalOrderError
		resourceErr *InsufficientResourceError
		allocErr    *UnknownAllocationError
		capErr      *CapabilityDeniedError
		energyErr   *InsufficientEnergyError
		conservErr  *ConservationError
		unknownErr  *UnknownEntityError
	)
	switch {
	case errors.As(err, &schemaErr):
		return ViolationSchema, true
	case errors.As(err, &parentErr), errors.As(err, &dupErr), errors.As(err, &orderErr):
		return ViolationCausality, true
	case errors.As(err, &resourceErr), errors.As(err, &allocErr):
		return ViolationResource, true
	case errors.As(err, &energyErr), errors.As(err, &conservErr), errors.As(err, &unknownErr):
		return ViolationEnergy, true
	case errors.As(err, &capErr):
		return ViolationSecurity, true
	default:
		return "", false
	}
}

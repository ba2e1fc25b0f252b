// Package schema implements the structural validators that run before any
// stateful check: one for the configuration document at startup, one for
// operations entering the admission pipeline. Both are pure functions over
// their input: they read no shared state and produce no side effects,
// which is why the pipeline runs them before taking any lock.
package schema

import (
	"fmt"
	"math"

	"github.com/hupe1980/agentphysics/config"
	"github.com/hupe1980/agentphysics/core"
)

// ValidateConfig checks the configuration document: required fields
// present, enumerated fields within their domain, numeric fields
// non-negative and finite. All violations are collected so a broken
// document is reported in one pass.
func ValidateConfig(doc *config.Document) core.ValidationResult {
	if doc == nil {
		return core.Fail("configuration document is nil")
	}

	var violations []string
	seen := make(map[string]struct{}, len(doc.Entities))
	for i, entity := range doc.Entities {
		where := fmt.Sprintf("entities[%d]", i)
		if entity.ID == "" {
			violations = append(violations, where+": missing id")
		} else {
			if _, dup := seen[entity.ID]; dup {
				violations = append(violations, fmt.Sprintf("%s: duplicate entity id %q", where, entity.ID))
			}
			seen[entity.ID] = struct{}{}
			where = fmt.Sprintf("entities[%d] (%s)", i, entity.ID)
		}

		if len(entity.Budgets) == 0 {
			violations = append(violations, where+": missing budgets")
		}
		for kind, amount := range entity.Budgets {
			if _, err := core.ParseResourceKind(kind); err != nil {
				violations = append(violations, fmt.Sprintf("%s: %v", where, err))
			}
			if bad, reason := badQuantity(amount); bad {
				violations = append(violations, fmt.Sprintf("%s: budget %s is %s", where, kind, reason))
			}
		}
		for _, capability := range entity.Capabilities {
			if capability == "" {
				violations = append(violations, where+": empty capability name")
			}
		}
		if bad, reason := badQuantity(entity.InitialEnergy); bad {
			violations = append(violations, fmt.Sprintf("%s: initial_energy is %s", where, reason))
		}
	}

	if doc.Energy != nil {
		if doc.Energy.TotalSystemEnergy <= 0 || math.IsInf(doc.Energy.TotalSystemEnergy, 0) || math.IsNaN(doc.Energy.TotalSystemEnergy) {
			violations = append(violations, "energy: total_system_energy must be positive and finite")
		}
		if bad, reason := badQuantity(doc.Energy.DecayRate); bad {
			violations = append(violations, "energy: decay_rate is "+reason)
		}
		if bad, reason := badQuantity(doc.Energy.DormancyThreshold); bad {
			violations = append(violations, "energy: dormancy_threshold is "+reason)
		}
	}

	if len(violations) > 0 {
		return core.Fail(violations...)
	}
	return core.OK()
}

// ValidateOperation checks the shape of an operation before any stateful
// validator runs. Failures map to SchemaInvalid and are non-retryable
// without caller changes.
func ValidateOperation(op core.Operation) core.ValidationResult {
	var violations []string
	if op.Entity == "" {
		violations = append(violations, "missing entity")
	}

	if ev := op.Event; ev != nil {
		if ev.ID == "" {
			violations = append(violations, "event: missing id")
		}
		if ev.Timestamp.IsZero() {
			violations = append(violations, "event: missing timestamp")
		}
		seen := make(map[string]struct{}, len(ev.Parents))
		for _, parent := range ev.Parents {
			if parent == "" {
				violations = append(violations, "event: empty parent id")
				continue
			}
			if parent == ev.ID {
				violations = append(violations, "event: references itself as parent")
			}
			if _, dup := seen[parent]; dup {
				violations = append(violations, fmt.Sprintf("event: duplicate parent %s", parent))
			}
			seen[parent] = struct{}{}
		}
	}

	if req := op.Resource; req != nil {
		if _, err := core.ParseResourceKind(string(req.Kind)); err != nil {
			violations = append(violations, "resource: "+err.Error())
		}
		if bad, reason := badQuantity(req.Amount); bad {
			violations = append(violations, "resource: amount is "+reason)
		}
	}

	if tr := op.EnergyTransfer; tr != nil {
		if tr.To == "" {
			violations = append(violations, "energy_transfer: missing destination")
		}
		if tr.To == op.Entity {
			violations = append(violations, "energy_transfer: destination equals source")
		}
		if bad, reason := badQuantity(tr.Amount); bad {
			violations = append(violations, "energy_transfer: amount is "+reason)
		}
	}

	if len(violations) > 0 {
		return core.Fail(violations...)
	}
	return core.OK()
}

// badQuantity flags negative, NaN or infinite numeric fields.
func badQuantity(v float64) (bool, string) {
	switch {
	case math.IsNaN(v):
		return true, "NaN"
	case math.IsInf(v, 0):
		return true, "infinite"
	case v < 0:
		return true, "negative"
	default:
		return false, ""
	}
}

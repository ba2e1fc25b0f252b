// Package resource implements per-entity, per-kind budget accounting. The
// ledger is sharded by (entity, kind) pair so allocations for unrelated
// entities never contend; the budget check plus reservation for one pair
// is a single atomic read-modify-write, so two racing requests can never
// both observe headroom and jointly exceed the budget.
package resource

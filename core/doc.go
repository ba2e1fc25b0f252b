// Package core provides the foundational domain types used by the
// agentphysics admission engine. It defines the core abstractions for:
//
//   - Entities (agents/actors subject to budgets and capability grants)
//   - Operations (proposed state changes submitted for admission)
//   - Causal events (timestamped nodes referencing prior events)
//   - Resource requests and allocations
//   - The violation taxonomy returned on rejected operations
//   - Admission receipts and read-only statistics snapshots
//
// The package intentionally keeps implementation concerns (ledger storage,
// pipeline orchestration, persistence sinks) out of scope, exposing plain
// value types so every validator and ledger can share one vocabulary.
package core

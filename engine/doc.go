// Package engine implements the admission pipeline that governs every
// operation issued by an autonomous entity.
//
// The Engine is the single entry point: callers submit an Operation via
// Admit and receive either an AdmissionReceipt or a typed violation
// error. Validation runs in a fixed order (schema, causality, resource,
// energy, security) and fails fast on the first violation. Stateful
// validators do not mutate on inspection: each ledger stages its change
// under its own lock, and only once every section of the operation has
// staged successfully are the stages committed. A rejection at any point
// aborts all stages, so a rejected operation leaves no partial side
// effects anywhere.
//
// Lock acquisition follows one global order (event ledger, resource
// ledger, energy ledger), which rules out deadlock between concurrent
// admissions.
//
// The engine also carries the administrative surface that is not part of
// admission itself: capability grants and revocations, allocation
// release, entity teardown, energy pool management and statistics
// snapshots.
package engine

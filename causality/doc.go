// Package causality implements the append-only event ledger and the causal
// ordering validator. Committed events form a DAG that is acyclic by
// construction: parents must exist before a child is inserted, so no edge
// can ever point forward.
//
// Mutation goes through a staged protocol so the admission pipeline can
// validate every section of an operation before committing any of them:
// Stage validates the descriptor and holds the ledger's write lock until
// the returned StagedEvent is either committed or aborted.
package causality

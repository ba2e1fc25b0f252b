package sink

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/hupe1980/agentphysics/core"
)

// Postgres implements Sink on a PostgreSQL database. Expected tables:
//
//	admission_receipts(id, entity, event_id, allocation_ref, energy_tx_id, admitted_at)
//	engine_snapshots(event_count, live_allocations, allocated_energy, free_energy, taken_at)
//
// The sink only appends; compaction and retention are external concerns.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open database handle. The sink does not own the
// handle's lifecycle.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// RecordAdmission inserts one receipt row.
func (s *Postgres) RecordAdmission(ctx context.Context, receipt core.AdmissionReceipt) error {
	query := `
		INSERT INTO admission_receipts (id, entity, event_id, allocation_ref, energy_tx_id, admitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		receipt.ID,
		string(receipt.Entity),
		nullable(receipt.EventID),
		nullable(string(receipt.AllocationRef)),
		nullable(receipt.EnergyTxID),
		receipt.AdmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to persist admission receipt: %w", err)
	}
	return nil
}

// RecordSnapshot inserts one snapshot row.
func (s *Postgres) RecordSnapshot(ctx context.Context, stats core.Statistics) error {
	query := `
		INSERT INTO engine_snapshots (event_count, live_allocations, allocated_energy, free_energy, taken_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := s.db.ExecContext(ctx, query,
		stats.EventCount,
		stats.LiveAllocations,
		stats.Energy.AllocatedEnergy,
		stats.Energy.FreeEnergy,
	)
	if err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return nil
}

// nullable maps empty strings to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

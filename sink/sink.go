// Package sink defines the external persistence/notification hook the
// engine reports to: admission receipts as they are issued and statistics
// snapshots on demand. The sink is the only asynchronous piece of the
// admission path; validator logic itself stays synchronous with the
// caller. Implementations must tolerate being called concurrently.
package sink

import (
	"context"

	"github.com/hupe1980/agentphysics/core"
)

// Sink receives accepted operations and engine snapshots.
type Sink interface {
	// RecordAdmission is invoked once per admitted operation.
	RecordAdmission(ctx context.Context, receipt core.AdmissionReceipt) error

	// RecordSnapshot persists a point-in-time statistics snapshot.
	RecordSnapshot(ctx context.Context, stats core.Statistics) error
}

// Noop discards everything. Used when no sink is configured.
type Noop struct{}

// RecordAdmission discards the receipt.
func (Noop) RecordAdmission(context.Context, core.AdmissionReceipt) error { return nil }

// RecordSnapshot discards the snapshot.
func (Noop) RecordSnapshot(context.Context, core.Statistics) error { return nil }

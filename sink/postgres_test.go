package sink

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentphysics/core"
)

func TestPostgres_RecordAdmission(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgres(db)
	ctx := context.Background()

	receipt := core.AdmissionReceipt{
		ID:            "receipt-1",
		Entity:        "researcher",
		EventID:       "event-1",
		AllocationRef: "alloc-1",
		AdmittedAt:    time.Now().UTC(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admission_receipts")).
		WithArgs("receipt-1", "researcher", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), receipt.AdmittedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, s.RecordAdmission(ctx, receipt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_RecordAdmission_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgres(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admission_receipts")).
		WillReturnError(assert.AnError)

	err = s.RecordAdmission(context.Background(), core.AdmissionReceipt{ID: "r"})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestPostgres_RecordSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgres(db)

	stats := core.Statistics{
		EventCount:      3,
		LiveAllocations: 2,
		Energy:          core.EnergyState{AllocatedEnergy: 0.4, FreeEnergy: 0.6},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO engine_snapshots")).
		WithArgs(3, 2, 0.4, 0.6).
		WillReturnResult(sqlmock.NewResult(1, 1))

	assert.NoError(t, s.RecordSnapshot(context.Background(), stats))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInMemory(t *testing.T) {
	s := NewInMemory()
	ctx := context.Background()

	require.NoError(t, s.RecordAdmission(ctx, core.AdmissionReceipt{ID: "a"}))
	require.NoError(t, s.RecordAdmission(ctx, core.AdmissionReceipt{ID: "b"}))
	require.NoError(t, s.RecordSnapshot(ctx, core.Statistics{EventCount: 1}))

	admissions := s.Admissions()
	require.Len(t, admissions, 2)
	assert.Equal(t, "a", admissions[0].ID)
	assert.Len(t, s.Snapshots(), 1)
}

// Interface compliance (compile-time assertions).
var (
	_ Sink = (*Postgres)(nil)
	_ Sink = (*InMemory)(nil)
	_ Sink = Noop{}
)

package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/tiemnho-dev/shift-roster/backend/internal/config"
)

var (
	preferenceRowColumns = []string{"id", "employee_id", "date", "start_time", "end_time", "is_off", "status", "notes", "created_at", "updated_at", "version"}
	shiftRowColumns      = []string{"id", "employee_id", "date", "start_time", "end_time", "shift_type", "duration", "position", "status", "notes", "preference_id", "created_at", "updated_at", "version"}
	testNow              = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
)

func newTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 5

	return NewRepository(cfg, db), mock
}

package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestUpsertShiftPreference_InsertThenOverwrite(t *testing.T) {
	repo, mock := newTestRepository(t)
	date := domain.NewDate(2026, 2, 2)

	// 第一次提交：插入
	mock.ExpectQuery(`INSERT INTO shift_preferences`).
		WithArgs(int64(1), "2026-02-02", "08:00", "12:00", false, "pending", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "inserted"}).
			AddRow(10, testNow, testNow, 1, true))

	// 第二次提交同一天：覆盖同一条记录并重置为 pending
	mock.ExpectQuery(`ON CONFLICT \(employee_id, date\) DO UPDATE`).
		WithArgs(int64(1), "2026-02-02", "13:00", "17:00", false, "pending", "đổi ca").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "inserted"}).
			AddRow(10, testNow, testNow, 2, false))

	first := &domain.ShiftPreference{EmployeeID: 1, Date: date, StartTime: strPtr("08:00"), EndTime: strPtr("12:00"), Status: domain.PreferenceStatusPending}
	inserted, err := repo.UpsertShiftPreference(first)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, int64(10), first.ID)

	second := &domain.ShiftPreference{EmployeeID: 1, Date: date, StartTime: strPtr("13:00"), EndTime: strPtr("17:00"), Status: domain.PreferenceStatusPending, Notes: "đổi ca"}
	inserted, err = repo.UpsertShiftPreference(second)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int32(2), second.Version)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertShiftPreference_OffDaySendsNullTimes(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`INSERT INTO shift_preferences`).
		WithArgs(int64(2), "2026-02-03", nil, nil, true, "pending", "").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version", "inserted"}).
			AddRow(11, testNow, testNow, 1, true))

	p := &domain.ShiftPreference{EmployeeID: 2, Date: domain.NewDate(2026, 2, 3), IsOff: true, Status: domain.PreferenceStatusPending}
	inserted, err := repo.UpsertShiftPreference(p)
	require.NoError(t, err)
	assert.True(t, inserted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetShiftPreferences_ScansRows(t *testing.T) {
	repo, mock := newTestRepository(t)
	employeeID := int64(1)

	rows := sqlmock.NewRows(preferenceRowColumns).
		AddRow(10, 1, "2026-02-02", "08:00", "12:00", false, "pending", "", testNow, testNow, 1).
		AddRow(11, 1, "2026-02-03", nil, nil, true, "rejected", "cần người", testNow, testNow, 3)

	mock.ExpectQuery(`FROM shift_preferences WHERE date BETWEEN \$1 AND \$2`).
		WithArgs("2026-02-02", "2026-02-08", employeeID).
		WillReturnRows(rows)

	prefs, err := repo.GetShiftPreferences(ShiftPreferenceFilter{
		EmployeeID: &employeeID,
		StartDate:  domain.NewDate(2026, 2, 2),
		EndDate:    domain.NewDate(2026, 2, 8),
	})
	require.NoError(t, err)
	require.Len(t, prefs, 2)

	assert.Equal(t, "2026-02-02", prefs[0].Date.String())
	require.NotNil(t, prefs[0].StartTime)
	assert.Equal(t, "08:00", *prefs[0].StartTime)
	assert.Equal(t, 4.0, prefs[0].Duration())

	assert.True(t, prefs[1].IsOff)
	assert.Nil(t, prefs[1].StartTime)
	assert.Nil(t, prefs[1].EndTime)
	assert.Equal(t, domain.PreferenceStatusRejected, prefs[1].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetShiftPreferences_AllEmployees(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`FROM shift_preferences`).
		WithArgs("2026-02-02", "2026-02-02", nil).
		WillReturnRows(sqlmock.NewRows(preferenceRowColumns))

	prefs, err := repo.GetShiftPreferences(ShiftPreferenceFilter{
		StartDate: domain.NewDate(2026, 2, 2),
		EndDate:   domain.NewDate(2026, 2, 2),
	})
	require.NoError(t, err)
	assert.Empty(t, prefs)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetShiftPreferenceByID_NotFound(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`FROM shift_preferences WHERE id = \$1`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(preferenceRowColumns))

	_, err := repo.GetShiftPreferenceByID(99)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestUpdateShiftPreference_VersionConflict(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`UPDATE shift_preferences`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at", "version"}))

	p := &domain.ShiftPreference{ID: 10, EmployeeID: 1, Date: domain.NewDate(2026, 2, 2), IsOff: true, Status: domain.PreferenceStatusPending, Version: 1}
	err := repo.UpdateShiftPreference(p)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateShiftPreference_Success(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(`UPDATE shift_preferences`).
		WithArgs("2026-02-02", nil, nil, true, "pending", "ốm", int64(10), int32(1)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at", "version"}).AddRow(testNow, 2))

	p := &domain.ShiftPreference{ID: 10, EmployeeID: 1, Date: domain.NewDate(2026, 2, 2), IsOff: true, Status: domain.PreferenceStatusPending, Notes: "ốm", Version: 1}
	require.NoError(t, repo.UpdateShiftPreference(p))
	assert.Equal(t, int32(2), p.Version)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteShiftPreference(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec(`DELETE FROM shift_preferences WHERE id = \$1`).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM shift_preferences WHERE id = \$1`).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteShiftPreference(10))
	assert.ErrorIs(t, repo.DeleteShiftPreference(10), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

package repository

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

func expectShiftsOfDay(mock sqlmock.Sqlmock, employeeID int64, date string, rows *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT id FROM employees WHERE id = \$1 FOR NO KEY UPDATE`).
		WithArgs(employeeID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(employeeID))
	mock.ExpectQuery(`FROM shifts WHERE employee_id = \$1 AND date = \$2`).
		WithArgs(employeeID, date).
		WillReturnRows(rows)
}

func TestCreateShift_Standalone(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	expectShiftsOfDay(mock, 3, "2026-02-02", sqlmock.NewRows(shiftRowColumns).
		AddRow(150, 3, "2026-02-02", "08:00", "12:00", "morning", 4.0, "", "approved", "", nil, testNow, testNow, 1))
	mock.ExpectQuery(`INSERT INTO shifts`).
		WithArgs(int64(3), "2026-02-02", "17:00", "22:00", "evening", 5.0, "", "approved", "", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version"}).AddRow(200, testNow, testNow, 1))
	mock.ExpectCommit()

	s := newApprovedShift(t, 3, domain.NewDate(2026, 2, 2), "17:00", "22:00")
	require.NoError(t, repo.CreateShift(s))
	assert.Equal(t, int64(200), s.ID)
	assert.Nil(t, s.PreferenceID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShift_OverlapsExistingShift(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	expectShiftsOfDay(mock, 3, "2026-02-02", sqlmock.NewRows(shiftRowColumns).
		AddRow(150, 3, "2026-02-02", "16:00", "20:00", "afternoon", 4.0, "", "approved", "", nil, testNow, testNow, 1))
	mock.ExpectRollback()

	s := newApprovedShift(t, 3, domain.NewDate(2026, 2, 2), "17:00", "22:00")
	err := repo.CreateShift(s)
	assert.ErrorIs(t, err, domain.ErrOverlappingShifts)
	assert.Zero(t, s.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShift_UnknownEmployee(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM employees WHERE id = \$1 FOR NO KEY UPDATE`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.CreateShift(newApprovedShift(t, 404, domain.NewDate(2026, 2, 2), "17:00", "22:00"))
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetShifts_ScansRows(t *testing.T) {
	repo, mock := newTestRepository(t)

	rows := sqlmock.NewRows(shiftRowColumns).
		AddRow(100, 1, "2026-02-02", "08:00", "12:00", "morning", 4.0, "Pha chế", "approved", "", 10, testNow, testNow, 1).
		AddRow(101, 1, "2026-02-02", "17:00", "21:00", "evening", 4.0, "", "approved", "", nil, testNow, testNow, 1)

	mock.ExpectQuery(`FROM shifts WHERE date BETWEEN \$1 AND \$2`).
		WithArgs("2026-02-02", "2026-02-02", nil).
		WillReturnRows(rows)

	shifts, err := repo.GetShifts(ShiftFilter{StartDate: domain.NewDate(2026, 2, 2), EndDate: domain.NewDate(2026, 2, 2)})
	require.NoError(t, err)
	require.Len(t, shifts, 2)

	require.NotNil(t, shifts[0].PreferenceID)
	assert.Equal(t, int64(10), *shifts[0].PreferenceID)
	assert.Equal(t, "Pha chế", shifts[0].Position)
	assert.Nil(t, shifts[1].PreferenceID)
	assert.Equal(t, domain.ShiftTypeEvening, shifts[1].ShiftType)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateShift_VersionConflict(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	expectShiftsOfDay(mock, 1, "2026-02-02", sqlmock.NewRows(shiftRowColumns))
	mock.ExpectQuery(`UPDATE shifts`).WillReturnRows(sqlmock.NewRows([]string{"updated_at", "version"}))
	mock.ExpectRollback()

	s := newApprovedShift(t, 1, domain.NewDate(2026, 2, 2), "09:00", "12:00")
	s.ID, s.Version = 100, 1
	assert.ErrorIs(t, repo.UpdateShift(s), sql.ErrNoRows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateShift_SendsDerivedDuration(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	// 自己原来的时间段不算冲突
	expectShiftsOfDay(mock, 1, "2026-02-02", sqlmock.NewRows(shiftRowColumns).
		AddRow(100, 1, "2026-02-02", "08:00", "12:00", "morning", 4.0, "Phục vụ", "approved", "", nil, testNow, testNow, 1))
	mock.ExpectQuery(`UPDATE shifts`).
		WithArgs("2026-02-02", "09:00", "12:30", "morning", 3.5, "Phục vụ", "", int64(100), int32(1)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at", "version"}).AddRow(testNow, 2))
	mock.ExpectCommit()

	s := newApprovedShift(t, 1, domain.NewDate(2026, 2, 2), "09:00", "12:30")
	s.ID, s.Version, s.Position = 100, 1, "Phục vụ"
	require.NoError(t, repo.UpdateShift(s))
	assert.Equal(t, int32(2), s.Version)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateShift_MovedOntoAnotherShift(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectBegin()
	expectShiftsOfDay(mock, 1, "2026-02-03", sqlmock.NewRows(shiftRowColumns).
		AddRow(101, 1, "2026-02-03", "10:00", "14:00", "morning", 4.0, "", "approved", "", nil, testNow, testNow, 1))
	mock.ExpectRollback()

	s := newApprovedShift(t, 1, domain.NewDate(2026, 2, 3), "09:00", "12:00")
	s.ID, s.Version = 100, 1
	assert.ErrorIs(t, repo.UpdateShift(s), domain.ErrOverlappingShifts)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteShift_NotFound(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec(`DELETE FROM shifts WHERE id = \$1`).
		WithArgs(int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteShift(404), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

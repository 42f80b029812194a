package handler

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

func TestCreateShift_Standalone(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	expectMyInfo(mock, testManager)
	mock.ExpectBegin()
	expectShiftsOfDay(mock, 2, "2026-02-02", sqlmock.NewRows(shiftRowColumns))
	mock.ExpectQuery(`INSERT INTO shifts`).
		WithArgs(int64(2), "2026-02-02", "13:15", "17:45", "afternoon", 4.5, "", "approved", "", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version"}).AddRow(200, testNow, testNow, 1))
	mock.ExpectCommit()

	rr := doRequest(t, h, http.MethodPost, "/shifts", map[string]any{
		"employeeId": 2, "date": "2026-02-02", "startTime": "13:15", "endTime": "17:45",
		// 客户端传入的时长会被忽略
		"duration": 99,
	}, testManager)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created domain.Shift
	decodeData(t, rr, &created)
	assert.Equal(t, int64(200), created.ID)
	assert.Equal(t, 4.5, created.Duration)
	assert.Equal(t, domain.ShiftTypeAfternoon, created.ShiftType)
	assert.Nil(t, created.PreferenceID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShift_OverlapsExistingShift(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	expectMyInfo(mock, testManager)
	mock.ExpectBegin()
	expectShiftsOfDay(mock, 2, "2026-02-02", sqlmock.NewRows(shiftRowColumns).
		AddRow(150, 2, "2026-02-02", "13:00", "17:00", "afternoon", 4.0, "", "approved", "", nil, testNow, testNow, 1))
	mock.ExpectRollback()

	rr := doRequest(t, h, http.MethodPost, "/shifts", map[string]any{
		"employeeId": 2, "date": "2026-02-02", "startTime": "13:15", "endTime": "17:45",
	}, testManager)

	assert.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShift_UnknownEmployee(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	expectMyInfo(mock, testManager)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM employees WHERE id = \$1 FOR NO KEY UPDATE`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	rr := doRequest(t, h, http.MethodPost, "/shifts", map[string]any{
		"employeeId": 404, "date": "2026-02-02", "startTime": "13:15", "endTime": "17:45",
	}, testManager)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, domain.ErrEmployeeNotFound.Error(), decodeResponse(t, rr).Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShift_WithPreferenceApprovesIt(t *testing.T) {
	h, mock, publisher := newTestHandler(t)

	expectMyInfo(mock, testManager)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(preferenceRowColumns).
			AddRow(10, 1, "2026-02-02", "08:00", "12:00", false, "pending", "", testNow, testNow, 1))
	expectShiftsOfDay(mock, 1, "2026-02-02", sqlmock.NewRows(shiftRowColumns))
	mock.ExpectQuery(`INSERT INTO shifts`).
		WithArgs(int64(1), "2026-02-02", "08:00", "12:00", "morning", 4.0, "", "approved", "", int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "version"}).AddRow(100, testNow, testNow, 1))
	mock.ExpectQuery(`UPDATE shift_preferences`).
		WithArgs("approved", "", int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at", "version"}).AddRow(testNow, 2))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM employees WHERE id = \$1`).WithArgs(int64(1)).WillReturnRows(employeeRow(testStaff))

	rr := doRequest(t, h, http.MethodPost, "/shifts", map[string]any{
		"employeeId": 1, "date": "2026-02-02", "startTime": "08:00", "endTime": "12:00", "preferenceId": 10,
	}, testManager)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created domain.Shift
	decodeData(t, rr, &created)
	assert.Equal(t, 4.0, created.Duration)
	require.NotNil(t, created.PreferenceID)
	assert.Equal(t, int64(10), *created.PreferenceID)
	assert.Len(t, publisher.sent(), 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShift_PreferenceOfAnotherEmployee(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	expectMyInfo(mock, testManager)
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(preferenceRowColumns).
			AddRow(10, 1, "2026-02-02", "08:00", "12:00", false, "pending", "", testNow, testNow, 1))
	mock.ExpectRollback()

	rr := doRequest(t, h, http.MethodPost, "/shifts", map[string]any{
		"employeeId": 2, "date": "2026-02-02", "startTime": "08:00", "endTime": "12:00", "preferenceId": 10,
	}, testManager)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShift_InvalidRange(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	expectMyInfo(mock, testManager)

	rr := doRequest(t, h, http.MethodPost, "/shifts", map[string]any{
		"employeeId": 1, "date": "2026-02-02", "startTime": "12:00", "endTime": "12:00",
	}, testManager)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateShift_RederivesDuration(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	expectMyInfo(mock, testManager)
	mock.ExpectQuery(`FROM shifts WHERE id = \$1`).
		WithArgs(int64(100)).
		WillReturnRows(sqlmock.NewRows(shiftRowColumns).
			AddRow(100, 1, "2026-02-02", "08:00", "12:00", "morning", 4.0, "", "approved", "", 10, testNow, testNow, 1))
	mock.ExpectBegin()
	expectShiftsOfDay(mock, 1, "2026-02-02", sqlmock.NewRows(shiftRowColumns).
		AddRow(100, 1, "2026-02-02", "08:00", "12:00", "morning", 4.0, "", "approved", "", 10, testNow, testNow, 1).
		AddRow(101, 1, "2026-02-02", "17:00", "21:00", "evening", 4.0, "", "approved", "", 10, testNow, testNow, 1))
	mock.ExpectQuery(`UPDATE shifts`).
		WithArgs("2026-02-02", "08:00", "14:30", "morning", 6.5, "Pha chế", "", int64(100), int32(1)).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at", "version"}).AddRow(testNow, 2))
	mock.ExpectCommit()

	rr := doRequest(t, h, http.MethodPut, "/shifts", map[string]any{
		"id": 100, "endTime": "14:30", "position": "Pha chế",
	}, testManager)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated domain.Shift
	decodeData(t, rr, &updated)
	assert.Equal(t, 6.5, updated.Duration)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateShift_NotFound(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	expectMyInfo(mock, testManager)
	mock.ExpectQuery(`FROM shifts WHERE id = \$1`).WillReturnRows(sqlmock.NewRows(shiftRowColumns))

	rr := doRequest(t, h, http.MethodPut, "/shifts", map[string]any{"id": 404, "notes": "x"}, testManager)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteShift(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	expectMyInfo(mock, testManager)
	mock.ExpectExec(`DELETE FROM shifts WHERE id = \$1`).WithArgs(int64(100)).WillReturnResult(sqlmock.NewResult(0, 1))
	rr := doRequest(t, h, http.MethodDelete, "/shifts", map[string]any{"id": 100}, testManager)
	assert.Equal(t, http.StatusOK, rr.Code)

	expectMyInfo(mock, testManager)
	mock.ExpectExec(`DELETE FROM shifts WHERE id = \$1`).WithArgs(int64(100)).WillReturnResult(sqlmock.NewResult(0, 0))
	rr = doRequest(t, h, http.MethodDelete, "/shifts", map[string]any{"id": 100}, testManager)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetShifts_VisibleToStaff(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	expectMyInfo(mock, testStaff)
	mock.ExpectQuery(`FROM shifts WHERE date BETWEEN \$1 AND \$2`).
		WithArgs("2026-01-19", "2026-01-19", nil).
		WillReturnRows(sqlmock.NewRows(shiftRowColumns).
			AddRow(100, 2, "2026-01-19", "08:00", "12:00", "morning", 4.0, "", "approved", "", nil, testNow, testNow, 1))

	rr := doRequest(t, h, http.MethodGet, "/shifts?startDate=2026-01-19&endDate=2026-01-19", nil, testStaff)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var shifts []domain.Shift
	decodeData(t, rr, &shifts)
	require.Len(t, shifts, 1)
	assert.Equal(t, "2026-01-19", shifts[0].Date.String())

	assert.NoError(t, mock.ExpectationsWereMet())
}

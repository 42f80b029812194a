package handler

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiemnho-dev/shift-roster/backend/internal/analytics"
)

func TestGetLaborCost(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	expectMyInfo(mock, testManager)
	mock.ExpectQuery(`FROM shifts WHERE date BETWEEN \$1 AND \$2`).
		WithArgs("2026-02-02", "2026-02-03", nil).
		WillReturnRows(sqlmock.NewRows(shiftRowColumns).
			AddRow(100, 1, "2026-02-02", "08:00", "12:00", "morning", 4.0, "", "approved", "", 10, testNow, testNow, 1))
	mock.ExpectQuery(`SELECT id, tier FROM employees`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tier"}).AddRow(1, "FullTime").AddRow(99, "Manager"))
	mock.ExpectQuery(`FROM revenue_estimates WHERE date BETWEEN \$1 AND \$2`).
		WithArgs("2026-02-02", "2026-02-03").
		WillReturnRows(sqlmock.NewRows([]string{"date", "amount", "is_actual", "notes", "updated_at"}).
			AddRow("2026-02-02", 10000000, false, "", testNow))

	rr := doRequest(t, h, http.MethodGet, "/labor-cost?startDate=2026-02-02&endDate=2026-02-03", nil, testManager)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var rows []analytics.DailyLaborCost
	decodeData(t, rr, &rows)
	require.Len(t, rows, 2)

	assert.Equal(t, "2026-02-02", rows[0].Date.String())
	assert.InDelta(t, 1.2, rows[0].Percent, 1e-9)
	assert.False(t, rows[0].RevenueIsDefault)

	assert.Equal(t, "2026-02-03", rows[1].Date.String())
	assert.Zero(t, rows[1].Percent)
	assert.True(t, rows[1].RevenueIsDefault)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLaborCost_StaffForbidden(t *testing.T) {
	h, mock, _ := newTestHandler(t)

	expectMyInfo(mock, testStaff)
	rr := doRequest(t, h, http.MethodGet, "/labor-cost?startDate=2026-02-02&endDate=2026-02-03", nil, testStaff)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

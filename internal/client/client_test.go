package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": status < 400,
		"message": message,
		"data":    data,
	})
}

func newTestServer(t *testing.T) *httptest.Server {
	r := chi.NewRouter()

	r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "__shift_roster_token", Value: "token", Path: "/"})
		writeEnvelope(w, http.StatusOK, "Đăng nhập thành công", nil)
	})

	r.Get("/shifts", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("__shift_roster_token"); err != nil {
			writeEnvelope(w, http.StatusUnauthorized, "Chưa đăng nhập", nil)
			return
		}
		assert.Equal(t, "2026-02-02", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2026-02-03", r.URL.Query().Get("endDate"))
		assert.Equal(t, "1", r.URL.Query().Get("employeeId"))
		writeEnvelope(w, http.StatusOK, "ok", []map[string]any{
			{"id": 100, "employeeId": 1, "date": "2026-02-02", "startTime": "08:00", "endTime": "12:00", "shiftType": "morning", "duration": 4, "status": "approved"},
		})
	})

	r.Post("/shift-preferences", func(w http.ResponseWriter, r *http.Request) {
		var input PreferenceInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		if input.IsOff {
			writeEnvelope(w, http.StatusTooManyRequests, "Yêu cầu đang được xử lý, vui lòng thử lại sau", nil)
			return
		}
		writeEnvelope(w, http.StatusCreated, "Tạo đăng ký thành công", map[string]any{
			"id": 10, "employeeId": input.EmployeeID, "date": input.Date, "startTime": input.StartTime,
			"endTime": input.EndTime, "isOff": false, "status": "pending",
		})
	})

	r.Post("/shift-preferences/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", chi.URLParam(r, "id"))
		writeEnvelope(w, http.StatusConflict, "trạng thái đăng ký không cho phép thao tác này", nil)
	})

	r.Delete("/shifts", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int64
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(100), body["id"])
		writeEnvelope(w, http.StatusOK, "Đã xoá ca làm", nil)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func TestClient_LoginKeepsCookie(t *testing.T) {
	server := newTestServer(t)
	c := New(server.URL, 2*time.Second)
	ctx := context.Background()

	employeeID := int64(1)
	start, end := mustDate(t, "2026-02-02"), mustDate(t, "2026-02-03")

	_, err := c.GetShifts(ctx, start, end, &employeeID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	require.NoError(t, c.Login(ctx, "annv", "secret"))

	shifts, err := c.GetShifts(ctx, start, end, &employeeID)
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, 4.0, shifts[0].Duration)
	assert.Equal(t, domain.ShiftTypeMorning, shifts[0].ShiftType)
}

func TestClient_SubmitShiftPreference(t *testing.T) {
	server := newTestServer(t)
	c := New(server.URL, 2*time.Second)

	saved, err := c.SubmitShiftPreference(context.Background(), PreferenceInput{
		EmployeeID: 1, Date: mustDate(t, "2026-02-02"), StartTime: strPtr("08:00"), EndTime: strPtr("12:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), saved.ID)
	assert.Equal(t, "2026-02-02", saved.Date.String())
	assert.Equal(t, domain.PreferenceStatusPending, saved.Status)

	_, err = c.SubmitShiftPreference(context.Background(), PreferenceInput{EmployeeID: 1, Date: mustDate(t, "2026-02-02"), IsOff: true})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsTooManyRequests())
	assert.Equal(t, "Yêu cầu đang được xử lý, vui lòng thử lại sau", apiErr.Message)
}

func TestClient_ErrorsAndEmptyData(t *testing.T) {
	server := newTestServer(t)
	c := New(server.URL, 2*time.Second)

	_, err := c.ApproveShiftPreference(context.Background(), 10, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsConflict())
	assert.False(t, apiErr.IsNotFound())
	assert.Equal(t, "lỗi API 409: trạng thái đăng ký không cho phép thao tác này", apiErr.Error())

	assert.NoError(t, c.DeleteShift(context.Background(), 100))
}

package holiday

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

func TestFixedLookup(t *testing.T) {
	l := NewFixedLookup()

	holidays, err := l.GetHolidaysInRange(context.Background(), domain.NewDate(2026, 4, 25), domain.NewDate(2026, 5, 5))
	require.NoError(t, err)
	require.Len(t, holidays, 2)

	assert.Equal(t, "2026-04-30", holidays[0].Date.String())
	assert.Equal(t, "2026-05-01", holidays[1].Date.String())
	assert.Equal(t, domain.HolidayTypeSolar, holidays[0].Type)
}

func TestFixedLookup_EmptyAndReversedRange(t *testing.T) {
	l := NewFixedLookup()

	holidays, err := l.GetHolidaysInRange(context.Background(), domain.NewDate(2026, 2, 2), domain.NewDate(2026, 2, 8))
	require.NoError(t, err)
	assert.Empty(t, holidays)

	holidays, err = l.GetHolidaysInRange(context.Background(), domain.NewDate(2026, 9, 3), domain.NewDate(2026, 9, 1))
	require.NoError(t, err)
	assert.Empty(t, holidays)
}

func TestRemoteLookup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/holidays", r.URL.Path)
		assert.Equal(t, "2026-02-01", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2026-02-28", r.URL.Query().Get("endDate"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"holidays":[
			{"date":"2026-02-17","name":"Tết Nguyên Đán","type":"lunar"},
			{"date":"2026-02-16","name":"Giao thừa","type":"lunar"},
			{"date":"2026-03-01","name":"ngoài khoảng","type":"solar"}
		]}`))
	}))
	defer server.Close()

	l := NewRemoteLookup(server.URL, time.Second)
	holidays, err := l.GetHolidaysInRange(context.Background(), domain.NewDate(2026, 2, 1), domain.NewDate(2026, 2, 28))
	require.NoError(t, err)
	require.Len(t, holidays, 2)

	assert.Equal(t, "2026-02-16", holidays[0].Date.String())
	assert.Equal(t, "Tết Nguyên Đán", holidays[1].Name)
	assert.Equal(t, domain.HolidayTypeLunar, holidays[1].Type)
}

func TestRemoteLookup_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	l := NewRemoteLookup(server.URL, time.Second)
	_, err := l.GetHolidaysInRange(context.Background(), domain.NewDate(2026, 2, 1), domain.NewDate(2026, 2, 28))
	require.Error(t, err)
	assert.Equal(t, "dịch vụ ngày lễ trả về mã 502", err.Error())
}

type failingLookup struct{}

func (failingLookup) GetHolidaysInRange(context.Context, domain.Date, domain.Date) ([]domain.Holiday, error) {
	return nil, errors.New("provider down")
}

func TestFallbackLookup(t *testing.T) {
	l := NewFallbackLookup(failingLookup{}, NewFixedLookup())

	holidays, err := l.GetHolidaysInRange(context.Background(), domain.NewDate(2026, 9, 1), domain.NewDate(2026, 9, 30))
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, "Quốc khánh", holidays[0].Name)
}

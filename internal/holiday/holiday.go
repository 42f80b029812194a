package holiday

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

// Lookup 只读的节假日查询，结果仅用于界面标注，不参与任何业务规则
type Lookup interface {
	GetHolidaysInRange(ctx context.Context, startDate, endDate domain.Date) ([]domain.Holiday, error)
}

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

// 阳历固定节日，农历节日（春节、雄王节）需要远程数据源
var solarHolidays = []fixedHoliday{
	{time.January, 1, "Tết Dương lịch"},
	{time.April, 30, "Ngày Giải phóng miền Nam"},
	{time.May, 1, "Ngày Quốc tế Lao động"},
	{time.September, 2, "Quốc khánh"},
}

type FixedLookup struct{}

func NewFixedLookup() *FixedLookup {
	return &FixedLookup{}
}

func (FixedLookup) GetHolidaysInRange(_ context.Context, startDate, endDate domain.Date) ([]domain.Holiday, error) {
	holidays := make([]domain.Holiday, 0)
	if endDate.Before(startDate) {
		return holidays, nil
	}

	for _, date := range domain.DatesBetween(startDate, endDate) {
		_, month, day := date.YearMonthDay()
		for _, h := range solarHolidays {
			if h.month == month && h.day == day {
				holidays = append(holidays, domain.Holiday{Date: date, Name: h.name, Type: domain.HolidayTypeSolar})
			}
		}
	}

	return holidays, nil
}

// FallbackLookup 优先使用 primary，失败时记录日志并退回 fallback
type FallbackLookup struct {
	primary  Lookup
	fallback Lookup
}

func NewFallbackLookup(primary, fallback Lookup) *FallbackLookup {
	return &FallbackLookup{primary: primary, fallback: fallback}
}

func (l *FallbackLookup) GetHolidaysInRange(ctx context.Context, startDate, endDate domain.Date) ([]domain.Holiday, error) {
	holidays, err := l.primary.GetHolidaysInRange(ctx, startDate, endDate)
	if err == nil {
		return holidays, nil
	}

	slog.Warn("远程节假日查询失败，使用固定节假日", "error", err)
	return l.fallback.GetHolidaysInRange(ctx, startDate, endDate)
}

func sortHolidays(holidays []domain.Holiday) {
	sort.SliceStable(holidays, func(i, j int) bool {
		return holidays[i].Date.Before(holidays[j].Date)
	})
}

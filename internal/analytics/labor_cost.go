package analytics

import (
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

// Rates 为每小时工资（货币最小单位）
type Rates struct {
	FullTime int64
	Casual   int64
}

type DailyLaborCost struct {
	Date             domain.Date             `json:"date"`
	HoursByTier      map[domain.Tier]float64 `json:"hoursByTier"`
	FullTimeHours    float64                 `json:"fullTimeHours"`
	CasualHours      float64                 `json:"casualHours"`
	TotalHours       float64                 `json:"totalHours"`
	LaborCost        float64                 `json:"laborCost"`
	Revenue          int64                   `json:"revenue"`
	RevenueIsDefault bool                    `json:"revenueIsDefault"`
	Percent          float64                 `json:"percent"`
}

// Compute 计算某一天的人力成本占比。
// shifts 中不属于 date 的班次会被忽略；tiers 中找不到的员工按 Casual 计算。
// revenue <= 0 时占比固定为 0。
func Compute(date domain.Date, shifts []*domain.Shift, tiers map[int64]domain.Tier, revenue int64, rates Rates) DailyLaborCost {
	result := DailyLaborCost{
		Date:        date,
		HoursByTier: make(map[domain.Tier]float64),
		Revenue:     revenue,
	}

	for _, s := range shifts {
		if !s.Date.Equal(date) {
			continue
		}

		tier, ok := tiers[s.EmployeeID]
		if !ok {
			tier = domain.TierCasual
		}

		result.HoursByTier[tier] += s.Duration
		result.TotalHours += s.Duration

		switch tier {
		case domain.TierFullTime:
			result.FullTimeHours += s.Duration
		case domain.TierCasual:
			result.CasualHours += s.Duration
		}
	}

	result.LaborCost = result.FullTimeHours*float64(rates.FullTime) + result.CasualHours*float64(rates.Casual)

	if revenue > 0 {
		result.Percent = result.LaborCost * 100 / float64(revenue)
	}

	return result
}

type Calculator struct {
	rates          Rates
	defaultRevenue int64
}

func NewCalculator(rates Rates, defaultRevenue int64) *Calculator {
	return &Calculator{rates: rates, defaultRevenue: defaultRevenue}
}

func (c *Calculator) Rates() Rates {
	return c.rates
}

// Range 为 [startDate, endDate] 中的每一天输出一行，没有班次的日期同样包含在内
func (c *Calculator) Range(startDate, endDate domain.Date, shifts []*domain.Shift, tiers map[int64]domain.Tier, estimates []*domain.RevenueEstimate) []DailyLaborCost {
	shiftsByDate := make(map[domain.Date][]*domain.Shift)
	for _, s := range shifts {
		shiftsByDate[s.Date] = append(shiftsByDate[s.Date], s)
	}

	revenueByDate := make(map[domain.Date]int64, len(estimates))
	for _, e := range estimates {
		revenueByDate[e.Date] = e.Amount
	}

	dates := domain.DatesBetween(startDate, endDate)
	results := make([]DailyLaborCost, 0, len(dates))
	for _, date := range dates {
		revenue, ok := revenueByDate[date]
		if !ok {
			revenue = c.defaultRevenue
		}

		daily := Compute(date, shiftsByDate[date], tiers, revenue, c.rates)
		daily.RevenueIsDefault = !ok
		results = append(results, daily)
	}

	return results
}

package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
	"github.com/tiemnho-dev/shift-roster/backend/internal/utils"
)

const (
	defaultRangeDays = 7
	maxRangeDays     = 366
)

// readDateRange 读取 startDate / endDate 查询参数（闭区间，按门店所在时区的日历日）。
// 缺省时从今天开始取一周。
func (h *Handler) readDateRange(r *http.Request) (domain.Date, domain.Date, error) {
	query := r.URL.Query()

	startDate := domain.DateOf(time.Now().In(h.location))
	if s := query.Get("startDate"); s != "" {
		d, err := domain.ParseDate(s)
		if err != nil {
			return domain.Date{}, domain.Date{}, fmt.Errorf("startDate: %w", err)
		}
		startDate = d
	}

	endDate := startDate.AddDays(defaultRangeDays - 1)
	if s := query.Get("endDate"); s != "" {
		d, err := domain.ParseDate(s)
		if err != nil {
			return domain.Date{}, domain.Date{}, fmt.Errorf("endDate: %w", err)
		}
		endDate = d
	}

	if err := utils.ValidateDateRange(startDate, endDate, maxRangeDays); err != nil {
		return domain.Date{}, domain.Date{}, err
	}

	return startDate, endDate, nil
}

func readOptionalInt64Query(r *http.Request, name string) (*int64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s không hợp lệ", name)
	}
	return &v, nil
}

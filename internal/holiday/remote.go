package holiday

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

type remoteResponse struct {
	Holidays []domain.Holiday `json:"holidays"`
}

// RemoteLookup 通过 HTTP 查询包含农历节日的完整节假日列表
//
//	GET {baseURL}/holidays?startDate=YYYY-MM-DD&endDate=YYYY-MM-DD
//	-> {"holidays": [{"date": "...", "name": "...", "type": "lunar"}]}
type RemoteLookup struct {
	httpClient *resty.Client
}

func NewRemoteLookup(baseURL string, timeout time.Duration) *RemoteLookup {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(1 * time.Second).
		SetHeader("Accept", "application/json")

	return &RemoteLookup{httpClient: client}
}

func (l *RemoteLookup) GetHolidaysInRange(ctx context.Context, startDate, endDate domain.Date) ([]domain.Holiday, error) {
	var response remoteResponse
	resp, err := l.httpClient.R().
		SetContext(ctx).
		SetQueryParam("startDate", startDate.String()).
		SetQueryParam("endDate", endDate.String()).
		SetResult(&response).
		Get("/holidays")
	if err != nil {
		return nil, fmt.Errorf("không thể gọi dịch vụ ngày lễ: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("dịch vụ ngày lễ trả về mã %d", resp.StatusCode())
	}

	holidays := make([]domain.Holiday, 0, len(response.Holidays))
	for _, h := range response.Holidays {
		if h.Date.Before(startDate) || h.Date.After(endDate) {
			continue
		}
		holidays = append(holidays, h)
	}
	sortHolidays(holidays)

	return holidays, nil
}

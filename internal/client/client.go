package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

// envelope 与服务端 {success, message, data} 的响应格式一致
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// APIError 表示服务端返回了非 2xx 状态码
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lỗi API %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

func (e *APIError) IsTooManyRequests() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

type PreferenceInput struct {
	EmployeeID int64       `json:"employeeId"`
	Date       domain.Date `json:"date"`
	StartTime  *string     `json:"startTime,omitempty"`
	EndTime    *string     `json:"endTime,omitempty"`
	IsOff      bool        `json:"isOff"`
	Notes      string      `json:"notes,omitempty"`
}

type Segment struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Position  string `json:"position,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type ApproveResult struct {
	Preference *domain.ShiftPreference `json:"preference"`
	Shifts     []*domain.Shift         `json:"shifts"`
}

type ShiftInput struct {
	EmployeeID   int64       `json:"employeeId"`
	Date         domain.Date `json:"date"`
	StartTime    string      `json:"startTime"`
	EndTime      string      `json:"endTime"`
	Position     string      `json:"position,omitempty"`
	Notes        string      `json:"notes,omitempty"`
	PreferenceID *int64      `json:"preferenceId,omitempty"`
}

type ShiftPatch struct {
	ID        int64        `json:"id"`
	Date      *domain.Date `json:"date,omitempty"`
	StartTime *string      `json:"startTime,omitempty"`
	EndTime   *string      `json:"endTime,omitempty"`
	Position  *string      `json:"position,omitempty"`
	Notes     *string      `json:"notes,omitempty"`
}

// Client 是排班后端的 HTTP 客户端。登录后 cookie 保存在 resty 自带的 cookie jar 中。
// 写操作不做自动重试。
type Client struct {
	httpClient *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{httpClient: client}
}

func (c *Client) send(ctx context.Context, method, path string, body any, query map[string]string, out any) error {
	var result, failure envelope

	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&failure)
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Message: failure.Message}
	}

	if out == nil || len(result.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return fmt.Errorf("không thể đọc phản hồi của %s %s: %w", method, path, err)
	}

	return nil
}

func rangeQuery(startDate, endDate domain.Date, employeeID *int64) map[string]string {
	query := map[string]string{
		"startDate": startDate.String(),
		"endDate":   endDate.String(),
	}
	if employeeID != nil {
		query["employeeId"] = strconv.FormatInt(*employeeID, 10)
	}
	return query
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.send(ctx, http.MethodPost, "/auth/login", body, nil, nil)
}

func (c *Client) GetShiftPreferences(ctx context.Context, startDate, endDate domain.Date, employeeID *int64) ([]*domain.ShiftPreference, error) {
	var preferences []*domain.ShiftPreference
	if err := c.send(ctx, http.MethodGet, "/shift-preferences", nil, rangeQuery(startDate, endDate, employeeID), &preferences); err != nil {
		return nil, err
	}
	return preferences, nil
}

func (c *Client) SubmitShiftPreference(ctx context.Context, input PreferenceInput) (*domain.ShiftPreference, error) {
	var preference domain.ShiftPreference
	if err := c.send(ctx, http.MethodPost, "/shift-preferences", input, nil, &preference); err != nil {
		return nil, err
	}
	return &preference, nil
}

func (c *Client) DeleteShiftPreference(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "/shift-preferences", map[string]int64{"id": id}, nil, nil)
}

func (c *Client) ApproveShiftPreference(ctx context.Context, id int64, segments []Segment) (*ApproveResult, error) {
	var result ApproveResult
	path := fmt.Sprintf("/shift-preferences/%d/approve", id)
	if err := c.send(ctx, http.MethodPost, path, map[string][]Segment{"segments": segments}, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) RejectShiftPreference(ctx context.Context, id int64, notes *string) (*domain.ShiftPreference, error) {
	var preference domain.ShiftPreference
	path := fmt.Sprintf("/shift-preferences/%d/reject", id)
	if err := c.send(ctx, http.MethodPost, path, map[string]*string{"notes": notes}, nil, &preference); err != nil {
		return nil, err
	}
	return &preference, nil
}

func (c *Client) GetShifts(ctx context.Context, startDate, endDate domain.Date, employeeID *int64) ([]*domain.Shift, error) {
	var shifts []*domain.Shift
	if err := c.send(ctx, http.MethodGet, "/shifts", nil, rangeQuery(startDate, endDate, employeeID), &shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

func (c *Client) CreateShift(ctx context.Context, input ShiftInput) (*domain.Shift, error) {
	var shift domain.Shift
	if err := c.send(ctx, http.MethodPost, "/shifts", input, nil, &shift); err != nil {
		return nil, err
	}
	return &shift, nil
}

func (c *Client) UpdateShift(ctx context.Context, patch ShiftPatch) (*domain.Shift, error) {
	var shift domain.Shift
	if err := c.send(ctx, http.MethodPut, "/shifts", patch, nil, &shift); err != nil {
		return nil, err
	}
	return &shift, nil
}

func (c *Client) DeleteShift(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "/shifts", map[string]int64{"id": id}, nil, nil)
}

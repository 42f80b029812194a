package domain

import (
	"errors"
	"fmt"
	"time"
)

type ShiftType string

const (
	ShiftTypeMorning   ShiftType = "morning"
	ShiftTypeAfternoon ShiftType = "afternoon"
	ShiftTypeEvening   ShiftType = "evening"
)

// 班次一旦创建即为已批准，拒绝只发生在登记层面
const ShiftStatusApproved = "approved"

var (
	ErrInvalidShiftRange  = errors.New("giờ kết thúc phải sau giờ bắt đầu")
	ErrPreferenceMismatch = errors.New("ca làm không khớp nhân viên hoặc ngày của đăng ký")
	ErrOverlappingShifts  = errors.New("các ca làm bị chồng giờ")
	ErrEmployeeNotFound   = errors.New("nhân viên không tồn tại")
)

type Shift struct {
	ID           int64     `json:"id"`
	EmployeeID   int64     `json:"employeeId"`
	Date         Date      `json:"date"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	ShiftType    ShiftType `json:"shiftType"`
	Duration     float64   `json:"duration"`
	Position     string    `json:"position"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
	PreferenceID *int64    `json:"preferenceId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Version      int32     `json:"-"`
}

func ShiftTypeOf(startMinutes int) ShiftType {
	switch hour := startMinutes / 60; {
	case hour < 12:
		return ShiftTypeMorning
	case hour < 17:
		return ShiftTypeAfternoon
	default:
		return ShiftTypeEvening
	}
}

// Derive 校验起止时间并重新计算班次类型和时长，时长永远不信任客户端传入的值
func (s *Shift) Derive() error {
	start, end, err := parseRange(s.StartTime, s.EndTime)
	if err != nil {
		return err
	}
	s.StartTime = FormatClock(start)
	s.EndTime = FormatClock(end)
	s.ShiftType = ShiftTypeOf(start)
	s.Duration = float64(end-start) / 60
	s.Status = ShiftStatusApproved
	return nil
}

// Minutes 返回当天的起止分钟数
func (s *Shift) Minutes() (int, int, error) {
	return parseRange(s.StartTime, s.EndTime)
}

func parseRange(startTime, endTime string) (int, int, error) {
	start, err := ParseClock(startTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return 0, 0, err
	}
	if start >= end {
		return 0, 0, fmt.Errorf("%w: %s-%s", ErrInvalidShiftRange, startTime, endTime)
	}
	return start, end, nil
}

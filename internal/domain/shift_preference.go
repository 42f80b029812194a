package domain

import (
	"errors"
	"fmt"
	"time"
)

type PreferenceStatus string

const (
	PreferenceStatusPending  PreferenceStatus = "pending"
	PreferenceStatusApproved PreferenceStatus = "approved"
	PreferenceStatusRejected PreferenceStatus = "rejected"
)

// PreferenceEvent 是能够改变登记状态的动作
type PreferenceEvent string

const (
	PreferenceEventResubmit PreferenceEvent = "resubmit"
	PreferenceEventApprove  PreferenceEvent = "approve"
	PreferenceEventReject   PreferenceEvent = "reject"
)

var ErrInvalidTransition = errors.New("trạng thái đăng ký không cho phép thao tác này")

// 状态转换表：resubmit 无论当前状态如何都回到 pending；
// approve / reject 只能作用于 pending，或者对自身重复执行（例如为已批准的登记再排一个拆分班次）
var preferenceTransitions = map[PreferenceStatus]map[PreferenceEvent]PreferenceStatus{
	PreferenceStatusPending: {
		PreferenceEventResubmit: PreferenceStatusPending,
		PreferenceEventApprove:  PreferenceStatusApproved,
		PreferenceEventReject:   PreferenceStatusRejected,
	},
	PreferenceStatusApproved: {
		PreferenceEventResubmit: PreferenceStatusPending,
		PreferenceEventApprove:  PreferenceStatusApproved,
	},
	PreferenceStatusRejected: {
		PreferenceEventResubmit: PreferenceStatusPending,
		PreferenceEventReject:   PreferenceStatusRejected,
	},
}

func (s PreferenceStatus) Next(event PreferenceEvent) (PreferenceStatus, error) {
	next, ok := preferenceTransitions[s][event]
	if !ok {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, event)
	}
	return next, nil
}

func (s PreferenceStatus) Valid() bool {
	_, ok := preferenceTransitions[s]
	return ok
}

type ShiftPreference struct {
	ID         int64            `json:"id"`
	EmployeeID int64            `json:"employeeId"`
	Date       Date             `json:"date"`
	StartTime  *string          `json:"startTime"`
	EndTime    *string          `json:"endTime"`
	IsOff      bool             `json:"isOff"`
	Status     PreferenceStatus `json:"status"`
	Notes      string           `json:"notes"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	Version    int32            `json:"-"`
}

// Apply 执行一次状态转换
func (p *ShiftPreference) Apply(event PreferenceEvent) error {
	next, err := p.Status.Next(event)
	if err != nil {
		return err
	}
	p.Status = next
	return nil
}

// Normalize 请假时清空时间；非请假时要求开始和结束时间都存在且合法
func (p *ShiftPreference) Normalize() error {
	if p.IsOff {
		p.StartTime = nil
		p.EndTime = nil
		return nil
	}
	if p.StartTime == nil || p.EndTime == nil {
		return ErrPreferenceTimeRequired
	}
	start, end, err := parseRange(*p.StartTime, *p.EndTime)
	if err != nil {
		return err
	}
	s, e := FormatClock(start), FormatClock(end)
	p.StartTime, p.EndTime = &s, &e
	return nil
}

// Duration 返回登记时长（小时），请假时为 0
func (p *ShiftPreference) Duration() float64 {
	if p.IsOff || p.StartTime == nil || p.EndTime == nil {
		return 0
	}
	start, end, err := parseRange(*p.StartTime, *p.EndTime)
	if err != nil {
		return 0
	}
	return float64(end-start) / 60
}

var ErrPreferenceTimeRequired = errors.New("startTime và endTime là bắt buộc khi không xin nghỉ")

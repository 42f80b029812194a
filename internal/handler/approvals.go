package handler

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
	"github.com/tiemnho-dev/shift-roster/backend/internal/guard"
	"github.com/tiemnho-dev/shift-roster/backend/internal/notify"
	"github.com/tiemnho-dev/shift-roster/backend/internal/utils"
)

var errOffDayNeedsSegments = errors.New("đăng ký xin nghỉ không có giờ làm, cần nhập giờ bắt đầu và kết thúc cho ca")

type shiftSegment struct {
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	Position  string `json:"position" validate:"max=100"`
	Notes     string `json:"notes" validate:"max=500"`
}

// handleShiftWriteError 处理创建班次（包括审批）时的通用错误
func (h *Handler) handleShiftWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		h.notFound(w, r, msgPreferenceNotFound)
	case errors.Is(err, domain.ErrInvalidTransition):
		h.conflict(w, r, err.Error())
	case errors.Is(err, domain.ErrOverlappingShifts):
		h.conflict(w, r, err.Error())
	case errors.Is(err, domain.ErrPreferenceMismatch), errors.Is(err, domain.ErrEmployeeNotFound):
		h.badRequest(w, r, err)
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "shifts_employee_id_fkey":
			h.badRequest(w, r, domain.ErrEmployeeNotFound)
		case "shifts_time_check":
			h.badRequest(w, r, domain.ErrInvalidShiftRange)
		default:
			h.internalServerError(w, r, err)
		}
	default:
		h.internalServerError(w, r, err)
	}
}

// ApproveShiftPreference 为登记创建一个或多个班次并标记为 approved。
// 不传 segments 时使用登记本身的时间；请假登记必须显式传入 segments。
func (h *Handler) ApproveShiftPreference(w http.ResponseWriter, r *http.Request) {
	preference := r.Context().Value(ShiftPreferenceCtx).(*domain.ShiftPreference)

	var req struct {
		Segments []shiftSegment `json:"segments" validate:"omitempty,max=4,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if len(req.Segments) == 0 {
		if preference.IsOff || preference.StartTime == nil || preference.EndTime == nil {
			h.badRequest(w, r, errOffDayNeedsSegments)
			return
		}
		req.Segments = []shiftSegment{{StartTime: *preference.StartTime, EndTime: *preference.EndTime}}
	}

	shifts := make([]*domain.Shift, len(req.Segments))
	keys := make([]string, len(req.Segments))
	for i, segment := range req.Segments {
		shift := &domain.Shift{
			EmployeeID: preference.EmployeeID,
			Date:       preference.Date,
			StartTime:  segment.StartTime,
			EndTime:    segment.EndTime,
			Position:   segment.Position,
			Notes:      segment.Notes,
		}
		if err := shift.Derive(); err != nil {
			h.badRequest(w, r, err)
			return
		}
		shifts[i] = shift
		keys[i] = guard.ShiftKey(shift.EmployeeID, shift.Date, shift.StartTime, shift.EndTime)
	}

	if err := utils.ValidateShiftsNoOverlap(shifts); err != nil {
		h.badRequest(w, r, err)
		return
	}

	release, ok := h.acquireGuard(w, r, keys...)
	if !ok {
		return
	}
	defer release()

	approved, err := h.repository.ApproveShiftPreference(preference.ID, shifts)
	if err != nil {
		h.handleShiftWriteError(w, r, err)
		return
	}

	h.notifyPreferenceReviewed(r, approved, shifts)

	h.successResponse(w, r, "Đã duyệt đăng ký ca làm", map[string]any{
		"preference": approved,
		"shifts":     shifts,
	})
}

// RejectShiftPreference 只修改登记状态，不创建班次
func (h *Handler) RejectShiftPreference(w http.ResponseWriter, r *http.Request) {
	preference := r.Context().Value(ShiftPreferenceCtx).(*domain.ShiftPreference)

	var req struct {
		Notes *string `json:"notes" validate:"omitempty,max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rejected, err := h.repository.RejectShiftPreference(preference.ID, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, msgPreferenceNotFound)
		case errors.Is(err, domain.ErrInvalidTransition):
			h.conflict(w, r, err.Error())
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.notifyPreferenceReviewed(r, rejected, nil)

	h.successResponse(w, r, "Đã từ chối đăng ký ca làm", rejected)
}

// notifyPreferenceReviewed 在审核结果提交后发送通知。
// 此时数据已经写入，通知失败只记录日志，不影响响应。
func (h *Handler) notifyPreferenceReviewed(r *http.Request, preference *domain.ShiftPreference, shifts []*domain.Shift) {
	if h.publisher == nil {
		return
	}

	employee, err := h.repository.GetEmployeeByID(preference.EmployeeID)
	if err != nil {
		slog.Error("发送审核通知时无法获取员工信息", "employee_id", preference.EmployeeID, "error", err)
		return
	}
	if employee.Email == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.publisher.Publish(ctx, notify.PreferenceReviewed(employee, preference, shifts)); err != nil {
		slog.Error("审核通知发送失败", "method", r.Method, "path", r.URL.Path, "preference_id", preference.ID, "error", err)
	}
}

package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
	"github.com/tiemnho-dev/shift-roster/backend/internal/guard"
	"github.com/tiemnho-dev/shift-roster/backend/internal/repository"
)

const msgShiftNotFound = "Ca làm không tồn tại hoặc đã bị xoá"

func (h *Handler) GetShifts(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := h.readDateRange(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	employeeID, err := readOptionalInt64Query(r, "employeeId")
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	shifts, err := h.repository.GetShifts(repository.ShiftFilter{
		EmployeeID: employeeID,
		StartDate:  startDate,
		EndDate:    endDate,
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy danh sách ca làm thành công", shifts)
}

// CreateShift 管理员直接排班。带 preferenceId 时在同一事务中把该登记标记为 approved。
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID   int64       `json:"employeeId" validate:"required"`
		Date         domain.Date `json:"date" validate:"required"`
		StartTime    string      `json:"startTime" validate:"required"`
		EndTime      string      `json:"endTime" validate:"required"`
		Position     string      `json:"position" validate:"max=100"`
		Notes        string      `json:"notes" validate:"max=500"`
		PreferenceID *int64      `json:"preferenceId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift := &domain.Shift{
		EmployeeID: req.EmployeeID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Position:   req.Position,
		Notes:      req.Notes,
	}
	if err := shift.Derive(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	release, ok := h.acquireGuard(w, r, guard.ShiftKey(shift.EmployeeID, shift.Date, shift.StartTime, shift.EndTime))
	if !ok {
		return
	}
	defer release()

	if req.PreferenceID == nil {
		if err := h.repository.CreateShift(shift); err != nil {
			h.handleShiftWriteError(w, r, err)
			return
		}
		h.createdResponse(w, r, "Tạo ca làm thành công", shift)
		return
	}

	approved, err := h.repository.ApproveShiftPreference(*req.PreferenceID, []*domain.Shift{shift})
	if err != nil {
		h.handleShiftWriteError(w, r, err)
		return
	}

	h.notifyPreferenceReviewed(r, approved, []*domain.Shift{shift})

	h.createdResponse(w, r, "Tạo ca làm và duyệt đăng ký thành công", shift)
}

// UpdateShift 部分更新，时长总是根据起止时间重新计算
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID        int64        `json:"id" validate:"required"`
		Date      *domain.Date `json:"date"`
		StartTime *string      `json:"startTime"`
		EndTime   *string      `json:"endTime"`
		Position  *string      `json:"position" validate:"omitempty,max=100"`
		Notes     *string      `json:"notes" validate:"omitempty,max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := h.repository.GetShiftByID(req.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, msgShiftNotFound)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if req.Date != nil && !req.Date.IsZero() {
		shift.Date = *req.Date
	}
	if req.StartTime != nil {
		shift.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		shift.EndTime = *req.EndTime
	}
	if req.Position != nil {
		shift.Position = *req.Position
	}
	if req.Notes != nil {
		shift.Notes = *req.Notes
	}

	if err := shift.Derive(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdateShift(shift); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.conflict(w, r, msgRecordModified)
		default:
			h.handleShiftWriteError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Cập nhật ca làm thành công", shift)
}

// DeleteShift 删除班次，不改变关联登记的状态
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID int64 `json:"id" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.DeleteShift(req.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, msgShiftNotFound)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Đã xoá ca làm", nil)
}

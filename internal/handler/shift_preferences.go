package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
	"github.com/tiemnho-dev/shift-roster/backend/internal/guard"
	"github.com/tiemnho-dev/shift-roster/backend/internal/repository"
)

const (
	msgPreferenceNotFound = "Đăng ký ca làm không tồn tại hoặc đã bị xoá"
	msgRecordModified     = "Dữ liệu đã bị người khác thay đổi, vui lòng tải lại"
)

// handlePreferenceWriteError 处理登记写入时的通用错误
func (h *Handler) handlePreferenceWriteError(w http.ResponseWriter, r *http.Request, err error) {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		h.conflict(w, r, msgRecordModified)
	case errors.As(err, &pgErr):
		switch pgErr.ConstraintName {
		case "shift_preferences_employee_id_date_key":
			h.conflict(w, r, "Nhân viên đã có đăng ký cho ngày này")
		case "shift_preferences_employee_id_fkey":
			h.badRequest(w, r, domain.ErrEmployeeNotFound)
		case "shift_preferences_time_check":
			h.badRequest(w, r, domain.ErrInvalidShiftRange)
		default:
			h.internalServerError(w, r, err)
		}
	default:
		h.internalServerError(w, r, err)
	}
}

func (h *Handler) GetShiftPreferences(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Employee)

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

	// 普通员工只能查看自己的登记
	if !myInfo.IsManager() {
		if employeeID != nil && *employeeID != myInfo.ID {
			h.forbidden(w, r)
			return
		}
		employeeID = &myInfo.ID
	}

	preferences, err := h.repository.GetShiftPreferences(repository.ShiftPreferenceFilter{
		EmployeeID: employeeID,
		StartDate:  startDate,
		EndDate:    endDate,
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy danh sách đăng ký thành công", preferences)
}

// SubmitShiftPreference 按 (employeeId, date) upsert，重新提交一律回到 pending
func (h *Handler) SubmitShiftPreference(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Employee)

	var req struct {
		EmployeeID *int64      `json:"employeeId"`
		Date       domain.Date `json:"date" validate:"required"`
		StartTime  *string     `json:"startTime"`
		EndTime    *string     `json:"endTime"`
		IsOff      bool        `json:"isOff"`
		Notes      string      `json:"notes" validate:"max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	employeeID := myInfo.ID
	if req.EmployeeID != nil {
		if *req.EmployeeID != myInfo.ID && !myInfo.IsManager() {
			h.forbidden(w, r)
			return
		}
		employeeID = *req.EmployeeID
	}

	preference := &domain.ShiftPreference{
		EmployeeID: employeeID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		IsOff:      req.IsOff,
		Status:     domain.PreferenceStatusPending,
		Notes:      req.Notes,
	}
	if err := preference.Normalize(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	release, ok := h.acquireGuard(w, r, guard.PreferenceKey(preference.EmployeeID, preference.Date))
	if !ok {
		return
	}
	defer release()

	inserted, err := h.repository.UpsertShiftPreference(preference)
	if err != nil {
		h.handlePreferenceWriteError(w, r, err)
		return
	}

	if inserted {
		h.createdResponse(w, r, "Đăng ký ca làm thành công", preference)
		return
	}
	h.successResponse(w, r, "Cập nhật đăng ký ca làm thành công", preference)
}

// UpdateShiftPreference 部分更新。任何字段变化都视为重新提交（回到 pending）；
// 管理员可以通过 status=rejected 直接拒绝。
func (h *Handler) UpdateShiftPreference(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Employee)

	var req struct {
		ID        int64        `json:"id" validate:"required"`
		Date      *domain.Date `json:"date"`
		StartTime *string      `json:"startTime"`
		EndTime   *string      `json:"endTime"`
		IsOff     *bool        `json:"isOff"`
		Notes     *string      `json:"notes" validate:"omitempty,max=500"`
		Status    *string      `json:"status" validate:"omitempty,oneof=pending rejected"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	preference, err := h.repository.GetShiftPreferenceByID(req.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, msgPreferenceNotFound)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if preference.EmployeeID != myInfo.ID && !myInfo.IsManager() {
		h.forbidden(w, r)
		return
	}

	event := domain.PreferenceEventResubmit
	if req.Status != nil && domain.PreferenceStatus(*req.Status) == domain.PreferenceStatusRejected {
		if !myInfo.IsManager() {
			h.forbidden(w, r)
			return
		}
		event = domain.PreferenceEventReject
	}

	// 改日期时原日期和新日期都要锁住
	keys := []string{guard.PreferenceKey(preference.EmployeeID, preference.Date)}

	if req.Date != nil && !req.Date.IsZero() {
		preference.Date = *req.Date
	}
	if req.IsOff != nil {
		preference.IsOff = *req.IsOff
	}
	if req.StartTime != nil {
		preference.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		preference.EndTime = req.EndTime
	}
	if req.Notes != nil {
		preference.Notes = *req.Notes
	}

	if err := preference.Normalize(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := preference.Apply(event); err != nil {
		h.conflict(w, r, err.Error())
		return
	}

	if newKey := guard.PreferenceKey(preference.EmployeeID, preference.Date); newKey != keys[0] {
		keys = append(keys, newKey)
	}

	release, ok := h.acquireGuard(w, r, keys...)
	if !ok {
		return
	}
	defer release()

	if err := h.repository.UpdateShiftPreference(preference); err != nil {
		h.handlePreferenceWriteError(w, r, err)
		return
	}

	if event == domain.PreferenceEventReject {
		h.notifyPreferenceReviewed(r, preference, nil)
	}

	h.successResponse(w, r, "Cập nhật đăng ký ca làm thành công", preference)
}

// DeleteShiftPreference 员工撤回登记，已创建的班次不受影响
func (h *Handler) DeleteShiftPreference(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.Employee)

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

	preference, err := h.repository.GetShiftPreferenceByID(req.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, msgPreferenceNotFound)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if preference.EmployeeID != myInfo.ID && !myInfo.IsManager() {
		h.forbidden(w, r)
		return
	}

	if err := h.repository.DeleteShiftPreference(preference.ID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, msgPreferenceNotFound)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Đã xoá đăng ký ca làm", nil)
}

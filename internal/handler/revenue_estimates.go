package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

func (h *Handler) GetRevenueEstimates(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := h.readDateRange(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	estimates, err := h.repository.GetRevenueEstimates(startDate, endDate)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy doanh thu dự kiến thành công", estimates)
}

func (h *Handler) UpsertRevenueEstimate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date     domain.Date `json:"date" validate:"required"`
		Amount   *int64      `json:"amount" validate:"required,min=0"`
		IsActual bool        `json:"isActual"`
		Notes    string      `json:"notes" validate:"max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	estimate := &domain.RevenueEstimate{
		Date:     req.Date,
		Amount:   *req.Amount,
		IsActual: req.IsActual,
		Notes:    req.Notes,
	}

	if err := h.repository.UpsertRevenueEstimate(estimate); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lưu doanh thu thành công", estimate)
}

// BulkUpsertRevenueEstimates 把同一个金额应用到多个日期，要么全部成功要么全部失败
func (h *Handler) BulkUpsertRevenueEstimates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dates    []domain.Date `json:"dates" validate:"required,min=1,max=366,dive,required"`
		Amount   *int64        `json:"amount" validate:"required,min=0"`
		IsActual bool          `json:"isActual"`
		Notes    string        `json:"notes" validate:"max=500"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 重复的日期只保留一次
	seen := make(map[domain.Date]bool, len(req.Dates))
	estimates := make([]*domain.RevenueEstimate, 0, len(req.Dates))
	for _, date := range req.Dates {
		if seen[date] {
			continue
		}
		seen[date] = true
		estimates = append(estimates, &domain.RevenueEstimate{
			Date:     date,
			Amount:   *req.Amount,
			IsActual: req.IsActual,
			Notes:    req.Notes,
		})
	}

	if err := h.repository.UpsertRevenueEstimates(estimates); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lưu doanh thu thành công", estimates)
}

func (h *Handler) DeleteRevenueEstimate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date domain.Date `json:"date" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.DeleteRevenueEstimate(req.Date); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.notFound(w, r, "Không có doanh thu cho ngày này")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Đã xoá doanh thu", nil)
}

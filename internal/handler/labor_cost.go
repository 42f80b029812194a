package handler

import (
	"net/http"

	"github.com/tiemnho-dev/shift-roster/backend/internal/repository"
)

// GetLaborCost 每次请求都根据当前的班次和营收重新计算，结果不落库
func (h *Handler) GetLaborCost(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := h.readDateRange(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	shifts, err := h.repository.GetShifts(repository.ShiftFilter{StartDate: startDate, EndDate: endDate})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	tiers, err := h.repository.GetEmployeeTiers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	estimates, err := h.repository.GetRevenueEstimates(startDate, endDate)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Tính chi phí nhân công thành công", h.laborCost.Range(startDate, endDate, shifts, tiers, estimates))
}

package handler

import (
	"net/http"
)

// GetHolidays 仅用于日历标注
func (h *Handler) GetHolidays(w http.ResponseWriter, r *http.Request) {
	startDate, endDate, err := h.readDateRange(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	holidays, err := h.holidays.GetHolidaysInRange(r.Context(), startDate, endDate)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy danh sách ngày lễ thành công", holidays)
}

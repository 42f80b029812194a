package handler

import (
	"net/http"
)

// GetAllEmployees 只读的员工目录，排班界面需要显示姓名和 tier
func (h *Handler) GetAllEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.repository.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Lấy danh sách nhân viên thành công", employees)
}

package handler

import "net/http"

func (h *Handler) GetAllEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.GetAllEmployees()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有员工成功", employees)
}

func (h *Handler) GetAllJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.store.GetAllJobs()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有工地成功", jobs)
}

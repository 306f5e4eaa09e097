package handler

import (
	"net/http"

	"github.com/mentorconnect/goaltracker/internal/service"
)

type AdminHandler struct {
	assignmentService *service.AssignmentService
}

func NewAdminHandler(assignmentService *service.AssignmentService) *AdminHandler {
	return &AdminHandler{assignmentService: assignmentService}
}

type assignmentRequest struct {
	MentorID string `json:"mentorId"`
	MenteeID string `json:"menteeId"`
}

func (h *AdminHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	a, err := h.assignmentService.Assign(r.Context(), req.MentorID, req.MenteeID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

func (h *AdminHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.assignmentService.Unassign(r.Context(), req.MentorID, req.MenteeID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Mentees(w http.ResponseWriter, r *http.Request) {
	ids, err := h.assignmentService.MenteeIDs(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"menteeIds": ids})
}

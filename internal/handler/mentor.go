package handler

import (
	"net/http"

	"github.com/mentorconnect/goaltracker/internal/ctxkeys"
	"github.com/mentorconnect/goaltracker/internal/service"
)

type MentorHandler struct {
	goalService *service.GoalService
}

func NewMentorHandler(goalService *service.GoalService) *MentorHandler {
	return &MentorHandler{goalService: goalService}
}

func (h *MentorHandler) Goals(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.ListGoalsForMentorView(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

// GoalsNeedingHelp lists flagged goals, oldest request first.
func (h *MentorHandler) GoalsNeedingHelp(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.ListGoalsNeedingHelp(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

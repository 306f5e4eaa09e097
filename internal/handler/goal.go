package handler

import (
	"net/http"

	"github.com/mentorconnect/goaltracker/internal/ctxkeys"
	"github.com/mentorconnect/goaltracker/internal/service"
)

const maxImportBody = 64 << 10

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{goalService: goalService}
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var draft service.GoalDraft
	err := decodeJSON(w, r, &draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.goalService.CreateGoal(r.Context(), user.ID, draft)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

// Import creates a goal from a markdown body.
func (h *GoalHandler) Import(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	source, err := readBody(w, r, maxImportBody)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.goalService.ImportGoal(r.Context(), user.ID, source)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.ListGoalsForOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

func (h *GoalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	stats, err := h.goalService.GoalStats(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goal, err := h.goalService.Goal(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var patch service.GoalPatch
	err := decodeJSON(w, r, &patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	goal, err := h.goalService.UpdateGoal(r.Context(), user.ID, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

type visibilityRequest struct {
	VisibleToMentor *bool  `json:"visibleToMentor"`
	Revision        *int64 `json:"revision"`
}

func (h *GoalHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req visibilityRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.VisibleToMentor == nil {
		writeMessage(w, http.StatusBadRequest, "visibleToMentor is required")
		return
	}

	goal, err := h.goalService.UpdateGoal(r.Context(), user.ID, r.PathValue("id"), service.GoalPatch{
		VisibleToMentor: req.VisibleToMentor,
		Revision:        req.Revision,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

type helpRequest struct {
	NeedsHelp *bool `json:"needsHelp"`
}

func (h *GoalHandler) SetHelp(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req helpRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.NeedsHelp == nil {
		writeMessage(w, http.StatusBadRequest, "needsHelp is required")
		return
	}

	goal, err := h.goalService.SetHelpFlag(r.Context(), user.ID, r.PathValue("id"), *req.NeedsHelp)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.goalService.DeleteGoal(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

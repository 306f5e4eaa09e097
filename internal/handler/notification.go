package handler

import (
	"net/http"

	"github.com/mentorconnect/goaltracker/internal/ctxkeys"
	"github.com/mentorconnect/goaltracker/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the caller's notifications, newest first. ?unread=true
// limits it to unread ones.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := h.notificationService.Notifications(r.Context(), user.ID, unreadOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.notificationService.MarkRead(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

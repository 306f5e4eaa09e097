package routes

import (
	"net/http"

	"github.com/mentorconnect/goaltracker/internal/app"
	"github.com/mentorconnect/goaltracker/internal/handler"
	"github.com/mentorconnect/goaltracker/internal/middleware"
	"github.com/mentorconnect/goaltracker/internal/model"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	goal := handler.NewGoalHandler(app.GoalService)
	attachment := handler.NewAttachmentHandler(app.FileService)
	mentor := handler.NewMentorHandler(app.GoalService)
	notification := handler.NewNotificationHandler(app.NotificationService)
	admin := handler.NewAdminHandler(app.AssignmentService)

	mux := http.NewServeMux()

	mentee := middleware.RequireRole(model.RoleMentee)
	mentorOnly := middleware.RequireRole(model.RoleMentor)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	write := middleware.RateLimitWrites(app.RateLimiter)

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)

	// ============================================================================
	// MENTEE ROUTES (/api/goals/*)
	// ============================================================================

	// Goals
	mux.HandleFunc("POST /api/goals", mentee(write(goal.Create)))
	mux.HandleFunc("POST /api/goals/import", mentee(write(goal.Import)))
	mux.HandleFunc("GET /api/goals", mentee(goal.List))
	mux.HandleFunc("GET /api/goals/stats", mentee(goal.Stats))
	mux.HandleFunc("GET /api/goals/{id}", mentee(goal.Get))
	mux.HandleFunc("PATCH /api/goals/{id}", mentee(write(goal.Update)))
	mux.HandleFunc("PUT /api/goals/{id}/visibility", mentee(write(goal.SetVisibility)))
	mux.HandleFunc("PUT /api/goals/{id}/help", mentee(write(goal.SetHelp)))
	mux.HandleFunc("DELETE /api/goals/{id}", mentee(write(goal.Delete)))

	// Attachments
	mux.HandleFunc("POST /api/goals/{id}/attachments", mentee(write(attachment.Upload)))
	mux.HandleFunc("GET /api/goals/{id}/attachments", mentee(attachment.List))
	mux.HandleFunc("DELETE /api/goals/{id}/attachments/{fileID}", mentee(write(attachment.Delete)))

	// ============================================================================
	// MENTOR ROUTES (/api/mentor/*)
	// ============================================================================

	mux.HandleFunc("GET /api/mentor/goals", mentorOnly(mentor.Goals))
	mux.HandleFunc("GET /api/mentor/goals/help", mentorOnly(mentor.GoalsNeedingHelp))

	// ============================================================================
	// SHARED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/notifications", middleware.RequireAuth(notification.List))
	mux.HandleFunc("POST /api/notifications/{id}/read", middleware.RequireAuth(write(notification.MarkRead)))

	// ============================================================================
	// ADMIN ROUTES (/api/admin/*)
	// ============================================================================

	mux.HandleFunc("POST /api/admin/assignments", adminOnly(write(admin.Assign)))
	mux.HandleFunc("DELETE /api/admin/assignments", adminOnly(write(admin.Unassign)))
	mux.HandleFunc("GET /api/admin/mentors/{id}/mentees", adminOnly(admin.Mentees))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService),
	)

	return handler
}

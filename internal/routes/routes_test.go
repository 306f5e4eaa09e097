package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mentorconnect/goaltracker/internal/app"
	"github.com/mentorconnect/goaltracker/internal/config"
	"github.com/mentorconnect/goaltracker/internal/db/dbtest"
	"github.com/mentorconnect/goaltracker/internal/middleware"
	"github.com/mentorconnect/goaltracker/internal/model"
	"github.com/mentorconnect/goaltracker/internal/repository"
	"github.com/mentorconnect/goaltracker/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t       *testing.T
	app     *app.App
	handler http.Handler
}

func newTestServer(t *testing.T, writeLimit int) *testServer {
	t.Helper()

	database := dbtest.New(t)
	cfg := &config.Config{AppName: "MentorConnect", AppURL: "http://localhost:8090", JWTSecret: "test-secret", JWTExpiry: time.Hour}

	userRepo := repository.NewUserRepository(database)
	assignmentRepo := repository.NewAssignmentRepository(database)
	goalRepo := repository.NewGoalRepository(database)
	fileRepo := repository.NewFileRepository(database)

	emailService := service.NewEmailService("", "noreply@example.com", cfg.AppURL, cfg.AppName, true)
	assignments := service.NewAssignmentService(assignmentRepo, userRepo, nil)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(database), userRepo, assignmentRepo, emailService)
	files := service.NewFileService(fileRepo, goalRepo, nil)

	a := &app.App{
		Cfg:                 cfg,
		DB:                  database,
		AuthService:         service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry),
		UserService:         service.NewUserService(userRepo),
		AssignmentService:   assignments,
		GoalService:         service.NewGoalService(goalRepo, assignments, notifications, files),
		FileService:         files,
		NotificationService: notifications,
		EmailService:        emailService,
		RateLimiter:         middleware.NewRateLimiter(writeLimit, time.Minute),
	}

	return &testServer{t: t, app: a, handler: SetupRoutes(a)}
}

func (s *testServer) user(name string, role model.Role) (*model.User, string) {
	s.t.Helper()

	u, err := s.app.UserService.CreateUser(context.Background(), name+"@example.com", name, role)
	require.NoError(s.t, err)

	token, err := s.app.AuthService.GenerateJWT(u)
	require.NoError(s.t, err)
	return u, token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, 100)

	rec := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuthAndRoles(t *testing.T) {
	s := newTestServer(t, 100)
	_, mentorToken := s.user("maria", model.RoleMentor)

	rec := s.do(http.MethodGet, "/api/goals", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/goals", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/goals", mentorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/admin/assignments", mentorToken, map[string]string{})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGoalLifecycle(t *testing.T) {
	s := newTestServer(t, 100)
	_, menteeToken := s.user("lea", model.RoleMentee)

	rec := s.do(http.MethodPost, "/api/goals", menteeToken, map[string]any{
		"title":    "Learn Go",
		"category": "SKILL_DEVELOPMENT",
		"priority": "HIGH",
		"milestones": []map[string]any{
			{"title": "Tour of Go", "completed": true},
			{"title": "Build a service"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Goal](t, rec)
	assert.Equal(t, 50, created.Progress)
	assert.Equal(t, model.GoalStatusInProgress, created.Status)
	assert.Equal(t, int64(1), created.Revision)

	rec = s.do(http.MethodGet, "/api/goals/"+created.ID, menteeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPatch, "/api/goals/"+created.ID, menteeToken, map[string]any{
		"milestones": []map[string]any{
			{"id": created.Milestones[0].ID, "title": "Tour of Go", "completed": true},
			{"id": created.Milestones[1].ID, "title": "Build a service", "completed": true},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.Goal](t, rec)
	assert.Equal(t, 100, updated.Progress)
	assert.Equal(t, model.GoalStatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)

	// Stale revision.
	rec = s.do(http.MethodPatch, "/api/goals/"+created.ID, menteeToken, map[string]any{
		"title":    "Learn Go properly",
		"revision": created.Revision,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/goals/stats", menteeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[service.GoalStats](t, rec)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByStatus[model.GoalStatusCompleted])

	rec = s.do(http.MethodDelete, "/api/goals/"+created.ID, menteeToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/goals/"+created.ID, menteeToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"not found"}`, rec.Body.String())
}

func TestGoalValidationErrors(t *testing.T) {
	s := newTestServer(t, 100)
	_, menteeToken := s.user("lea", model.RoleMentee)

	tests := []struct {
		name string
		body any
	}{
		{"empty title", map[string]any{"title": "  ", "category": "NETWORKING", "priority": "LOW"}},
		{"bad category", map[string]any{"title": "Go", "category": "SPORTS", "priority": "LOW"}},
		{"progress out of range", map[string]any{"title": "Go", "category": "NETWORKING", "priority": "LOW", "progress": 101}},
		{"unknown field", map[string]any{"title": "Go", "category": "NETWORKING", "priority": "LOW", "owner": "x"}},
		{"malformed json", "{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/goals", menteeToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestOtherMenteesGoalIsNotFound(t *testing.T) {
	s := newTestServer(t, 100)
	_, leaToken := s.user("lea", model.RoleMentee)
	_, tomToken := s.user("tom", model.RoleMentee)

	rec := s.do(http.MethodPost, "/api/goals", leaToken, map[string]any{"title": "Private", "category": "NETWORKING", "priority": "LOW"})
	require.Equal(t, http.StatusCreated, rec.Code)
	goal := decode[model.Goal](t, rec)

	rec = s.do(http.MethodGet, "/api/goals/"+goal.ID, tomToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/goals/"+goal.ID, tomToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMentorHelpFlow(t *testing.T) {
	s := newTestServer(t, 100)
	_, adminToken := s.user("root", model.RoleAdmin)
	mentor, mentorToken := s.user("maria", model.RoleMentor)
	mentee, menteeToken := s.user("lea", model.RoleMentee)

	rec := s.do(http.MethodPost, "/api/admin/assignments", adminToken, map[string]string{"mentorId": mentor.ID, "menteeId": mentee.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/admin/assignments", adminToken, map[string]string{"mentorId": mentor.ID, "menteeId": mentee.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/mentors/"+mentor.ID+"/mentees", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"menteeIds":["`+mentee.ID+`"]}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/goals", menteeToken, map[string]any{"title": "Visible", "category": "NETWORKING", "priority": "LOW"})
	require.Equal(t, http.StatusCreated, rec.Code)
	visible := decode[model.Goal](t, rec)

	rec = s.do(http.MethodPost, "/api/goals", menteeToken, map[string]any{"title": "Hidden", "category": "NETWORKING", "priority": "LOW"})
	require.Equal(t, http.StatusCreated, rec.Code)
	hidden := decode[model.Goal](t, rec)

	rec = s.do(http.MethodPut, "/api/goals/"+hidden.ID+"/visibility", menteeToken, map[string]any{"visibleToMentor": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPut, "/api/goals/"+visible.ID+"/help", menteeToken, map[string]any{"needsHelp": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	flagged := decode[model.Goal](t, rec)
	assert.True(t, flagged.NeedsHelp)
	assert.NotNil(t, flagged.HelpRequestedAt)

	rec = s.do(http.MethodPut, "/api/goals/"+visible.ID+"/help", menteeToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/mentor/goals", mentorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	goals := decode[[]model.Goal](t, rec)
	require.Len(t, goals, 1)
	assert.Equal(t, visible.ID, goals[0].ID)

	rec = s.do(http.MethodGet, "/api/mentor/goals/help", mentorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	helpGoals := decode[[]model.Goal](t, rec)
	require.Len(t, helpGoals, 1)
	assert.Equal(t, visible.ID, helpGoals[0].ID)

	rec = s.do(http.MethodGet, "/api/notifications?unread=true", mentorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	notifications := decode[[]model.Notification](t, rec)
	require.Len(t, notifications, 1)

	rec = s.do(http.MethodPost, "/api/notifications/"+notifications[0].ID+"/read", mentorToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodPost, "/api/notifications/"+notifications[0].ID+"/read", menteeToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/notifications?unread=true", mentorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Notification](t, rec))

	rec = s.do(http.MethodDelete, "/api/admin/assignments", adminToken, map[string]string{"mentorId": mentor.ID, "menteeId": mentee.ID})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/api/mentor/goals", mentorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Goal](t, rec))
}

func TestImportMarkdown(t *testing.T) {
	s := newTestServer(t, 100)
	_, menteeToken := s.user("lea", model.RoleMentee)

	doc := "---\ncategory: certification\npriority: high\ndue: 2030-01-15\n---\n# Pass the CKA\n\nKubernetes admin exam.\n\n- [x] Read the curriculum\n- [ ] Practice labs\n"

	rec := s.do(http.MethodPost, "/api/goals/import", menteeToken, doc)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	goal := decode[model.Goal](t, rec)
	assert.Equal(t, "Pass the CKA", goal.Title)
	assert.Equal(t, model.GoalCategoryCertification, goal.Category)
	assert.Len(t, goal.Milestones, 2)
	assert.Equal(t, 50, goal.Progress)

	rec = s.do(http.MethodPost, "/api/goals/import", menteeToken, "just a paragraph\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttachmentsDisabled(t *testing.T) {
	s := newTestServer(t, 100)
	_, menteeToken := s.user("lea", model.RoleMentee)

	rec := s.do(http.MethodPost, "/api/goals", menteeToken, map[string]any{"title": "Go", "category": "NETWORKING", "priority": "LOW"})
	require.Equal(t, http.StatusCreated, rec.Code)
	goal := decode[model.Goal](t, rec)

	rec = s.do(http.MethodPost, "/api/goals/"+goal.ID+"/attachments", menteeToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(http.MethodGet, "/api/goals/"+goal.ID+"/attachments", menteeToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestWritesAreRateLimited(t *testing.T) {
	s := newTestServer(t, 2)
	_, menteeToken := s.user("lea", model.RoleMentee)

	body := map[string]any{"title": "Go", "category": "NETWORKING", "priority": "LOW"}
	for range 2 {
		rec := s.do(http.MethodPost, "/api/goals", menteeToken, body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := s.do(http.MethodPost, "/api/goals", menteeToken, body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Reads are not limited.
	rec = s.do(http.MethodGet, "/api/goals", menteeToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

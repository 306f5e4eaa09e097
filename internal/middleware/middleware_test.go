package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mentorconnect/goaltracker/internal/ctxkeys"
	"github.com/mentorconnect/goaltracker/internal/model"
	"github.com/mentorconnect/goaltracker/internal/service"
)

type fakeAuth map[string]*model.User

func (f fakeAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	if token == "broken" {
		return nil, errors.New("database down")
	}
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, service.ErrInvalidToken
}

var (
	mentor = &model.User{ID: "m1", Role: model.RoleMentor}
	mentee = &model.User{ID: "e1", Role: model.RoleMentee}
)

func whoAmI(w http.ResponseWriter, r *http.Request) {
	if u := ctxkeys.User(r.Context()); u != nil {
		_, _ = w.Write([]byte(u.ID))
		return
	}
	_, _ = w.Write([]byte("anonymous"))
}

func TestAuthMiddleware(t *testing.T) {
	handler := AuthMiddleware(fakeAuth{"tok-m": mentor})(http.HandlerFunc(whoAmI))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		expect string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok-m") }, "m1"},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer tok-m") }, "m1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "auth_token", Value: "tok-m"}) }, "m1"},
		{"invalid token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, "anonymous"},
		{"store failure", func(r *http.Request) { r.Header.Set("Authorization", "Bearer broken") }, "anonymous"},
		{"no token", func(r *http.Request) {}, "anonymous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if got := rec.Body.String(); got != tt.expect {
				t.Errorf("body = %q, want %q", got, tt.expect)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(model.RoleMentor)(whoAmI)

	tests := []struct {
		name   string
		user   *model.User
		status int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"wrong role", mentee, http.StatusForbidden},
		{"right role", mentor, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				req = req.WithContext(ctxkeys.WithUser(req.Context(), tt.user))
			}
			rec := httptest.NewRecorder()

			handler(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK && rec.Header().Get("Content-Type") != "application/json" {
				t.Errorf("error response is not JSON")
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	rl := newRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Error("third request inside the window should be limited")
	}
	if !rl.Allow("b") {
		t.Error("keys are limited independently")
	}

	now = now.Add(61 * time.Second)
	if !rl.Allow("a") {
		t.Error("request after the window should pass")
	}

	now = now.Add(10 * time.Minute)
	rl.cleanup()
	if len(rl.requests) != 0 {
		t.Errorf("cleanup left %d keys", len(rl.requests))
	}
}

func TestRateLimitWrites(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	handler := RateLimitWrites(rl)(whoAmI)

	do := func(method string, user *model.User) int {
		req := httptest.NewRequest(method, "/api/goals", nil)
		if user != nil {
			req = req.WithContext(ctxkeys.WithUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		handler(rec, req)
		return rec.Code
	}

	if got := do(http.MethodPost, mentee); got != http.StatusOK {
		t.Fatalf("first write = %d", got)
	}
	if got := do(http.MethodPost, mentee); got != http.StatusTooManyRequests {
		t.Errorf("second write = %d, want 429", got)
	}
	if got := do(http.MethodGet, mentee); got != http.StatusOK {
		t.Errorf("read = %d, want 200", got)
	}
	if got := do(http.MethodPatch, mentor); got != http.StatusOK {
		t.Errorf("other principal = %d, want 200", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.RequestID(r.Context())
	}), RequestID, RequestLogging)

	req := httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("request id = %q, header = %q", seen, rec.Header().Get("X-Request-ID"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/goals", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "abc-123" {
		t.Errorf("request id = %q, want abc-123", seen)
	}
}

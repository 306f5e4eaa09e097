package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mentorconnect/goaltracker/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatus(t *testing.T) {
	tests := []struct {
		err      error
		status   int
		contains string
	}{
		{fmt.Errorf("%w: title is required", service.ErrValidation), http.StatusBadRequest, "title is required"},
		{fmt.Errorf("%w: goal not found", service.ErrNotFound), http.StatusNotFound, "not found"},
		{fmt.Errorf("%w: stale revision", service.ErrConflict), http.StatusConflict, "stale revision"},
		{fmt.Errorf("%w: connection refused", service.ErrInfrastructure), http.StatusServiceUnavailable, "temporarily unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestWriteErrorHidesInfrastructureDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), fmt.Errorf("%w: dial tcp 10.0.0.5:5432", service.ErrInfrastructure))

	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title string `json:"title"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"title":"Go"}`, false},
		{"unknown field", `{"title":"Go","extra":1}`, true},
		{"trailing object", `{"title":"Go"}{"title":"Rust"}`, true},
		{"malformed", `{"title":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload

			err := decodeJSON(httptest.NewRecorder(), req, &p)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, service.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Go", p.Title)
		})
	}
}

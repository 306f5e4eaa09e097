package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mentorconnect/goaltracker/internal/ctxkeys"
	"github.com/mentorconnect/goaltracker/internal/service"
)

const maxJSONBody = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps service error kinds to HTTP status codes. Unclassified
// and infrastructure errors are logged; their details never reach the
// client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInfrastructure):
		slog.Error("request failed", "error", err, "path", r.URL.Path, "request_id", ctxkeys.RequestID(r.Context()))
		writeMessage(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		slog.Error("request failed", "error", err, "path", r.URL.Path, "request_id", ctxkeys.RequestID(r.Context()))
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON reads a single JSON object, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	err := dec.Decode(v)
	if err != nil {
		return fmt.Errorf("%w: invalid request body: %w", service.ErrValidation, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: request body must contain a single JSON object", service.ErrValidation)
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrValidation, err)
	}
	return data, nil
}

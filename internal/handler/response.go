// Package handler is the HTTP layer: it parses requests, calls services,
// and writes JSON responses. Input validation here is the "parsing
// boundary" — by the time a value reaches a service it is well-typed and
// range-checked, and the service only enforces business invariants.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rmaia/bolao/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API
// endpoints, so clients always know what shape to parse.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable kind, e.g. "not_found"
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code. Headers
// and status must be set before the first body write.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone — all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it.
//
// This is the one place business outcomes become status codes:
//
//	ErrValidation      → 400  (malformed/out-of-range input)
//	ErrClosed          → 400  (guess after kickoff, as in the original API)
//	ErrUnauthenticated → 401
//	ErrForbidden       → 403  (guessing in a pool you never joined)
//	ErrNotFound        → 404  (unknown pool code / pool id / game)
//	ErrConflict        → 409  (already a member, already guessed)
//
// The service layer stays ignorant of all of this — a different
// transport would map the same errors its own way.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError

	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrClosed):
			status = http.StatusBadRequest
			errorType = "submission_closed"
		case errors.Is(err, apperror.ErrUnauthenticated):
			status = http.StatusUnauthorized
			errorType = "unauthenticated"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error — persistence connectivity and friends. Log the
	// detail, return a generic 500 without leaking internals.
	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "something went wrong",
	})
}

package handler

// RESPONSE HELPERS:
// Every handler answers through these helpers so the API has one JSON shape
// for success and one for errors:
//
//	{"error": "not_found", "message": "tool not found with id abc123"}

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/workshop/internal/apperror"
)

// maxBodyBytes caps JSON request bodies. Backups get their own larger limit.
const maxBodyBytes = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"`         // Human-readable description
	Field   string `json:"field,omitempty"` // Input field at fault, when known
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must be written before the body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeText sends a plain-text body, used for prompts and cards.
func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, text); err != nil {
		slog.Error("failed to write text response", slog.String("error", err.Error()))
	}
}

// errorKinds maps domain sentinels to HTTP. Order matters only for errors
// that wrap several sentinels; the first match wins.
var errorKinds = []struct {
	target error
	status int
	kind   string
}{
	{apperror.ErrInvalidBackup, http.StatusBadRequest, "invalid_backup"},
	{apperror.ErrInvalidURL, http.StatusBadRequest, "invalid_url"},
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrIndexOutOfRange, http.StatusUnprocessableEntity, "index_out_of_range"},
}

// writeError maps a domain error to the appropriate HTTP status code and
// sends it. The service layer knows nothing about HTTP; this is the only
// place the translation happens.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, k := range errorKinds {
			if errors.Is(err, k.target) {
				writeJSON(w, k.status, ErrorResponse{
					Error:   k.kind,
					Message: appErr.Message,
					Field:   appErr.Field,
				})
				return
			}
		}
	}

	// Never expose internal error details (SQL, file paths) to the client.
	slog.Error("internal error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// decodeJSON reads a JSON body into dst, rejecting bodies over the limit.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body: "+err.Error())
	}
	return nil
}

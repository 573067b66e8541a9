package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ugurtm/ugur-backend/internal/domain"
)

// ErrorDetail is the body of every error response. Field is set for
// validation failures tied to one input.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// ErrorResponse wraps ErrorDetail as {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// writeJSON encodes body with the given status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

func writeErrorBody(w http.ResponseWriter, status int, d ErrorDetail) {
	writeJSON(w, status, ErrorResponse{Error: d})
}

// badRequest reports input rejected before reaching the service layer
// (undecodable body, non-numeric id, malformed query parameter).
func badRequest(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusBadRequest, ErrorDetail{Code: "bad_request", Message: message})
}

// fail maps a service error onto the response. what names the resource
// for not-found messages, e.g. "ugur" yields "ugur not found".
func fail(w http.ResponseWriter, r *http.Request, what string, err error) {
	var fe *domain.FieldError
	switch {
	case errors.As(err, &fe):
		writeErrorBody(w, http.StatusUnprocessableEntity, ErrorDetail{Code: "validation_error", Message: fe.Message, Field: fe.Field})
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, http.StatusUnprocessableEntity, ErrorDetail{Code: "validation_error", Message: unwrapMessage(err, domain.ErrValidation)})
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, ErrorDetail{Code: "not_found", Message: what + " not found"})
	case errors.Is(err, domain.ErrConflict):
		writeErrorBody(w, http.StatusConflict, ErrorDetail{Code: "conflict", Message: unwrapMessage(err, domain.ErrConflict)})
	case errors.Is(err, domain.ErrForbidden):
		writeErrorBody(w, http.StatusForbidden, ErrorDetail{Code: "forbidden", Message: unwrapMessage(err, domain.ErrForbidden)})
	case errors.Is(err, domain.ErrUnauthorized):
		writeErrorBody(w, http.StatusUnauthorized, ErrorDetail{Code: "unauthorized", Message: unwrapMessage(err, domain.ErrUnauthorized)})
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeErrorBody(w, http.StatusInternalServerError, ErrorDetail{Code: "internal_error", Message: "internal server error"})
	}
}

// unwrapMessage extracts the human-readable part that follows the sentinel
// in a wrapped error chain.
// e.g. "service.BookingService.ChangeStatus: conflict: booking cannot move from cancelled to confirmed"
// → "booking cannot move from cancelled to confirmed"
func unwrapMessage(err error, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 && i+len(marker) < len(msg) {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}

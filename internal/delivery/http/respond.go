package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/egannguyen/sales-orders/internal/entity"
)

var errAuthRequired = fmt.Errorf("%w: missing token", entity.ErrAuthenticationFailed)

// deletedResponse confirms a delete.
type deletedResponse struct {
	Deleted string `json:"deleted"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "err", err)
	}
}

// writeError maps domain errors to status codes. Unknown errors are logged
// and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, entity.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, entity.ErrDuplicateEmail):
		status, code = http.StatusConflict, "DUPLICATE_EMAIL"
	case errors.Is(err, entity.ErrAuthenticationFailed):
		status, code = http.StatusUnauthorized, "AUTHENTICATION_FAILED"
	case errors.Is(err, entity.ErrNotAuthorized):
		status, code = http.StatusForbidden, "NOT_AUTHORIZED"
	case errors.Is(err, entity.ErrInsufficientStock):
		status, code = http.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, entity.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return entity.InvalidInputf("invalid request body: %v", err)
	}
	return nil
}

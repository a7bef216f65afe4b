package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"balancebooks/internal/core"
	applog "balancebooks/internal/log"
	"balancebooks/internal/services"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, core.ErrMonthCloseFailed):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest), core.IsValidation(err), errors.Is(err, services.ErrNotBackup):
		return http.StatusBadRequest
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs server-side failures and hides their detail from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "request failed",
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err.Error())
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

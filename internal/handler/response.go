// Package handler implements the HTTP layer of the external safety API.
//
// Every JSON response uses the envelope the mobile client expects:
// { success, message?, data?, error? }.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Eissaali11/nuzum/internal/domain"
)

// envelope is the uniform response shape of the API.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(env)
}

// respondData writes a success envelope.
func respondData(w http.ResponseWriter, status int, message string, data any) {
	respondJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// respondList writes a success envelope with a top-level count mirror.
func respondList(w http.ResponseWriter, data any, count int) {
	respondJSON(w, http.StatusOK, envelope{Success: true, Data: data, Count: &count})
}

// respondError maps a domain error onto an HTTP status and writes the error
// envelope. Server-side failures are logged at error level, client mistakes
// at warn.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := domain.ErrorCode(err)
	status := statusFromCode(code)

	if status >= 500 {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"op", domain.ErrorOp(err),
			"error", err,
		)
	} else {
		logger.Warn("request rejected",
			"method", r.Method,
			"path", r.URL.Path,
			"op", domain.ErrorOp(err),
			"error", err,
		)
	}

	respondJSON(w, status, envelope{Success: false, Error: domain.ErrorMessage(err)})
}

// respondErrorMessage writes a bare error envelope without a domain error.
func respondErrorMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, envelope{Success: false, Error: message})
}

func statusFromCode(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.ETOOLARGE:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Package respond writes JSON responses and the uniform error envelope
// shared by handlers and middleware.
package respond

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/AchilleasB/paws-rescue/rescue-api/internal/core/domain"
)

type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

// StatusCode maps a domain error kind to an HTTP status.
func StatusCode(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// CodeName returns the status name without spaces, e.g. "BadRequest".
func CodeName(status int) string {
	return strings.ReplaceAll(http.StatusText(status), " ", "")
}

func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: ErrorDetail{Code: CodeName(status), Message: message}})
}

// Error writes err in the error envelope. Internal and unavailable errors
// are logged with request context; internal detail never reaches the caller.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		if logger == nil {
			logger = zap.L()
		}
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	Message(w, status, domain.PublicMessage(err))
}

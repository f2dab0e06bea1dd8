// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	"net/http"

	"activity-signup/internal/common/metrics"
	"activity-signup/internal/models"
)

// ErrorHandler turns errors into HTTP error responses
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// WriteError normalizes err, logs it, and writes an ErrorDetail body.
func (h *ErrorHandler) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := Normalize(err)
	status := HTTPStatus(stdErr.Code)

	h.logError(r, w.Header().Get("X-Request-Id"), stdErr, status)
	metrics.RequestErrors.WithLabelValues(string(stdErr.Code), GetErrorCategory(stdErr.Code)).Inc()

	detail := stdErr.Message
	if status >= http.StatusInternalServerError {
		detail = "Internal server error"
	}
	WriteJSON(w, status, models.ErrorDetail{Detail: detail, Code: string(stdErr.Code)})
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *ErrorHandler) logError(r *http.Request, requestID string, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"requestId": requestID,
		"method":    r.Method,
		"path":      r.URL.Path,
		"status":    status,
		"errorCode": string(stdErr.Code),
		"kind":      string(stdErr.Kind()),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields)
		return
	}
	h.logger.Warn("request rejected", fields)
}

package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/akinalp/shopapi/pkg/logger"
)

// Envelope status values. Every response uses exactly one of these two.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the standard shape of every API response.
// Clients always get the same structure: status, optional message, optional data.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// JSON writes a success response with data.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, APIResponse{Status: StatusSuccess, Data: data})
}

// JSONWithMessage writes a success response that also carries a message,
// e.g. "product deleted".
func JSONWithMessage(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, APIResponse{Status: StatusSuccess, Message: message, Data: data})
}

// Generic messages for 5xx responses. Driver and filesystem errors stay in
// the log.
const (
	msgInternal = "internal server error"
	msgTimeout  = "request timed out, please retry"
)

// Error writes an error response.
// Domain errors are translated to the matching HTTP status code automatically.
// 4xx responses carry the error text; 5xx causes are logged and the client
// gets a generic message.
func Error(w http.ResponseWriter, err error) {
	status := mapErrorToStatus(err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Get().Named("http").Error("request failed",
			zap.Int("status", status),
			zap.Error(err),
		)
		message = msgInternal
		if status == http.StatusServiceUnavailable {
			message = msgTimeout
		}
	}

	write(w, status, APIResponse{Status: StatusError, Message: message})
}

// ErrorWithMessage writes an error response with a custom message and status.
func ErrorWithMessage(w http.ResponseWriter, status int, message string) {
	write(w, status, APIResponse{Status: StatusError, Message: message})
}

func write(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// mapErrorToStatus maps domain errors to HTTP status codes.
// errors.Is walks the wrap chain, so wrapped errors match too.
//
// A deadline is reported as 503: the request may succeed if the client
// retries, unlike a real storage failure.
func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

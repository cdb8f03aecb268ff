package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"raffler/service"

	log "github.com/sirupsen/logrus"
)

// Envelope is the JSON shape of every API response
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable rejection code and a human message
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON writes a success envelope
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(Envelope{Success: true, Data: data}); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}

// Error writes an error envelope with the HTTP status derived from the
// error's classification
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	statusCode, body := classify(ctx, err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if encodeErr := json.NewEncoder(w).Encode(Envelope{Success: false, Error: &body}); encodeErr != nil {
		log.WithError(encodeErr).Error("Failed to encode error response")
	}
}

// BadRequest writes a 400 envelope for malformed input
func BadRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(Envelope{Success: false, Error: &ErrorBody{Code: "BAD_REQUEST", Message: message}})
}

// NotFound writes a 404 envelope for unroutable paths
func NotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Envelope{Success: false, Error: &ErrorBody{Code: "NOT_FOUND", Message: "the requested resource was not found"}})
}

// Unauthorized writes a 401 envelope
func Unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(Envelope{Success: false, Error: &ErrorBody{Code: "UNAUTHORIZED", Message: "no valid auth token"}})
}

func classify(ctx context.Context, err error) (int, ErrorBody) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, ErrorBody{Code: "TIMEOUT", Message: "the operation timed out"}
	}

	switch code := service.CodeOf(err); code {
	case service.ErrCodeNotFound:
		return http.StatusNotFound, ErrorBody{Code: string(code), Message: err.Error()}
	case service.ErrCodeForbidden:
		return http.StatusForbidden, ErrorBody{Code: string(code), Message: err.Error()}
	case service.ErrCodeInvalidState:
		return http.StatusConflict, ErrorBody{Code: string(code), Message: err.Error()}
	case service.ErrCodePaymentFailed:
		return http.StatusPaymentRequired, ErrorBody{Code: string(code), Message: err.Error()}
	case service.ErrCodeInvariantViolation:
		log.WithContext(ctx).WithError(err).Error("Invariant violation surfaced to API")
		return http.StatusInternalServerError, ErrorBody{Code: string(code), Message: "internal error"}
	default:
		log.WithContext(ctx).WithError(err).Error("Unclassified error surfaced to API")
		return http.StatusInternalServerError, ErrorBody{Code: "INTERNAL", Message: "internal error"}
	}
}

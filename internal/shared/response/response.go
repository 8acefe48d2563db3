package response

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"planets-api/internal/shared/errors"
)

// ErrorResponse represents the JSON error response sent to clients
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// validationErrors is the wire shape of a schema validation failure. The
// per-field violations always live under the "body" key.
type validationErrors struct {
	Errors struct {
		Body any `json:"body"`
	} `json:"errors"`
}

// Error logs an error and sends a JSON error response to the client
// This should be the only place where errors are logged in the application
func Error(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	errorType := errors.GetType(err)
	statusCode := mapErrorTypeToStatusCode(errorType)

	logError(logger, r, err, errorType, statusCode)

	sendErrorResponse(w, errorType, err.Error(), statusCode)
}

// mapErrorTypeToStatusCode maps error types to HTTP status codes
func mapErrorTypeToStatusCode(errorType errors.ErrorType) int {
	switch errorType {
	case errors.ErrorTypeNotFound:
		return http.StatusNotFound
	case errors.ErrorTypeValidation:
		return http.StatusBadRequest
	case errors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrorTypeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case errors.ErrorTypeExternal:
		return http.StatusServiceUnavailable
	case errors.ErrorTypeUploadRejected, errors.ErrorTypeInternal:
		fallthrough
	default:
		return http.StatusInternalServerError
	}
}

// logError logs the error with appropriate level and context
func logError(logger *slog.Logger, r *http.Request, err error, errorType errors.ErrorType, statusCode int) {
	logCtx := logger.With(
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
		"error_type", errorType,
		"status_code", statusCode,
	)

	switch errorType {
	case errors.ErrorTypeNotFound:
		logCtx.Debug("Resource not found", "error", err)
	case errors.ErrorTypeValidation:
		logCtx.Debug("Validation error", "error", err)
	case errors.ErrorTypeUnauthorized:
		logCtx.Warn("Authorization error", "error", err)
	case errors.ErrorTypeUploadRejected:
		logCtx.Info("Upload rejected", "error", err)
	case errors.ErrorTypeExternal:
		logCtx.Error("External service error", "error", err)
	case errors.ErrorTypeInternal:
		fallthrough
	default:
		logCtx.Error("Internal server error", "error", err)
	}
}

// sendErrorResponse sends a JSON error response to the client
func sendErrorResponse(w http.ResponseWriter, errorType errors.ErrorType, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   string(errorType),
		Message: message,
		Code:    statusCode,
	}

	// If JSON encoding fails, there's not much we can do at this point
	// The status code has already been sent
	_ = json.NewEncoder(w).Encode(response)
}

// Success sends a JSON success response to the client
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ValidationFailed sends the 422 response carrying per-field violations under
// errors.body. This is a terminal response; no handler logic runs after it.
func ValidationFailed(w http.ResponseWriter, r *http.Request, logger *slog.Logger, violations any) {
	logger.Debug("Request body failed schema validation",
		"method", r.Method,
		"path", r.URL.Path,
	)

	var body validationErrors
	body.Errors.Body = violations

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(body)
}

// RouteNotFound sends the plain-text 404 naming the method and path. The same
// body is produced whether no route matched or a matched route found no
// resource; the two are indistinguishable at the HTTP boundary.
func RouteNotFound(w http.ResponseWriter, method, path string) {
	Text(w, http.StatusNotFound, fmt.Sprintf("Cannot %s %s", method, path))
}

// Text sends a plain-text response
func Text(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

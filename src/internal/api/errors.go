package api

import (
	"encoding/json"
	"net/http"

	"github.com/maksimkurb/ikuai-bridge/src/internal/errors"
)

// ErrorCode represents standard API error codes.
type ErrorCode string

const (
	// ErrCodeInvalidRequest indicates malformed or invalid request data.
	ErrCodeInvalidRequest ErrorCode = "invalid_request"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"

	// ErrCodeForbidden indicates the client may not use the API.
	ErrCodeForbidden ErrorCode = "forbidden"

	// ErrCodeInternalError indicates an internal server error.
	ErrCodeInternalError ErrorCode = "internal_error"

	// ErrCodeServiceError indicates a service operation failed.
	ErrCodeServiceError ErrorCode = "service_error"

	// ErrCodeUnavailable indicates no router data is available yet.
	ErrCodeUnavailable ErrorCode = "unavailable"

	// ErrCodeRouterError indicates the router could not be reached or refused a request.
	ErrCodeRouterError ErrorCode = "router_error"

	// ErrCodeAuthRejected indicates the router rejected the configured credentials.
	ErrCodeAuthRejected ErrorCode = "auth_rejected"

	// ErrCodeTimeout indicates the router did not answer in time.
	ErrCodeTimeout ErrorCode = "timeout"
)

// APIError represents a structured API error response.
type APIError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError for JSON responses.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// NewAPIError creates a new APIError with the given code and message.
func NewAPIError(code ErrorCode, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// WithDetails adds details to an APIError.
func (e APIError) WithDetails(details map[string]interface{}) APIError {
	e.Details = details
	return e
}

// WriteError writes an error response to the HTTP response writer.
func WriteError(w http.ResponseWriter, statusCode int, err APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: err})
}

// WriteInvalidRequest writes a 400 Bad Request error.
func WriteInvalidRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, NewAPIError(ErrCodeInvalidRequest, message))
}

// WriteNotFound writes a 404 Not Found error.
func WriteNotFound(w http.ResponseWriter, resource string) {
	WriteError(w, http.StatusNotFound, NewAPIError(ErrCodeNotFound, resource+" not found"))
}

// WriteForbidden writes a 403 Forbidden error.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// WriteInternalError writes a 500 Internal Server Error.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}

// WriteServiceError writes a 500 Internal Server Error for service failures.
func WriteServiceError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, NewAPIError(ErrCodeServiceError, message))
}

// WriteUnavailable writes a 503 Service Unavailable error.
func WriteUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, NewAPIError(ErrCodeUnavailable, message))
}

// WriteDomainError maps an application error to an HTTP status by its code.
func WriteDomainError(w http.ResponseWriter, err error) {
	WriteError(w, statusFor(err), domainError(err))
}

func domainError(err error) APIError {
	apiErr := NewAPIError(apiCodeFor(err), err.Error())
	if code := errors.CodeOf(err); code != "" {
		apiErr = apiErr.WithDetails(map[string]interface{}{"error_code": string(code)})
	}
	return apiErr
}

func statusFor(err error) int {
	switch errors.CodeOf(err) {
	case errors.ErrCodeValidation:
		return http.StatusBadRequest
	case errors.ErrCodeAuthRejected, errors.ErrCodeAuthExpired, errors.ErrCodeNetwork,
		errors.ErrCodeMalformed, errors.ErrCodeAction:
		return http.StatusBadGateway
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func apiCodeFor(err error) ErrorCode {
	switch errors.CodeOf(err) {
	case errors.ErrCodeValidation:
		return ErrCodeInvalidRequest
	case errors.ErrCodeAuthRejected:
		return ErrCodeAuthRejected
	case errors.ErrCodeTimeout:
		return ErrCodeTimeout
	case errors.ErrCodeAuthExpired, errors.ErrCodeNetwork, errors.ErrCodeMalformed, errors.ErrCodeAction:
		return ErrCodeRouterError
	default:
		return ErrCodeInternalError
	}
}

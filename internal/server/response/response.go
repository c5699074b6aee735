// Package response provides the {data, error} envelope used by every API
// endpoint and maps client errors to HTTP statuses.
package response

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mutantautomate/mutant/pkg/errors"
)

// Response represents the standardized API response structure.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error represents an API error with code, message, and optional details.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Success creates a successful response with data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent, nothing useful to do with an encode error.
	_ = json.NewEncoder(w).Encode(resp)
}

// Text writes a plain body with the given content type.
func Text(w http.ResponseWriter, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// Created writes a successful response with 201 status.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Success(data))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail("BAD_REQUEST", message, details))
}

// Unauthorized writes a 401 error response.
func Unauthorized(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusUnauthorized, Fail("UNAUTHORIZED", message, details))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail("NOT_FOUND", message, details))
}

// Conflict writes a 409 error response.
func Conflict(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusConflict, Fail("CONFLICT", message, details))
}

// PreconditionFailed writes a 412 error response.
func PreconditionFailed(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusPreconditionFailed, Fail("PRECONDITION_FAILED", message, details))
}

// RateLimited writes a 429 error response.
func RateLimited(w http.ResponseWriter, message string) {
	JSON(w, http.StatusTooManyRequests, Fail("RATE_LIMITED", "Rate limit exceeded", message))
}

// InternalError writes a 500 error response. The error itself is not exposed.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail(
		"INTERNAL_ERROR",
		"Internal server error",
		"An unexpected error occurred",
	))
}

// BadGateway writes a 502 error response for a failed upstream call.
func BadGateway(w http.ResponseWriter, message string) {
	JSON(w, http.StatusBadGateway, Fail("UPSTREAM_ERROR", "Upstream service failed", message))
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail("SERVICE_UNAVAILABLE", "Service unavailable", message))
}

// GatewayTimeout writes a 504 error response.
func GatewayTimeout(w http.ResponseWriter, message string) {
	JSON(w, http.StatusGatewayTimeout, Fail("TIMEOUT", "Upstream request timed out", message))
}

// ErrorFromType maps client errors to HTTP responses.
func ErrorFromType(w http.ResponseWriter, err error) {
	var apiErr *errors.APIError
	switch {
	case errors.Is(err, errors.ErrMutationBusy):
		Conflict(w, err.Error(), "")
	case errors.Is(err, errors.ErrStaleRun):
		Conflict(w, err.Error(), "a new run started before the action finished")
	case errors.Is(err, errors.ErrNoStructure):
		PreconditionFailed(w, err.Error(), "fetch a structure first")
	case errors.Is(err, errors.ErrClosed):
		ServiceUnavailable(w, err.Error())
	case errors.IsValidationError(err):
		BadRequest(w, err.Error(), "")
	case errors.IsNotFound(err), errors.Is(err, errors.ErrNoPrediction):
		NotFound(w, err.Error(), "")
	case errors.IsRateLimited(err):
		RateLimited(w, err.Error())
	case errors.Is(err, errors.ErrTimeout):
		GatewayTimeout(w, err.Error())
	case errors.As(err, &apiErr):
		BadGateway(w, err.Error())
	default:
		InternalError(w, err)
	}
}

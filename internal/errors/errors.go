// Package errors defines the service error taxonomy and its HTTP mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes reported in ServiceError.Code.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeBadRequest        = "BAD_REQUEST"
	CodeUpstream          = "UPSTREAM_FAILURE"
	CodeRenderFailed      = "RENDER_FAILED"
	CodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	CodeInternal          = "INTERNAL"
)

// ServiceError is an error with a client-safe message and HTTP status.
// Err holds the cause and is never shown to clients.
type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NotFound reports a missing resource.
func NotFound(resource, id string) *ServiceError {
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s %s not found", resource, id),
		HTTPStatus: http.StatusNotFound,
	}
}

// BadRequest reports malformed client input.
func BadRequest(message string, err error) *ServiceError {
	return &ServiceError{
		Code:       CodeBadRequest,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// Upstream reports a storage or database failure. The message names the
// operation only.
func Upstream(op string, err error) *ServiceError {
	return &ServiceError{
		Code:       CodeUpstream,
		Message:    op + " failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// RenderFailed reports a template failure.
func RenderFailed(err error) *ServiceError {
	return &ServiceError{
		Code:       CodeRenderFailed,
		Message:    "failed to render template",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// RateLimitExceeded reports a client over its request budget.
func RateLimitExceeded(limit int, window string) *ServiceError {
	return &ServiceError{
		Code:       CodeRateLimitExceeded,
		Message:    fmt.Sprintf("rate limit of %d requests per %s exceeded", limit, window),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// As returns err as a *ServiceError when one is in its chain.
func As(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}

// From maps any error to a ServiceError. Errors already in the taxonomy are
// returned as is; errors matching notFound become NotFound; anything else is
// treated as an internal failure.
func From(err error, notFound ...error) *ServiceError {
	if err == nil {
		return nil
	}
	if svcErr, ok := As(err); ok {
		return svcErr
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			return &ServiceError{
				Code:       CodeNotFound,
				Message:    "not found",
				HTTPStatus: http.StatusNotFound,
				Err:        err,
			}
		}
	}
	return &ServiceError{
		Code:       CodeInternal,
		Message:    "internal error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spec-kit/permit-service/internal/domain"
)

// DomainError standardizes application errors at the HTTP boundary.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts engine errors to their client-visible shape:
// validation 400, not found 404, forbidden 403, invalid transition and
// write conflicts 409. Anything unexpected becomes an opaque 500.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return NewDomainError("VALIDATION_FAILED", validationErr.Message, http.StatusBadRequest, nil)
	}
	var notFoundErr *domain.NotFoundError
	if errors.As(err, &notFoundErr) {
		return NewDomainError("NOT_FOUND", notFoundErr.Error(), http.StatusNotFound, map[string]any{
			"permit_id": notFoundErr.PermitID,
		})
	}
	var forbiddenErr *domain.ForbiddenError
	if errors.As(err, &forbiddenErr) {
		return NewDomainError("FORBIDDEN", forbiddenErr.Error(), http.StatusForbidden, nil)
	}
	var transitionErr *domain.InvalidTransitionError
	if errors.As(err, &transitionErr) {
		return NewDomainError("INVALID_TRANSITION", transitionErr.Error(), http.StatusConflict, map[string]any{
			"current_status": transitionErr.Current,
			"operation":      transitionErr.Event,
		})
	}
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		return NewDomainError("CONFLICT", conflictErr.Error(), http.StatusConflict, map[string]any{
			"permit_id": conflictErr.PermitID,
		})
	}

	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	return ToDomainError(err)
}

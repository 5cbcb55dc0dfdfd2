// Package shared contains common domain types, errors and events
// that are used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")
	ErrExpired         = errors.New("expired")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Concurrency errors
	ErrConflict               = errors.New("conflict")
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// Infrastructure errors
	ErrInternal           = errors.New("internal failure")
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "quiz", "course", "subscription"
	Op      string // Operation that failed, e.g., "Submit", "Cancel"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Quiz domain errors
var (
	ErrQuizNotFound     = NewDomainError("quiz", "Find", ErrNotFound, "quiz not found")
	ErrQuizInactive     = NewDomainError("quiz", "Submit", ErrNotFound, "quiz is not active")
	ErrAttemptNotFound  = NewDomainError("quiz", "FindAttempt", ErrNotFound, "attempt not found")
	ErrInvalidQuizID    = NewDomainError("quiz", "Validate", ErrInvalidID, "invalid quiz ID")
	ErrInvalidThreshold = NewDomainError("quiz", "Validate", ErrValueOutOfRange, "pass threshold must be between 0 and 100")
)

// Course domain errors
var (
	ErrCourseNotFound    = NewDomainError("course", "Find", ErrNotFound, "course not found")
	ErrVideoNotFound     = NewDomainError("course", "FindVideo", ErrNotFound, "video not found")
	ErrProgressNotFound  = NewDomainError("course", "FindProgress", ErrNotFound, "progress not found")
	ErrInvalidCourseID   = NewDomainError("course", "Validate", ErrInvalidID, "invalid course ID")
	ErrNegativeWatchTime = NewDomainError("course", "Validate", ErrNegativeValue, "watched seconds cannot be negative")
	ErrInvalidPercentage = NewDomainError("course", "Validate", ErrValueOutOfRange, "percentage must be between 0 and 100")
)

// Subscription domain errors
var (
	ErrPlanNotFound         = NewDomainError("subscription", "FindPlan", ErrNotFound, "plan not found")
	ErrPlanInactive         = NewDomainError("subscription", "Subscribe", ErrInvalidState, "plan is not active")
	ErrSubscriptionExists   = NewDomainError("subscription", "Subscribe", ErrConflict, "user already has an active subscription")
	ErrSubscriptionNotFound = NewDomainError("subscription", "Find", ErrNotFound, "subscription not found")
	ErrInvalidPlanID        = NewDomainError("subscription", "Validate", ErrInvalidID, "invalid plan ID")
)

// Payment collaborator errors
var (
	ErrPaymentFailed      = NewDomainError("payment", "Charge", ErrExternalService, "payment charge failed")
	ErrPaymentUnavailable = NewDomainError("payment", "Charge", ErrServiceUnavailable, "payment gateway unavailable")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsInvalidState checks if the error is an invalid-state error.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState) || errors.Is(err, ErrStateTransition)
}

// IsConflict checks if the error is a concurrent-write conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrConcurrentModification)
}

// IsInternal checks if the error is an internal/infrastructure failure.
func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal) ||
		errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}

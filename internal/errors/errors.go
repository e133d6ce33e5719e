// Package errors provides structured error types for the dashboard daemon.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for common failure modes.
var (
	ErrUnavailable  = errors.New("source unavailable")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
	ErrMalformed    = errors.New("malformed record")
)

// TimeoutError is returned when a guarded operation exceeds its budget.
// The underlying operation is abandoned, not interrupted.
type TimeoutError struct {
	Label  string
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Label, e.Budget)
}

// NewTimeout creates a timeout error for a labeled operation.
func NewTimeout(label string, budget time.Duration) *TimeoutError {
	return &TimeoutError{Label: label, Budget: budget}
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// Category classifies an error for user-facing messaging.
type Category string

const (
	CategoryDatabase   Category = "database"
	CategoryTimeout    Category = "timeout"
	CategoryPermission Category = "permission"
	CategoryInput      Category = "input"
	CategoryGeneric    Category = "generic"
)

// Classify buckets an error by matching on its content. Only genuine
// caller-visible errors reach this path; sub-query failures are absorbed
// upstream and recorded in the failures list instead.
func Classify(err error) Category {
	if err == nil {
		return CategoryGeneric
	}
	if IsTimeout(err) {
		return CategoryTimeout
	}
	if errors.Is(err, ErrInvalidInput) {
		return CategoryInput
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database"), strings.Contains(msg, "sqlite"), strings.Contains(msg, "sql"):
		return CategoryDatabase
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"), strings.Contains(msg, "deadline"):
		return CategoryTimeout
	case strings.Contains(msg, "permission"), strings.Contains(msg, "access denied"), strings.Contains(msg, "read-only"):
		return CategoryPermission
	default:
		return CategoryGeneric
	}
}

// UserMessage maps an error to a message safe to show the dashboard user.
func UserMessage(err error) string {
	switch Classify(err) {
	case CategoryDatabase:
		return "The local activity database could not be read."
	case CategoryTimeout:
		return "A data source took too long to respond."
	case CategoryPermission:
		return "The activity data could not be accessed due to file permissions."
	case CategoryInput:
		return "The request was not understood: " + err.Error()
	default:
		return "An unexpected error occurred while loading activity data."
	}
}

package errors

import (
	"errors"
	"fmt"
)

// ClassifiedError is the error currency between docpress subsystems. Callers
// route on the category and retry strategy instead of matching message text.
// Values are immutable once built; construct them through ErrorBuilder.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

// Error renders the classification prefix, the message and the cause chain.
func (e *ClassifiedError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
	}
	return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.cause
}

// Category returns the subsystem classification.
func (e *ClassifiedError) Category() ErrorCategory {
	return e.category
}

// Severity returns the impact grade.
func (e *ClassifiedError) Severity() ErrorSeverity {
	return e.severity
}

// RetryStrategy returns the recommended retry handling.
func (e *ClassifiedError) RetryStrategy() RetryStrategy {
	return e.retry
}

// Message returns the message without the classification prefix or cause.
func (e *ClassifiedError) Message() string {
	return e.message
}

// Context returns the structured detail attached at build time. The returned
// map must not be modified.
func (e *ClassifiedError) Context() ErrorContext {
	return e.context
}

// CanRetry reports whether another attempt might succeed.
func (e *ClassifiedError) CanRetry() bool {
	return e.retry == RetryBackoff
}

// AsClassified finds a ClassifiedError in err's chain. Unlike a plain type
// assertion it sees through fmt.Errorf %w wrapping.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory reports whether err's chain contains a ClassifiedError with
// the given category.
func HasCategory(err error, category ErrorCategory) bool {
	classified, ok := AsClassified(err)
	return ok && classified.category == category
}

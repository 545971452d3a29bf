// Package foundation provides generic validation primitives shared across
// docpress configuration and input handling.
package foundation

import (
	"fmt"
	"strings"

	"github.com/docpress/docpress/internal/foundation/errors"
)

// Validator checks one aspect of a value.
type Validator[T any] func(T) ValidationResult

// ValidationResult accumulates field errors. A result with no errors is
// valid; there is no separate flag to keep in sync.
type ValidationResult struct {
	Errors []FieldError
}

// FieldError is a single validation failure tied to a named field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (fe FieldError) Error() string {
	if fe.Field == "" {
		return fe.Message
	}
	return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
}

// Valid returns an empty, passing result.
func Valid() ValidationResult {
	return ValidationResult{}
}

// Invalid returns a failing result carrying the given field errors.
func Invalid(errors ...FieldError) ValidationResult {
	return ValidationResult{Errors: errors}
}

// NewValidationError builds a FieldError.
func NewValidationError(field, code, message string) FieldError {
	return FieldError{Field: field, Code: code, Message: message}
}

// OK reports whether no failure was recorded.
func (vr ValidationResult) OK() bool {
	return len(vr.Errors) == 0
}

// Combine concatenates the field errors of two results.
func (vr ValidationResult) Combine(other ValidationResult) ValidationResult {
	if len(other.Errors) == 0 {
		return vr
	}
	merged := make([]FieldError, 0, len(vr.Errors)+len(other.Errors))
	merged = append(merged, vr.Errors...)
	merged = append(merged, other.Errors...)
	return ValidationResult{Errors: merged}
}

// ToError converts a failing result into one classified validation error
// listing every field failure. A passing result converts to nil.
func (vr ValidationResult) ToError() error {
	if vr.OK() {
		return nil
	}

	parts := make([]string, len(vr.Errors))
	for i, fe := range vr.Errors {
		parts[i] = fe.Error()
	}
	return errors.ValidationError(strings.Join(parts, "; ")).Build()
}

// ValidatorChain runs validators in order, collecting every failure instead
// of stopping at the first.
type ValidatorChain[T any] struct {
	checks []Validator[T]
}

// NewValidatorChain creates a chain from the given validators.
func NewValidatorChain[T any](checks ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{checks: checks}
}

// Validate runs the chain against a value.
func (vc *ValidatorChain[T]) Validate(value T) ValidationResult {
	var result ValidationResult
	for _, check := range vc.checks {
		result = result.Combine(check(value))
	}
	return result
}

// Package errors provides sentinel errors for route resolution.
// These enable consistent classification across the resolve surfaces.
package errors

import "errors"

var (
	// ErrPageLimitExceeded indicates the document listing kept reporting further
	// pages past the resolver's upper bound. Treated as a fetch failure.
	ErrPageLimitExceeded = errors.New("document listing exceeded page limit")
)

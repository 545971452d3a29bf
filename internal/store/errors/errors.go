// Package errors provides sentinel errors for content store operations.
// These enable consistent classification across resolver and build stages.
package errors

import "errors"

var (
	// ErrDocumentNotFound indicates the store holds no record at the requested path.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrMalformedPage indicates the store returned a structurally invalid listing page.
	ErrMalformedPage = errors.New("malformed listing page")
)

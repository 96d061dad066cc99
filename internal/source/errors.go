package source

import "errors"

// Standard errors returned by the source cache.
var (
	// ErrNotFound indicates the path has no cached content and cannot be read.
	ErrNotFound = errors.New("source not found")

	// ErrInvalidEncoding indicates the file bytes are not valid UTF-8.
	ErrInvalidEncoding = errors.New("source is not valid utf-8")

	// ErrInvalidCoordinate indicates a line/column position outside the
	// bounds of the current text.
	ErrInvalidCoordinate = errors.New("position out of bounds")
)

package pkgcache

import "errors"

// Standard errors returned by package resolution.
var (
	// ErrFetchFailed indicates a network-level failure downloading the
	// package archive.
	ErrFetchFailed = errors.New("package fetch failed")

	// ErrExtractFailed indicates the downloaded archive could not be
	// decompressed or unpacked.
	ErrExtractFailed = errors.New("package extract failed")

	// ErrBadSpec indicates a package spec string that does not parse.
	ErrBadSpec = errors.New("malformed package spec")
)

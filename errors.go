// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxEntrySizeExceeded is returned (wrapped in a
	// [*DecompressionError]) when an entry inflates beyond the configured
	// maximum entry size.
	ErrMaxEntrySizeExceeded = errors.New("maximum entry size exceeded")

	// ErrMaxInputSizeExceeded is returned by [Open] when the archive file
	// is larger than the configured maximum input size.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")
)

// FormatError indicates that the archive structure itself cannot be trusted,
// e.g. the End-of-Central-Directory record is missing or the central
// directory bounds are violated. It is fatal to opening/parsing the archive.
type FormatError struct {
	Msg string
	Err error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid zip archive: %s: %s", e.Msg, e.Err)
	}
	return fmt.Sprintf("invalid zip archive: %s", e.Msg)
}

// Unwrap returns the underlying error, if any.
func (e *FormatError) Unwrap() error {
	return e.Err
}

// UnsupportedMethodError indicates an entry uses a compression method this
// package does not handle. Only store (0) and raw deflate (8) are supported.
type UnsupportedMethodError struct {
	Method uint16
}

// Error implements the error interface.
func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported compression method %d", e.Method)
}

// DecompressionError wraps a failure of the deflate codec for a single entry.
type DecompressionError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *DecompressionError) Error() string {
	return fmt.Sprintf("cannot decompress %q: %s", e.Name, e.Err)
}

// Unwrap returns the codec error.
func (e *DecompressionError) Unwrap() error {
	return e.Err
}

// PathTraversalError indicates an entry name that would resolve outside the
// extraction destination.
type PathTraversalError struct {
	Name string
}

// Error implements the error interface.
func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("path traversal detected: %q escapes destination", e.Name)
}

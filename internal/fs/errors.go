// Package fs implements directory listing with manifest-declared ghost
// entries.
//
// This file contains error types and error handling utilities.
package fs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGhostDir indicates a missing path that the manifest declares
	// nothing below, so it cannot be listed as a virtual directory.
	ErrInvalidGhostDir = errors.New("no such file or directory")

	// ErrNotDirectory indicates a listing was requested for a non-directory.
	ErrNotDirectory = errors.New("not a directory")
)

// Error wraps filesystem errors with the operation and the affected path.
type Error struct {
	Op   string // Operation that failed (e.g., "readdir", "stat")
	Path string // Affected path
	Err  error  // Underlying error
}

// Error implements the error interface, providing a formatted error message
func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given operation, path, and underlying error
func NewError(op string, path string, err error) *Error {
	return &Error{
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// Common operation names for consistent logging and error reporting
const (
	OpLookup  = "lookup"  // Resolving a path to a listable directory
	OpReadDir = "readdir" // Reading directory contents
	OpStat    = "stat"    // Querying entry metadata
	OpOpen    = "open"    // Opening a file
	OpRead    = "read"    // Reading from a file
)

// Copyright 2026 The Grouplist Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies a command failure. Each category has its own
// exit code so scripts can branch without parsing messages.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation" // bad input
	CategoryNotFound   ErrorCategory = "not_found"  // unknown list or absent ID
	CategoryForbidden  ErrorCategory = "forbidden"  // secret rejected
	CategoryConflict   ErrorCategory = "conflict"   // concurrent write; safe to rerun
	CategoryTransient  ErrorCategory = "transient"  // service or backend unreachable
	CategoryInternal   ErrorCategory = "internal"
)

// ExitCode is the process exit status for the category. Unknown
// categories exit 1 like CategoryInternal.
func (category ErrorCategory) ExitCode() int {
	switch category {
	case CategoryValidation:
		return 2
	case CategoryNotFound:
		return 3
	case CategoryForbidden:
		return 4
	case CategoryConflict:
		return 5
	case CategoryTransient:
		return 6
	default:
		return 1
	}
}

// ToolError is a categorized command failure. Err stays reachable
// through errors.Is and errors.As.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// ExitCode satisfies process.Coder.
func (e *ToolError) ExitCode() int { return e.Category.ExitCode() }

func categorized(category ErrorCategory, format string, args []any) *ToolError {
	return &ToolError{Category: category, Err: fmt.Errorf(format, args...)}
}

// Validation reports bad input from the caller.
func Validation(format string, args ...any) *ToolError {
	return categorized(CategoryValidation, format, args)
}

func NotFound(format string, args ...any) *ToolError {
	return categorized(CategoryNotFound, format, args)
}

func Forbidden(format string, args ...any) *ToolError {
	return categorized(CategoryForbidden, format, args)
}

func Conflict(format string, args ...any) *ToolError {
	return categorized(CategoryConflict, format, args)
}

func Transient(format string, args ...any) *ToolError {
	return categorized(CategoryTransient, format, args)
}

func Internal(format string, args ...any) *ToolError {
	return categorized(CategoryInternal, format, args)
}

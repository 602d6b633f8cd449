// Package shared provides common utilities used across the codebase.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import (
	"context"
	"errors"
	"strings"
)

// IsSQLiteConflictError reports whether err is a SQLITE_BUSY or
// "database is locked" error, i.e. another connection held the write lock
// past the busy timeout.
func IsSQLiteConflictError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// IsTransient reports whether a storage error is worth surfacing as a
// temporary condition rather than a server fault.
func IsTransient(err error) bool {
	return IsSQLiteConflictError(err) || errors.Is(err, context.DeadlineExceeded)
}

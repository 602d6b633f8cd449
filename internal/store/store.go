// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/ashureev/tabtime/internal/domain"
)

var (
	// ErrInvalidRecord is returned when a record violates the stored-session
	// invariants (end after start by more than a second).
	ErrInvalidRecord = errors.New("invalid session record")
)

// Repository defines the interface for persisting session records.
type Repository interface {
	// AppendRecord adds a closed session to the end of the log. A record
	// without an ID is assigned a new one.
	AppendRecord(ctx context.Context, rec domain.SessionRecord) error

	// ListRecords returns every stored record in insertion order.
	ListRecords(ctx context.Context) ([]domain.SessionRecord, error)

	// Clear removes all stored records and returns how many were deleted.
	Clear(ctx context.Context) (int64, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

// Package storage provides the state management for credentials, sessions,
// and the record document.
package storage

import (
	"context"

	"github.com/datapad-dev/datapad/internal/storage/db"
)

const (
	// ErrNotFound is returned when a user or session cannot be found.
	ErrNotFound Error = "not found"
	// ErrAlreadyExists is returned if a unique user already exists.
	ErrAlreadyExists Error = "already exists"
	// ErrInvalidUsername is returned when a username fails validation.
	ErrInvalidUsername Error = "username must be 3-64 characters, alphanumeric and underscores only"
	// ErrInternal is returned for any other type of error.
	ErrInternal Error = "internal error"
)

// Error is an error type returned by the storage implementation.
type Error string

// Error satisfies [error].
func (e Error) Error() string { return string(e) }

// Users are the methods on a storage implementation that are responsible for
// accessing and modifying credential records.
type Users interface {
	// ListUsers returns every user ordered by name.
	ListUsers(ctx context.Context) ([]db.User, error)
	// GetUser returns a single user with the specified ID. An [ErrNotFound]
	// is returned if the user ID does not exist.
	GetUser(ctx context.Context, userID uint64) (db.User, error)
	// GetUserByName returns a single user with the specified name, matched
	// exactly and case-sensitively. An [ErrNotFound] is returned if the user
	// name does not exist.
	GetUserByName(ctx context.Context, name string) (db.User, error)
	// UpsertUser creates or updates the user. This is a full PUT-style
	// upsert. An [ErrAlreadyExists] error is returned if the username is
	// already in use by a different user.
	UpsertUser(ctx context.Context, user db.User) error
	// DeleteUser removes a user and their sessions. Note that this is a hard
	// delete; data is not recoverable.
	DeleteUser(ctx context.Context, userID uint64) error
}

// Sessions are the methods on a storage implementation that manage the
// server-side session records.
type Sessions interface {
	// CreateSession persists a new session row.
	CreateSession(ctx context.Context, session db.Session) error
	// GetSession returns the session with the given opaque ID. An
	// [ErrNotFound] is returned for unknown IDs; expiry is enforced by the
	// caller.
	GetSession(ctx context.Context, sessionID string) (db.Session, error)
	// DeleteSession removes a session. Removing an absent session is not an
	// error.
	DeleteSession(ctx context.Context, sessionID string) error
}

// Records are the methods on a storage implementation that manage the
// singleton record document.
type Records interface {
	// GetRecord returns the last-written payload as a JSON array, or an
	// empty array if nothing has ever been written. Absence is never an
	// error; storage failures are.
	GetRecord(ctx context.Context) ([]byte, error)
	// PutRecord replaces the entire stored payload atomically. The payload
	// must already be a canonical JSON array (see the record package).
	PutRecord(ctx context.Context, payload []byte) error
}

// Store is the combination interface for [Users], [Sessions], and [Records].
type Store interface {
	Users
	Sessions
	Records
	// Close releases any resources held by the store. An error is returned
	// if the store cannot be cleanly closed.
	Close() error
}

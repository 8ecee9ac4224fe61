package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"math/rand/v2"
	"regexp"

	"github.com/influxdata/influxdb/pkg/snowflake"

	"github.com/datapad-dev/datapad/internal/config"
	"github.com/datapad-dev/datapad/internal/record"
	"github.com/datapad-dev/datapad/internal/storage/db"
)

// Username validation constraints.
const (
	minUsernameLen = 3
	maxUsernameLen = 64
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// validateUsername validates that a username meets the requirements:
// 3-64 characters, alphanumeric and underscores only.
func validateUsername(name string) bool {
	return len(name) >= minUsernameLen &&
		len(name) <= maxUsernameLen &&
		usernameRegex.MatchString(name)
}

// DB is a [Store] backed by two SQLite database files: one for credentials
// and sessions, one for the record document.
type DB struct {
	ids     *snowflake.Generator
	creds   *sql.DB
	records *sql.DB
	credQ   *db.Queries
	recordQ *db.Queries
}

// NewDB initializes a DB with the given config and logger, opening and
// migrating both database files.
func NewDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*DB, error) {
	creds, err := db.Open(ctx, logger, cfg.CredentialDBFilepath, db.CredentialMigrations)
	if err != nil {
		return nil, err
	}
	records, err := db.Open(ctx, logger, cfg.RecordDBFilepath, db.RecordMigrations)
	if err != nil {
		return nil, errors.Join(err, creds.Close())
	}
	return &DB{
		ids:     snowflake.New(rand.IntN(1023)), //nolint:gosec,mnd // this isn't for crypto
		creds:   creds,
		records: records,
		credQ:   db.New(creds),
		recordQ: db.New(records),
	}, nil
}

// Close satisfies the [Store] interface.
func (d *DB) Close() error {
	return errors.Join(d.creds.Close(), d.records.Close())
}

// ListUsers satisfies the [Users] interface.
func (d *DB) ListUsers(ctx context.Context) ([]db.User, error) {
	return d.credQ.GetUsers(ctx)
}

// GetUser satisfies the [Users] interface.
func (d *DB) GetUser(ctx context.Context, userID uint64) (db.User, error) {
	user, err := d.credQ.GetUser(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// GetUserByName satisfies the [Users] interface.
func (d *DB) GetUserByName(ctx context.Context, name string) (db.User, error) {
	user, err := d.credQ.GetUserByName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return user, ErrNotFound
	}
	return user, err
}

// UpsertUser satisfies the [Users] interface.
func (d *DB) UpsertUser(ctx context.Context, user db.User) error {
	if !validateUsername(user.Name) {
		return ErrInvalidUsername
	}
	existing, err := d.credQ.GetUserByName(ctx, user.Name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// name is free
	case err != nil:
		return err
	case existing.ID != user.ID:
		return ErrAlreadyExists
	}
	if user.ID == 0 {
		user.ID = d.ids.Next()
	}
	return d.credQ.UpsertUser(ctx, user)
}

// DeleteUser satisfies the [Users] interface.
func (d *DB) DeleteUser(ctx context.Context, userID uint64) error {
	return d.credQ.DeleteUser(ctx, userID)
}

// CreateSession satisfies the [Sessions] interface.
func (d *DB) CreateSession(ctx context.Context, session db.Session) error {
	return d.credQ.CreateSession(ctx, session)
}

// GetSession satisfies the [Sessions] interface.
func (d *DB) GetSession(ctx context.Context, sessionID string) (db.Session, error) {
	session, err := d.credQ.GetSession(ctx, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return session, ErrNotFound
	}
	return session, err
}

// DeleteSession satisfies the [Sessions] interface.
func (d *DB) DeleteSession(ctx context.Context, sessionID string) error {
	return d.credQ.DeleteSession(ctx, sessionID)
}

// GetRecord satisfies the [Records] interface. Rows written by older drafts
// of the service may hold non-array JSON; those are re-normalized on read so
// callers always receive an array.
func (d *DB) GetRecord(ctx context.Context) ([]byte, error) {
	data, err := d.recordQ.GetRecord(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Empty(), nil
	}
	if err != nil {
		return nil, err
	}
	normalized, err := record.Normalize(data)
	if err != nil {
		return nil, ErrInternal
	}
	return normalized, nil
}

// PutRecord satisfies the [Records] interface.
func (d *DB) PutRecord(ctx context.Context, payload []byte) error {
	return d.recordQ.UpsertRecord(ctx, payload)
}

var _ Store = (*DB)(nil)

package db

import (
	"context"
	"database/sql"
)

// Queries wraps a database handle with the prepared statement set for one of
// the two database files. Methods return sql.ErrNoRows unwrapped; the storage
// package maps driver errors to its own error taxonomy.
type Queries struct {
	db *sql.DB
}

// New returns a Queries bound to the given handle.
func New(handle *sql.DB) *Queries {
	return &Queries{db: handle}
}

const getUser = `SELECT id, name, password_hash FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id uint64) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUser, id).Scan(&u.ID, &u.Name, &u.PasswordHash)
	return u, err
}

const getUserByName = `SELECT id, name, password_hash FROM users WHERE name = ?`

func (q *Queries) GetUserByName(ctx context.Context, name string) (User, error) {
	var u User
	err := q.db.QueryRowContext(ctx, getUserByName, name).Scan(&u.ID, &u.Name, &u.PasswordHash)
	return u, err
}

const getUsers = `SELECT id, name, password_hash FROM users ORDER BY name`

func (q *Queries) GetUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, getUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.PasswordHash); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const upsertUser = `
INSERT INTO users (id, name, password_hash) VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET name = excluded.name, password_hash = excluded.password_hash
`

func (q *Queries) UpsertUser(ctx context.Context, user User) error {
	_, err := q.db.ExecContext(ctx, upsertUser, user.ID, user.Name, user.PasswordHash)
	return err
}

const deleteUser = `DELETE FROM users WHERE id = ?`

func (q *Queries) DeleteUser(ctx context.Context, id uint64) error {
	_, err := q.db.ExecContext(ctx, deleteUser, id)
	return err
}

const createSession = `INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`

func (q *Queries) CreateSession(ctx context.Context, s Session) error {
	_, err := q.db.ExecContext(ctx, createSession, s.ID, s.UserID, s.CreatedAt, s.ExpiresAt)
	return err
}

const getSession = `SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = ?`

func (q *Queries) GetSession(ctx context.Context, id string) (Session, error) {
	var s Session
	err := q.db.QueryRowContext(ctx, getSession, id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	return s, err
}

const deleteSession = `DELETE FROM sessions WHERE id = ?`

// DeleteSession removes a session row. Deleting an absent session is not an
// error.
func (q *Queries) DeleteSession(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx, deleteSession, id)
	return err
}

const getRecord = `SELECT data FROM record WHERE id = 1`

func (q *Queries) GetRecord(ctx context.Context) ([]byte, error) {
	var data []byte
	err := q.db.QueryRowContext(ctx, getRecord).Scan(&data)
	return data, err
}

const upsertRecord = `
INSERT INTO record (id, data) VALUES (1, ?)
ON CONFLICT (id) DO UPDATE SET data = excluded.data
`

// UpsertRecord replaces the singleton document in a single statement, so a
// concurrent reader sees either the old or the new payload, never a mix.
func (q *Queries) UpsertRecord(ctx context.Context, data []byte) error {
	_, err := q.db.ExecContext(ctx, upsertRecord, data)
	return err
}

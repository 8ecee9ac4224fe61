package db

import "time"

// User is a row in the credential store. PasswordHash is a bcrypt hash;
// plaintext passwords are never persisted.
type User struct {
	ID           uint64
	Name         string
	PasswordHash []byte
}

// Session is a row in the credential store binding an opaque session ID to a
// user for a bounded lifetime. Clients hold only the signed form of ID.
type Session struct {
	ID        string
	UserID    uint64
	CreatedAt time.Time
	ExpiresAt time.Time
}

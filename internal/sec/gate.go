package sec

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/datapad-dev/datapad/internal/storage"
	"github.com/datapad-dev/datapad/internal/storage/db"
)

// SessionTTL bounds the lifetime of a session from its creation.
const SessionTTL = 24 * time.Hour

// CookieName is the session cookie issued to clients.
const CookieName = "datapad_session"

var (
	// ErrInvalidCredentials is returned by [Login] for an unknown username
	// or a wrong password, deliberately without distinguishing the two.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthenticated is returned by [Authenticate] when the request
	// carries no resolvable session: missing cookie, bad signature, unknown
	// or expired session, or a user that no longer exists.
	ErrUnauthenticated = errors.New("not authenticated")
)

// Store is the slice of the storage layer the gate depends on.
type Store interface {
	GetUser(ctx context.Context, userID uint64) (db.User, error)
	GetUserByName(ctx context.Context, name string) (db.User, error)
	CreateSession(ctx context.Context, session db.Session) error
	GetSession(ctx context.Context, sessionID string) (db.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Login verifies the submitted credentials and establishes a session. Lookup
// misses and password mismatches both resolve to [ErrInvalidCredentials];
// storage failures pass through unchanged so callers can tell "wrong
// password" from "database down".
func Login(ctx context.Context, store Store, username, password string) (db.Session, error) {
	var session db.Session

	user, err := store.GetUserByName(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return session, ErrInvalidCredentials
	}
	if err != nil {
		return session, err
	}
	if err = ComparePassword(password, user.PasswordHash); err != nil {
		return session, ErrInvalidCredentials
	}

	now := time.Now()
	session = db.Session{
		ID:        NewSessionID(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err = store.CreateSession(ctx, session); err != nil {
		return db.Session{}, err
	}
	return session, nil
}

// Authenticate resolves the logged in user from req's session cookie. A
// missing, unverifiable, unknown, or expired token yields
// [ErrUnauthenticated]; so does a session whose user has since been deleted.
// Expired sessions are removed as a side effect.
func Authenticate(ctx context.Context, req *http.Request, secret []byte, store Store) (db.User, error) {
	var user db.User

	cookie, err := req.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return user, ErrUnauthenticated
	}
	sessionID, err := VerifyToken(cookie.Value, secret)
	if err != nil {
		return user, ErrUnauthenticated
	}

	session, err := store.GetSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return user, ErrUnauthenticated
	}
	if err != nil {
		return user, err
	}
	if time.Now().After(session.ExpiresAt) {
		_ = store.DeleteSession(ctx, sessionID)
		return user, ErrUnauthenticated
	}

	user, err = store.GetUser(ctx, session.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return db.User{}, ErrUnauthenticated
	}
	return user, err
}

// Logout destroys the session named by req's cookie. It is idempotent: a
// missing cookie, an unverifiable token, or an already-absent session all
// succeed silently.
func Logout(ctx context.Context, req *http.Request, secret []byte, store Store) error {
	cookie, err := req.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sessionID, err := VerifyToken(cookie.Value, secret)
	if err != nil {
		return nil
	}
	return store.DeleteSession(ctx, sessionID)
}

// NewSessionCookie issues the session cookie carrying a signed token.
func NewSessionCookie(token string, expiresAt time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt) / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// ClearSessionCookie removes the session cookie from the client.
func ClearSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

// unexported, collision-proof context key
type userContextKey struct{}

// GetAuthenticatedUser returns the user information for the authenticated
// user. Returns a zero-value User if the context has no authenticated user
// (should only happen if middleware is misconfigured).
func GetAuthenticatedUser(ctx context.Context) db.User {
	if user, ok := ctx.Value(userContextKey{}).(db.User); ok {
		return user
	}
	return db.User{}
}

// SetAuthenticatedUser sets the user information for an authenticated user.
// The session middleware injects this automatically; this function is
// exported as a convenience for testing.
func SetAuthenticatedUser(ctx context.Context, user db.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

package sec

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datapad-dev/datapad/internal/storage"
	"github.com/datapad-dev/datapad/internal/storage/db"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// fakeStore is an in-memory Store for gate tests.
type fakeStore struct {
	users    map[string]db.User
	sessions map[string]db.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]db.User),
		sessions: make(map[string]db.Session),
	}
}

func (f *fakeStore) GetUser(_ context.Context, userID uint64) (db.User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return db.User{}, storage.ErrNotFound
}

func (f *fakeStore) GetUserByName(_ context.Context, name string) (db.User, error) {
	if u, ok := f.users[name]; ok {
		return u, nil
	}
	return db.User{}, storage.ErrNotFound
}

func (f *fakeStore) CreateSession(_ context.Context, session db.Session) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, sessionID string) (db.Session, error) {
	if s, ok := f.sessions[sessionID]; ok {
		return s, nil
	}
	return db.Session{}, storage.ErrNotFound
}

func (f *fakeStore) DeleteSession(_ context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

func addUser(t *testing.T, store *fakeStore, name, password string) db.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	user := db.User{ID: uint64(len(store.users) + 1), Name: name, PasswordHash: hash}
	store.users[name] = user
	return user
}

func requestWithToken(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/data", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}
	return req
}

func TestLogin(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	user := addUser(t, store, "alice", "correcthorse")

	t.Run("valid credentials establish a session", func(t *testing.T) {
		session, err := Login(t.Context(), store, "alice", "correcthorse")
		require.NoError(t, err)
		assert.Equal(t, user.ID, session.UserID)
		assert.NotEmpty(t, session.ID)
		assert.WithinDuration(t, time.Now().Add(SessionTTL), session.ExpiresAt, time.Minute)

		stored, err := store.GetSession(t.Context(), session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.UserID, stored.UserID)
	})

	t.Run("wrong password and unknown user fail identically", func(t *testing.T) {
		_, err1 := Login(t.Context(), store, "alice", "wrongpassword")
		_, err2 := Login(t.Context(), store, "nobody", "correcthorse")
		require.ErrorIs(t, err1, ErrInvalidCredentials)
		require.ErrorIs(t, err2, ErrInvalidCredentials)
		assert.Equal(t, err1.Error(), err2.Error())
	})

	t.Run("failed login creates no session", func(t *testing.T) {
		before := len(store.sessions)
		_, err := Login(t.Context(), store, "alice", "wrongpassword")
		require.Error(t, err)
		assert.Len(t, store.sessions, before)
	})
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	user := addUser(t, store, "bob", "hunter2hunter2")

	login := func(t *testing.T) db.Session {
		t.Helper()
		session, err := Login(t.Context(), store, "bob", "hunter2hunter2")
		require.NoError(t, err)
		return session
	}

	t.Run("valid session resolves to the user", func(t *testing.T) {
		session := login(t)
		req := requestWithToken(SignToken(session.ID, testSecret))
		got, err := Authenticate(t.Context(), req, testSecret, store)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "bob", got.Name)
	})

	t.Run("missing cookie", func(t *testing.T) {
		_, err := Authenticate(t.Context(), requestWithToken(""), testSecret, store)
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("unsigned session id", func(t *testing.T) {
		session := login(t)
		_, err := Authenticate(t.Context(), requestWithToken(session.ID), testSecret, store)
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("signed but unknown session", func(t *testing.T) {
		req := requestWithToken(SignToken(NewSessionID(), testSecret))
		_, err := Authenticate(t.Context(), req, testSecret, store)
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("expired session is rejected and removed", func(t *testing.T) {
		session := login(t)
		expired := store.sessions[session.ID]
		expired.ExpiresAt = time.Now().Add(-time.Minute)
		store.sessions[session.ID] = expired

		req := requestWithToken(SignToken(session.ID, testSecret))
		_, err := Authenticate(t.Context(), req, testSecret, store)
		require.ErrorIs(t, err, ErrUnauthenticated)

		_, err = store.GetSession(t.Context(), session.ID)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("session for a deleted user", func(t *testing.T) {
		ghost := addUser(t, store, "ghost", "boo-boo-boo")
		session, err := Login(t.Context(), store, "ghost", "boo-boo-boo")
		require.NoError(t, err)
		delete(store.users, ghost.Name)

		req := requestWithToken(SignToken(session.ID, testSecret))
		_, err = Authenticate(t.Context(), req, testSecret, store)
		require.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	addUser(t, store, "carol", "letmeinplease")

	session, err := Login(t.Context(), store, "carol", "letmeinplease")
	require.NoError(t, err)
	token := SignToken(session.ID, testSecret)

	require.NoError(t, Logout(t.Context(), requestWithToken(token), testSecret, store))
	_, err = store.GetSession(t.Context(), session.ID)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// replaying the old token no longer authenticates
	_, err = Authenticate(t.Context(), requestWithToken(token), testSecret, store)
	require.ErrorIs(t, err, ErrUnauthenticated)

	// idempotent: absent session, bad token, and missing cookie all succeed
	require.NoError(t, Logout(t.Context(), requestWithToken(token), testSecret, store))
	require.NoError(t, Logout(t.Context(), requestWithToken("garbage"), testSecret, store))
	require.NoError(t, Logout(t.Context(), requestWithToken(""), testSecret, store))
}

func TestAuthenticatedUserContext(t *testing.T) {
	t.Parallel()

	assert.Zero(t, GetAuthenticatedUser(t.Context()))

	user := db.User{ID: 7, Name: "dave"}
	ctx := SetAuthenticatedUser(t.Context(), user)
	assert.Equal(t, user, GetAuthenticatedUser(ctx))
}

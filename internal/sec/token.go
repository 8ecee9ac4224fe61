package sec

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that are malformed or whose
// signature does not verify against the configured secret.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionID generates a new opaque session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// SignToken binds a session ID to the secret, producing the value carried in
// the session cookie: "<id>.<base64url(HMAC-SHA256(id, secret))>". Only the
// bare ID is stored server-side.
func SignToken(sessionID string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(sessionID))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return sessionID + "." + sig
}

// VerifyToken checks the signature on a cookie value and returns the bare
// session ID it carries. A token minted under a different secret, or one
// tampered with, yields [ErrInvalidToken].
func VerifyToken(token string, secret []byte) (string, error) {
	id, encodedSig, ok := strings.Cut(token, ".")
	if !ok || id == "" {
		return "", ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return "", ErrInvalidToken
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(id))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrInvalidToken
	}
	return id, nil
}

// NewSecret generates a random secret suitable for the session_secret
// configuration option.
func NewSecret() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf) // never fails per crypto/rand docs
	return base64.RawURLEncoding.EncodeToString(buf)
}

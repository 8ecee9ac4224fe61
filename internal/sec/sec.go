// Package sec provides authentication and security primitives for the web
// application.
//
// # Authentication
//
// Authentication is session-based. POST /login validates submitted
// credentials against bcrypt password hashes stored in the credential store
// and establishes a server-side session; the client holds only an opaque,
// HMAC-signed token in an HTTP-only cookie. Every protected request resolves
// that token back to a user via [Authenticate].
//
// # Components
//
//   - [Login], [Authenticate], [Logout]: the session lifecycle gate
//   - [SignToken], [VerifyToken]: HMAC binding of session IDs to the secret
//   - [NewSessionCookie], [ClearSessionCookie]: cookie issuance
//   - [GetAuthenticatedUser], [SetAuthenticatedUser]: context accessors
//   - [HashPassword], [ComparePassword]: bcrypt password hashing utilities
package sec

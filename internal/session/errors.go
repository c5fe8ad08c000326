package session

import "errors"

// Domain errors for the session package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, session.ErrThrottled) {
//	    // reject the login attempt
//	}
var (
	// ErrInvalidCredentials is returned when the username or password is
	// wrong. It never distinguishes which, so callers cannot probe for
	// valid usernames.
	ErrInvalidCredentials = errors.New("session: invalid credentials")

	// ErrThrottled is returned when a login attempt is rejected by the
	// single-admin cooldown, or loses the token swap race to a
	// concurrent login.
	ErrThrottled = errors.New("session: login throttled")

	// ErrCredentialNotFound is returned when the singleton credential
	// row is missing. The store seeds it at startup, so this indicates
	// a corrupt or uninitialised database.
	ErrCredentialNotFound = errors.New("session: credential not found")
)

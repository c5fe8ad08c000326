package session

import "time"

// SentinelToken is the reserved stored-token value meaning "no active
// session". A caller presenting it is anonymous; logout writes it.
const SentinelToken = "000"

// Credential is the singleton administrative credential record.
// Exactly one row exists per deployment, created at first startup with
// the default password and never deleted.
type Credential struct {
	Username     string
	PasswordHash string

	// SessionToken holds the SHA-256 hash of the one live token, or
	// SentinelToken when nobody is logged in. Raw tokens are never
	// stored.
	SessionToken string

	// LastActivity is refreshed on login and on every authenticated
	// request. The login cooldown is measured against it.
	LastActivity time.Time
}

// State classifies a caller from their presented token. It is computed
// fresh on every request; nothing is cached between requests.
type State int

const (
	// StateAnonymous means no token, or the sentinel, was presented.
	StateAnonymous State = iota

	// StateStale means a non-sentinel token was presented but does not
	// match the stored token. Treated as not logged in, logged
	// separately for audit.
	StateStale

	// StateAuthenticated means the presented token matches the one
	// live session token.
	StateAuthenticated
)

// String returns the classification name for logs.
func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateStale:
		return "stale"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

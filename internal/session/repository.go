package session

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Repository defines persistence operations for the singleton
// credential. Every mutating operation is atomic per call.
type Repository interface {
	// Get returns the credential row.
	Get(ctx context.Context) (*Credential, error)

	// Ensure creates the credential row if absent. An existing row is
	// left untouched so a rotated password survives restarts.
	Ensure(ctx context.Context, username, passwordHash string) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, username, passwordHash string) error

	// CASSessionToken atomically swaps the stored session token only if
	// it still equals expected, refreshing last_activity on success.
	// Returns false when the stored token has moved on, which is how a
	// lost race against a concurrent login is detected.
	CASSessionToken(ctx context.Context, expected, replacement string, now time.Time) (bool, error)

	// Touch refreshes last_activity if tokenHash is the live token.
	Touch(ctx context.Context, tokenHash string, now time.Time) error

	// ClearSession unconditionally writes the sentinel token.
	ClearSession(ctx context.Context) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new credential repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// HashToken computes the SHA-256 hash of a raw token string for storage.
// Raw tokens are never stored — only their hashes. The sentinel passes
// through unhashed so it stays recognisable in the row.
func HashToken(raw string) string {
	if raw == SentinelToken {
		return SentinelToken
	}
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// Get returns the singleton credential row.
func (r *SQLiteRepository) Get(ctx context.Context) (*Credential, error) {
	var c Credential
	var lastActivity string

	err := r.db.QueryRowContext(ctx,
		`SELECT username, password_hash, session_token, last_activity
		 FROM users LIMIT 1`,
	).Scan(&c.Username, &c.PasswordHash, &c.SessionToken, &lastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading credential: %w", err)
	}

	c.LastActivity, _ = time.Parse(time.RFC3339, lastActivity) //nolint:errcheck // format is controlled
	return &c, nil
}

// Ensure creates the credential row if absent.
func (r *SQLiteRepository) Ensure(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (username, password_hash, session_token, last_activity)
		 VALUES (?, ?, ?, ?)`,
		username, passwordHash, SentinelToken,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("seeding credential: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *SQLiteRepository) UpdatePassword(ctx context.Context, username, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ? WHERE username = ?",
		passwordHash, username,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if rows == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// CASSessionToken swaps the session token in a single guarded UPDATE.
// The WHERE clause on the old token is what makes the swap atomic:
// there is no window between reading the old token and writing the new
// one in which a concurrent login can slip through.
func (r *SQLiteRepository) CASSessionToken(ctx context.Context, expected, replacement string, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET session_token = ?, last_activity = ?
		 WHERE session_token = ?`,
		replacement, now.UTC().Format(time.RFC3339), expected,
	)
	if err != nil {
		return false, fmt.Errorf("swapping session token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("swapping session token: %w", err)
	}
	return rows == 1, nil
}

// Touch refreshes last_activity when tokenHash is the live token.
// A stale token matches no row and the call is a no-op.
func (r *SQLiteRepository) Touch(ctx context.Context, tokenHash string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET last_activity = ? WHERE session_token = ?",
		now.UTC().Format(time.RFC3339), tokenHash,
	)
	if err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return nil
}

// ClearSession writes the sentinel token unconditionally. Logout always
// succeeds regardless of which token the caller presented.
func (r *SQLiteRepository) ClearSession(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET session_token = ?", SentinelToken,
	)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

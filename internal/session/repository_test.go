package session

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates a SQLite database with the users schema. A file
// in a temp dir rather than :memory: so concurrent connections share it.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	// Matches the initial schema migration
	schema := `
		CREATE TABLE users (
			username TEXT PRIMARY KEY,
			password_hash TEXT NOT NULL,
			session_token TEXT NOT NULL DEFAULT '000',
			last_activity TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return db
}

// TestEnsure verifies seeding is idempotent and preserves rotation.
func TestEnsure(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Ensure(ctx, "admin", "hash-one"); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	cred, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cred.Username != "admin" || cred.PasswordHash != "hash-one" {
		t.Errorf("Get() = %+v, want seeded admin credential", cred)
	}
	if cred.SessionToken != SentinelToken {
		t.Errorf("SessionToken = %q, want sentinel", cred.SessionToken)
	}

	// Simulate a rotated password, then re-seed: rotation must survive.
	if err := repo.UpdatePassword(ctx, "admin", "hash-two"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}
	if err := repo.Ensure(ctx, "admin", "hash-one"); err != nil {
		t.Fatalf("second Ensure() error = %v", err)
	}

	cred, err = repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cred.PasswordHash != "hash-two" {
		t.Errorf("PasswordHash = %q, want rotated hash-two", cred.PasswordHash)
	}
}

// TestGetMissingRow verifies ErrCredentialNotFound on an empty table.
func TestGetMissingRow(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))

	if _, err := repo.Get(context.Background()); !errors.Is(err, ErrCredentialNotFound) {
		t.Errorf("Get() error = %v, want ErrCredentialNotFound", err)
	}
}

// TestCASSessionToken verifies compare-and-swap semantics.
func TestCASSessionToken(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()
	now := time.Now()

	if err := repo.Ensure(ctx, "admin", "hash"); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	// Swap from the sentinel succeeds.
	ok, err := repo.CASSessionToken(ctx, SentinelToken, "token-a", now)
	if err != nil {
		t.Fatalf("CASSessionToken() error = %v", err)
	}
	if !ok {
		t.Fatal("CASSessionToken() = false, want true from sentinel")
	}

	// Swap against a stale expectation fails.
	ok, err = repo.CASSessionToken(ctx, SentinelToken, "token-b", now)
	if err != nil {
		t.Fatalf("CASSessionToken() error = %v", err)
	}
	if ok {
		t.Error("CASSessionToken() = true, want false for stale expected token")
	}

	// The stored token is still token-a.
	cred, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cred.SessionToken != "token-a" {
		t.Errorf("SessionToken = %q, want token-a", cred.SessionToken)
	}
}

// TestTouch verifies activity refresh matches only the live token.
func TestTouch(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Ensure(ctx, "admin", "hash"); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	past := time.Now().Add(-time.Hour)
	if _, err := repo.CASSessionToken(ctx, SentinelToken, "live-token", past); err != nil {
		t.Fatalf("CASSessionToken() error = %v", err)
	}

	// Touch with a stale token changes nothing.
	if err := repo.Touch(ctx, "stale-token", time.Now()); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	cred, _ := repo.Get(ctx) //nolint:errcheck // checked above
	if time.Since(cred.LastActivity) < 30*time.Minute {
		t.Error("stale Touch() refreshed last_activity")
	}

	// Touch with the live token refreshes.
	if err := repo.Touch(ctx, "live-token", time.Now()); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	cred, _ = repo.Get(ctx) //nolint:errcheck // checked above
	if time.Since(cred.LastActivity) > time.Minute {
		t.Error("live Touch() did not refresh last_activity")
	}
}

// TestClearSession verifies unconditional logout.
func TestClearSession(t *testing.T) {
	repo := NewSQLiteRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Ensure(ctx, "admin", "hash"); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if _, err := repo.CASSessionToken(ctx, SentinelToken, "live-token", time.Now()); err != nil {
		t.Fatalf("CASSessionToken() error = %v", err)
	}

	if err := repo.ClearSession(ctx); err != nil {
		t.Fatalf("ClearSession() error = %v", err)
	}

	cred, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cred.SessionToken != SentinelToken {
		t.Errorf("SessionToken = %q, want sentinel after clear", cred.SessionToken)
	}
}

// TestHashToken verifies hashing and the sentinel pass-through.
func TestHashToken(t *testing.T) {
	if HashToken(SentinelToken) != SentinelToken {
		t.Error("sentinel must pass through unhashed")
	}
	if HashToken("abc") == "abc" {
		t.Error("raw token stored unhashed")
	}
	if HashToken("abc") != HashToken("abc") {
		t.Error("hash not deterministic")
	}
}

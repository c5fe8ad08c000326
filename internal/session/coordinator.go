package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger defines the logging interface used by the Coordinator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MessageLog receives operator-visible audit messages. Append failures
// must never fail the security operation that produced them.
type MessageLog interface {
	Append(ctx context.Context, text string) error
}

// Coordinator enforces the single-admin session model.
//
// At most one session token is live at a time. A new login while a
// session is active succeeds only once the cooldown window has elapsed
// since the admin's last activity; the token swap itself is a
// compare-and-swap in the store, so two logins racing within the same
// instant cannot both win. Nothing is cached between requests — every
// decision re-reads the credential row.
type Coordinator struct {
	repo     Repository
	messages MessageLog
	cooldown time.Duration
	logger   Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewCoordinator creates a session coordinator with the given cooldown
// window. messages may be nil.
func NewCoordinator(repo Repository, messages MessageLog, cooldown time.Duration) *Coordinator {
	return &Coordinator{
		repo:     repo,
		messages: messages,
		cooldown: cooldown,
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetLogger attaches a logger for audit events.
func (c *Coordinator) SetLogger(logger Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Login validates credentials and, if the single-admin invariant
// allows, issues a new session token.
//
// Returns the raw token for the transport layer to set as a cookie.
// ErrInvalidCredentials never reveals whether the username or the
// password was wrong. ErrThrottled covers both an active session inside
// the cooldown window and a lost race against a concurrent login.
func (c *Coordinator) Login(ctx context.Context, username, password string) (string, error) {
	cred, err := c.repo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	if username != cred.Username {
		c.recordFailure(ctx)
		return "", ErrInvalidCredentials
	}
	match, err := VerifyPassword(password, cred.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if !match {
		c.recordFailure(ctx)
		return "", ErrInvalidCredentials
	}

	now := c.now()
	if cred.SessionToken != SentinelToken && now.Sub(cred.LastActivity) < c.cooldown {
		c.logger.Info("login rejected by cooldown", "username", username)
		return "", ErrThrottled
	}

	rawToken := uuid.NewString()
	swapped, err := c.repo.CASSessionToken(ctx, cred.SessionToken, HashToken(rawToken), now)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if !swapped {
		// Lost the race: another login replaced the token after we
		// read it.
		c.logger.Info("login lost token swap race", "username", username)
		return "", ErrThrottled
	}

	c.append(ctx, fmt.Sprintf("%s logged in", username))
	c.logger.Info("login succeeded", "username", username)
	return rawToken, nil
}

// Classify maps the caller-presented token to a session state.
//
// A store failure classifies as stale: a failed read must never grant
// access, so "cannot validate" degrades to "not logged in".
func (c *Coordinator) Classify(ctx context.Context, rawToken string) State {
	if rawToken == "" || rawToken == SentinelToken {
		return StateAnonymous
	}

	cred, err := c.repo.Get(ctx)
	if err != nil {
		c.logger.Warn("classify falling back to not-logged-in", "error", err)
		return StateStale
	}

	if cred.SessionToken != SentinelToken && HashToken(rawToken) == cred.SessionToken {
		return StateAuthenticated
	}
	return StateStale
}

// Touch refreshes the admin's activity window. Called on every
// authenticated request; this is what the login cooldown is measured
// against. A stale token is a no-op.
func (c *Coordinator) Touch(ctx context.Context, rawToken string) error {
	if rawToken == "" || rawToken == SentinelToken {
		return nil
	}
	return c.repo.Touch(ctx, HashToken(rawToken), c.now())
}

// Logout revokes the live session unconditionally. It does not require
// the presented token to match: clients always send their own cookie,
// and writing the sentinel cannot be abused to hijack anything.
func (c *Coordinator) Logout(ctx context.Context) error {
	if err := c.repo.ClearSession(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.append(ctx, "admin logged out")
	c.logger.Info("logout")
	return nil
}

// ChangePassword rotates the admin password after verifying the
// current one. The live session, if any, stays valid.
func (c *Coordinator) ChangePassword(ctx context.Context, current, replacement string) error {
	cred, err := c.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	match, err := VerifyPassword(current, cred.PasswordHash)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !match {
		c.recordFailure(ctx)
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(replacement)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := c.repo.UpdatePassword(ctx, cred.Username, hash); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	c.append(ctx, "admin password changed")
	c.logger.Info("password changed", "username", cred.Username)
	return nil
}

// recordFailure logs a failed credential check without sensitive detail.
func (c *Coordinator) recordFailure(ctx context.Context) {
	c.append(ctx, "invalid password submitted")
	c.logger.Warn("invalid credentials submitted")
}

func (c *Coordinator) append(ctx context.Context, text string) {
	if c.messages == nil {
		return
	}
	if err := c.messages.Append(ctx, text); err != nil {
		c.logger.Warn("message log append failed", "error", err)
	}
}

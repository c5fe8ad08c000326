// Package schedule runs the panel's periodic housekeeping: once an
// hour the current output state is republished and a heartbeat line is
// appended to the message log, so external observers can tell a quiet
// panel from a dead one.
package schedule

import (
	"context"
	"time"

	"github.com/nerrad567/outpost/internal/control"
)

// DefaultInterval is the gap between scheduled runs.
const DefaultInterval = time.Hour

// MessageLog is the subset of the message log the loop appends to.
type MessageLog interface {
	Append(ctx context.Context, text string) error
}

// Logger defines the logging interface used by the Loop.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Loop owns the periodic republish of output state.
type Loop struct {
	resolver *control.Resolver
	notify   control.Notifier
	messages MessageLog
	interval time.Duration
	logger   Logger
}

// New creates a scheduled loop. notify may be nil when no publisher is
// wired; the heartbeat message is still appended.
func New(resolver *control.Resolver, notify control.Notifier, messages MessageLog, interval time.Duration, logger Logger) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		resolver: resolver,
		notify:   notify,
		messages: messages,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled, firing once per interval.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

// tick republishes every output's authoritative value and appends the
// heartbeat. Individual read failures are logged and skipped; one bad
// output must not silence the rest.
func (l *Loop) tick(ctx context.Context) {
	republished := 0
	for _, def := range l.resolver.Registry().Outputs() {
		value, err := l.resolver.Read(ctx, def.Name)
		if err != nil {
			l.logger.Warn("scheduled republish skipped output", "output", def.Name, "error", err)
			continue
		}
		if l.notify != nil {
			l.notify.OutputChanged(def.Name, value)
		}
		republished++
	}

	if err := l.messages.Append(ctx, "hourly scheduled events completed"); err != nil {
		l.logger.Warn("heartbeat message append failed", "error", err)
	}

	l.logger.Debug("scheduled run complete", "outputs", republished)
}

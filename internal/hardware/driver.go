package hardware

import (
	"errors"
	"time"
)

// Domain errors for the hardware package.
var (
	// ErrUnsupported is returned when no physical backend is present.
	// Callers treat it as "degrade to store-only", never as fatal.
	ErrUnsupported = errors.New("hardware: unsupported")

	// ErrLineNotClaimed is returned when a line is driven before being
	// claimed at startup.
	ErrLineNotClaimed = errors.New("hardware: line not claimed")
)

// Event is one observed input line transition.
type Event struct {
	// Name is the configured input name the line belongs to.
	Name string `json:"name"`

	// Line is the GPIO line offset.
	Line int `json:"line"`

	// Value is the electrical state after the transition.
	Value bool `json:"value"`

	// Time is when the transition was observed.
	Time time.Time `json:"time"`
}

// Driver abstracts the GPIO character device. Every call is fallible
// and non-fatal: deployments without hardware run against Null and the
// store stays authoritative.
type Driver interface {
	// ClaimOutput requests a line for output. Called once per
	// hardware-backed output at startup.
	ClaimOutput(line int) error

	// WriteLine drives a claimed output line.
	WriteLine(line int, value bool) error

	// ReadLine reads the current state of a claimed line.
	ReadLine(line int) (bool, error)

	// WatchInput requests a line for input and begins delivering edge
	// events to Events.
	WatchInput(name string, line int, pullUp bool) error

	// Events is the stream of input transitions. Events that arrive
	// while the channel is full are dropped: input watching is
	// informational, never load-bearing.
	Events() <-chan Event

	// Close releases all claimed lines.
	Close() error
}

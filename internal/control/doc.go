// Package control implements the output registry, the persisted output
// state and the resolver that reconciles them with hardware.
//
// An output is a named, typed, persistently stored controllable value,
// optionally backed by a GPIO line. Three sources compete for an
// output's value:
//
//   - live hardware state (readable pins can change outside the panel)
//   - the last value persisted in the store
//   - the configured power-up default
//
// The Resolver arbitrates between them: hardware wins on reads of
// hardware-backed booleans, the store is the value of record for
// everything else, and the power-up policy is applied exactly once at
// process start. Hardware failures never fail a caller; the system
// degrades to store-only mode.
//
// # Key Types
//
//   - Registry: immutable set of output definitions loaded from YAML
//   - Value: tagged variant holding one boolean, integer or text payload
//   - Repository: per-kind SQLite persistence for output rows
//   - Resolver: read/write arbitration and power-up application
//
// Boolean coercion is deliberately lenient: true, "true" and "True" are
// true and anything else is false, without error. This tolerates the
// mix of JSON bools and form strings that panel clients submit.
package control

package control

import (
	"context"
	"fmt"
)

// Logger defines the logging interface used by the Resolver.
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

// Hardware is the shim the Resolver drives. Every call is fallible and
// non-fatal: a missing or faulting backend degrades to store-only mode.
type Hardware interface {
	// ReadLine reads the current electrical state of a GPIO line.
	ReadLine(line int) (bool, error)

	// WriteLine drives a GPIO line.
	WriteLine(line int, value bool) error
}

// Notifier receives output change events for fan-out to connected
// panels and external publishers.
type Notifier interface {
	OutputChanged(name string, value Value)
}

// Resolver computes the authoritative value of each output and applies
// writes consistently to hardware and the store.
//
// The store is always the value of record. Hardware wins only on reads
// of boolean outputs that are backed by a physical line, since a relay
// can be toggled outside the panel's control. All methods re-read
// through the repository on every call; nothing is cached across
// requests.
type Resolver struct {
	registry *Registry
	repo     Repository
	hw       Hardware
	logger   Logger
	notifier Notifier
}

// NewResolver creates a resolver over the given registry and repository.
// hw may be nil for store-only deployments.
func NewResolver(registry *Registry, repo Repository, hw Hardware) *Resolver {
	return &Resolver{
		registry: registry,
		repo:     repo,
		hw:       hw,
		logger:   noopLogger{},
	}
}

// SetLogger attaches a logger for hardware degradation warnings.
func (r *Resolver) SetLogger(logger Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// SetNotifier attaches a change notifier. Pass nil to disable.
func (r *Resolver) SetNotifier(n Notifier) {
	r.notifier = n
}

// Registry returns the resolver's output registry.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Read returns the authoritative value of an output.
//
// For a hardware-backed boolean output the live pin state wins when the
// hardware read succeeds. Everything else, including a failed hardware
// read, falls back to the persisted value.
func (r *Resolver) Read(ctx context.Context, name string) (Value, error) {
	def, ok := r.registry.Lookup(name)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownOutput, name)
	}

	if def.Kind == KindBoolean && def.Hardware != nil && r.hw != nil {
		state, err := r.hw.ReadLine(def.Hardware.Line)
		if err == nil {
			return BoolValue(state), nil
		}
		r.logger.Warn("hardware read failed, using stored value",
			"output", name, "line", def.Hardware.Line, "error", err)
	}

	return r.repo.Read(ctx, name, def.Kind)
}

// Write coerces rawValue to the output's kind and applies it.
//
// Hardware is set first, best-effort: a hardware failure is logged and
// swallowed because the store remains the value of record. The store
// write is the operation that can fail the call.
func (r *Resolver) Write(ctx context.Context, name string, rawValue any) (Value, error) {
	def, ok := r.registry.Lookup(name)
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownOutput, name)
	}

	value, err := Coerce(def.Kind, rawValue)
	if err != nil {
		return Value{}, err
	}

	r.applyHardware(def, value)

	if err := r.repo.Write(ctx, name, value); err != nil {
		return Value{}, err
	}

	if r.notifier != nil {
		r.notifier.OutputChanged(name, value)
	}
	return value, nil
}

// PowerUpSnapshot computes the value every output should hold at
// process start: the power-up default where the policy selects it,
// otherwise the last persisted value.
func (r *Resolver) PowerUpSnapshot(ctx context.Context) (map[string]Value, error) {
	snapshot := make(map[string]Value, r.registry.Len())

	for _, def := range r.registry.Outputs() {
		row, err := r.repo.PowerUp(ctx, def.Name, def.Kind)
		if err != nil {
			return nil, err
		}
		if row.UsePowerUp {
			snapshot[def.Name] = row.PowerUp
		} else {
			snapshot[def.Name] = row.Current
		}
	}

	return snapshot, nil
}

// ApplyPowerUp computes the power-up snapshot and applies it to
// hardware and the store unconditionally. Called exactly once, before
// any request is served.
func (r *Resolver) ApplyPowerUp(ctx context.Context) error {
	snapshot, err := r.PowerUpSnapshot(ctx)
	if err != nil {
		return err
	}

	for _, def := range r.registry.Outputs() {
		value := snapshot[def.Name]
		r.applyHardware(def, value)
		if err := r.repo.Write(ctx, def.Name, value); err != nil {
			return err
		}
	}

	r.logger.Info("power-up values applied", "outputs", len(snapshot))
	return nil
}

// SetPowerUp updates the power-up default and policy flag for an output.
func (r *Resolver) SetPowerUp(ctx context.Context, name string, rawValue any, use bool) error {
	def, ok := r.registry.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOutput, name)
	}

	value, err := Coerce(def.Kind, rawValue)
	if err != nil {
		return err
	}

	return r.repo.SetPowerUp(ctx, name, value, use)
}

// PowerUpConfig returns the stored power-up configuration for an output.
func (r *Resolver) PowerUpConfig(ctx context.Context, name string) (PowerUpRow, error) {
	def, ok := r.registry.Lookup(name)
	if !ok {
		return PowerUpRow{}, fmt.Errorf("%w: %q", ErrUnknownOutput, name)
	}
	return r.repo.PowerUp(ctx, name, def.Kind)
}

// applyHardware drives the physical line for hardware-backed booleans.
// Failures are swallowed; the store stays authoritative.
func (r *Resolver) applyHardware(def Definition, value Value) {
	if def.Kind != KindBoolean || def.Hardware == nil || r.hw == nil {
		return
	}
	if err := r.hw.WriteLine(def.Hardware.Line, value.Bool); err != nil {
		r.logger.Warn("hardware write failed, store remains authoritative",
			"output", def.Name, "line", def.Hardware.Line, "error", err)
	}
}

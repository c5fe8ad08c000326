package control

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PowerUpRow is the persisted power-up configuration for one output.
type PowerUpRow struct {
	Name       string
	Current    Value
	PowerUp    Value
	UsePowerUp bool
}

// Repository defines persistence operations for output state.
// Every mutating operation is atomic per call; the repository never
// exposes a transaction across the resolver boundary.
type Repository interface {
	// Seed creates one row per definition if absent. Existing rows are
	// left untouched so persisted values survive restarts.
	Seed(ctx context.Context, defs []Definition) error

	// Read returns the current persisted value of an output.
	Read(ctx context.Context, name string, kind Kind) (Value, error)

	// Write persists a new current value. The value's kind selects the
	// table; callers must have coerced it first.
	Write(ctx context.Context, name string, value Value) error

	// PowerUp returns the power-up configuration for one output.
	PowerUp(ctx context.Context, name string, kind Kind) (PowerUpRow, error)

	// SetPowerUp updates the power-up default and policy flag.
	SetPowerUp(ctx context.Context, name string, value Value, use bool) error
}

// SQLiteRepository persists output state in per-kind SQLite tables.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new output state repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// tableFor maps a kind to its table. Kinds are validated at registry
// load, so an unknown kind here is a programming error.
func tableFor(kind Kind) (string, error) {
	switch kind {
	case KindBoolean:
		return "boolean_outputs", nil
	case KindInteger:
		return "integer_outputs", nil
	case KindText:
		return "text_outputs", nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidValue, kind)
}

// storedPayload converts a Value to its SQLite column representation.
// Booleans are stored as 0/1 integers.
func storedPayload(v Value) any {
	switch v.Kind {
	case KindBoolean:
		if v.Bool {
			return 1
		}
		return 0
	case KindInteger:
		return v.Int
	case KindText:
		return v.Text
	}
	return nil
}

// scanValue converts a SQLite column back to a typed Value.
func scanValue(kind Kind, raw any) (Value, error) {
	switch kind {
	case KindBoolean:
		n, ok := raw.(int64)
		if !ok {
			return Value{}, fmt.Errorf("%w: boolean column holds %T", ErrInvalidValue, raw)
		}
		return BoolValue(n != 0), nil
	case KindInteger:
		n, ok := raw.(int64)
		if !ok {
			return Value{}, fmt.Errorf("%w: integer column holds %T", ErrInvalidValue, raw)
		}
		return IntValue(n), nil
	case KindText:
		switch s := raw.(type) {
		case string:
			return TextValue(s), nil
		case []byte:
			return TextValue(string(s)), nil
		}
		return Value{}, fmt.Errorf("%w: text column holds %T", ErrInvalidValue, raw)
	}
	return Value{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidValue, kind)
}

// Seed inserts missing rows for every definition. Uses INSERT OR IGNORE
// so rows that already exist keep their persisted values.
func (r *SQLiteRepository) Seed(ctx context.Context, defs []Definition) error {
	for _, def := range defs {
		table, err := tableFor(def.Kind)
		if err != nil {
			return err
		}

		use := 0
		if def.UsePowerUp {
			use = 1
		}

		//nolint:gosec // table name comes from tableFor, not caller input
		query := fmt.Sprintf(
			`INSERT OR IGNORE INTO %s (name, value, powerup_value, use_powerup)
			 VALUES (?, ?, ?, ?)`, table)

		if _, err := r.db.ExecContext(ctx, query,
			def.Name,
			storedPayload(def.Default),
			storedPayload(def.Default),
			use,
		); err != nil {
			return fmt.Errorf("seeding output %q: %w", def.Name, err)
		}
	}
	return nil
}

// Read returns the current persisted value of an output.
func (r *SQLiteRepository) Read(ctx context.Context, name string, kind Kind) (Value, error) {
	table, err := tableFor(kind)
	if err != nil {
		return Value{}, err
	}

	//nolint:gosec // table name comes from tableFor, not caller input
	query := fmt.Sprintf("SELECT value FROM %s WHERE name = ?", table)

	var raw any
	err = r.db.QueryRowContext(ctx, query, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Value{}, fmt.Errorf("%w: %q", ErrUnknownOutput, name)
	}
	if err != nil {
		return Value{}, fmt.Errorf("reading output %q: %w", name, err)
	}

	return scanValue(kind, raw)
}

// Write persists a new current value for an output.
func (r *SQLiteRepository) Write(ctx context.Context, name string, value Value) error {
	table, err := tableFor(value.Kind)
	if err != nil {
		return err
	}

	//nolint:gosec // table name comes from tableFor, not caller input
	query := fmt.Sprintf("UPDATE %s SET value = ? WHERE name = ?", table)

	result, err := r.db.ExecContext(ctx, query, storedPayload(value), name)
	if err != nil {
		return fmt.Errorf("writing output %q: %w", name, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("writing output %q: %w", name, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownOutput, name)
	}
	return nil
}

// PowerUp returns the full power-up configuration row for an output.
func (r *SQLiteRepository) PowerUp(ctx context.Context, name string, kind Kind) (PowerUpRow, error) {
	table, err := tableFor(kind)
	if err != nil {
		return PowerUpRow{}, err
	}

	//nolint:gosec // table name comes from tableFor, not caller input
	query := fmt.Sprintf(
		"SELECT value, powerup_value, use_powerup FROM %s WHERE name = ?", table)

	var rawValue, rawPowerUp any
	var use int
	err = r.db.QueryRowContext(ctx, query, name).Scan(&rawValue, &rawPowerUp, &use)
	if errors.Is(err, sql.ErrNoRows) {
		return PowerUpRow{}, fmt.Errorf("%w: %q", ErrUnknownOutput, name)
	}
	if err != nil {
		return PowerUpRow{}, fmt.Errorf("reading power-up for %q: %w", name, err)
	}

	current, err := scanValue(kind, rawValue)
	if err != nil {
		return PowerUpRow{}, err
	}
	powerUp, err := scanValue(kind, rawPowerUp)
	if err != nil {
		return PowerUpRow{}, err
	}

	return PowerUpRow{
		Name:       name,
		Current:    current,
		PowerUp:    powerUp,
		UsePowerUp: use != 0,
	}, nil
}

// SetPowerUp updates the power-up default value and policy flag.
func (r *SQLiteRepository) SetPowerUp(ctx context.Context, name string, value Value, use bool) error {
	table, err := tableFor(value.Kind)
	if err != nil {
		return err
	}

	useInt := 0
	if use {
		useInt = 1
	}

	//nolint:gosec // table name comes from tableFor, not caller input
	query := fmt.Sprintf(
		"UPDATE %s SET powerup_value = ?, use_powerup = ? WHERE name = ?", table)

	result, err := r.db.ExecContext(ctx, query, storedPayload(value), useInt, name)
	if err != nil {
		return fmt.Errorf("updating power-up for %q: %w", name, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating power-up for %q: %w", name, err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownOutput, name)
	}
	return nil
}

// Package msglog provides the bounded operational message log.
//
// The log is a flat audit trail: no levels, no filtering. Capacity is
// enforced inside the database by a trigger on insert, so every writer
// gets the cap and eviction is atomic with the append.
package msglog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Capacity is the maximum number of retained messages. Inserting
// beyond it silently evicts the oldest.
const Capacity = 50

// Message is one operator-visible log entry.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Log defines the message log operations.
type Log interface {
	Append(ctx context.Context, text string) error
	All(ctx context.Context) ([]Message, error)
}

// SQLiteLog implements Log over the messages table.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLiteLog creates a new message log.
func NewSQLiteLog(db *sql.DB) *SQLiteLog {
	return &SQLiteLog{db: db}
}

// Append inserts a message. The insert trigger trims the table to
// Capacity in the same statement, so append and eviction are one unit
// of work.
func (l *SQLiteLog) Append(ctx context.Context, text string) error {
	_, err := l.db.ExecContext(ctx,
		"INSERT INTO messages (message, created_at) VALUES (?, ?)",
		text, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// All returns every retained message, newest first.
func (l *SQLiteLog) All(ctx context.Context) ([]Message, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT id, message, created_at FROM messages ORDER BY id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var createdAt string
		if err := rows.Scan(&m.ID, &m.Text, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message row: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}
	return messages, nil
}

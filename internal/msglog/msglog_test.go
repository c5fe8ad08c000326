package msglog

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the messages
// schema including the capacity trigger.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	// Matches the initial schema migration
	schema := `
		CREATE TABLE messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE TRIGGER messages_cap AFTER INSERT ON messages
		BEGIN
			DELETE FROM messages WHERE id <= (
				SELECT id FROM messages ORDER BY id DESC LIMIT 1 OFFSET 50
			);
		END;
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	return db
}

// TestAppendAndAll verifies ordering: newest first.
func TestAppendAndAll(t *testing.T) {
	log := NewSQLiteLog(setupTestDB(t))
	ctx := context.Background()

	for _, text := range []string{"first", "second", "third"} {
		if err := log.Append(ctx, text); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	messages, err := log.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}

	if len(messages) != 3 {
		t.Fatalf("len = %d, want 3", len(messages))
	}
	if messages[0].Text != "third" || messages[2].Text != "first" {
		t.Errorf("order = [%s ... %s], want newest first", messages[0].Text, messages[2].Text)
	}
}

// TestCapacity verifies the log never exceeds Capacity and evicts the
// oldest entry silently.
func TestCapacity(t *testing.T) {
	log := NewSQLiteLog(setupTestDB(t))
	ctx := context.Background()

	for i := 1; i <= Capacity+1; i++ {
		if err := log.Append(ctx, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	messages, err := log.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}

	if len(messages) != Capacity {
		t.Fatalf("len = %d, want exactly %d", len(messages), Capacity)
	}

	for _, m := range messages {
		if m.Text == "message 1" {
			t.Error("oldest message still present, want evicted")
		}
	}
	if messages[0].Text != fmt.Sprintf("message %d", Capacity+1) {
		t.Errorf("newest = %q, want message %d", messages[0].Text, Capacity+1)
	}
}

// TestEmptyLog verifies All on an empty table.
func TestEmptyLog(t *testing.T) {
	log := NewSQLiteLog(setupTestDB(t))

	messages, err := log.All(context.Background())
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(messages) != 0 {
		t.Errorf("len = %d, want 0", len(messages))
	}
}

// TestCapacityWithIDGaps verifies the cap holds exactly when the id
// sequence has holes. AUTOINCREMENT ids skip values after a rolled-back
// insert, so the trigger must count rows, not do id arithmetic.
func TestCapacityWithIDGaps(t *testing.T) {
	db := setupTestDB(t)
	log := NewSQLiteLog(db)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := log.Append(ctx, fmt.Sprintf("early %d", i)); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	// Burn a stretch of ids without keeping the rows, leaving a gap.
	if _, err := db.Exec(`UPDATE sqlite_sequence SET seq = seq + 1000 WHERE name = 'messages'`); err != nil {
		t.Fatalf("advancing id sequence: %v", err)
	}

	// 5 early + 46 late = 51 inserts: exactly one eviction is due.
	for i := 1; i <= Capacity-4; i++ {
		if err := log.Append(ctx, fmt.Sprintf("late %d", i)); err != nil {
			t.Fatalf("Append(late %d) error = %v", i, err)
		}
	}

	messages, err := log.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(messages) != Capacity {
		t.Fatalf("len = %d, want exactly %d across the id gap", len(messages), Capacity)
	}
	if messages[len(messages)-1].Text != "early 2" {
		t.Errorf("oldest = %q, want early 2 (only early 1 evicted)", messages[len(messages)-1].Text)
	}
}

// Package store persists a call log to PostgreSQL: one row per session and
// one per completed turn. Writes run in background goroutines with errors
// logged, not propagated, so persistence never adds latency to a live call.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const writeTimeout = 10 * time.Second

// CallLog records sessions and turns.
type CallLog struct {
	db *sql.DB
}

// Open connects to the call-log database at connStr and applies migrations.
func Open(connStr string) (*CallLog, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("call log open: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("call log ping: %w", err)
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("call log migrate: %w", err)
	}
	return &CallLog{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS call_log_version (version INTEGER NOT NULL)`)
	if err != nil {
		return err
	}

	var current int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), -1) FROM call_log_version`)
	if err = row.Scan(&current); err != nil {
		return err
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	for i := current + 1; i < len(entries); i++ {
		data, readErr := migrationFS.ReadFile("migrations/" + entries[i].Name())
		if readErr != nil {
			return fmt.Errorf("read migration %d: %w", i, readErr)
		}
		if _, execErr := db.Exec(string(data)); execErr != nil {
			return fmt.Errorf("migration %d: %w", i, execErr)
		}
		if _, execErr := db.Exec(`INSERT INTO call_log_version (version) VALUES ($1)`, i); execErr != nil {
			return fmt.Errorf("migration %d record: %w", i, execErr)
		}
	}
	return nil
}

// Close closes the database.
func (l *CallLog) Close() error {
	return l.db.Close()
}

// SessionStarted records a new session in the background.
func (l *CallLog) SessionStarted(sessionID, assistantID, transport string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		_, err := l.db.ExecContext(ctx,
			`INSERT INTO call_sessions (id, assistant_id, transport) VALUES ($1, $2, $3)`,
			sessionID, assistantID, transport)
		if err != nil {
			slog.Error("call log session insert", "session_id", sessionID, "error", err)
		}
	}()
}

// TurnCompleted records one finished turn in the background.
func (l *CallLog) TurnCompleted(sessionID string, seq int, userText, replyText string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		_, err := l.db.ExecContext(ctx,
			`INSERT INTO call_turns (session_id, seq, user_text, reply_text) VALUES ($1, $2, $3, $4)`,
			sessionID, seq, userText, replyText)
		if err != nil {
			slog.Error("call log turn insert", "session_id", sessionID, "error", err)
		}
	}()
}

// SessionEnded stamps the session's end time in the background.
func (l *CallLog) SessionEnded(sessionID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		_, err := l.db.ExecContext(ctx,
			`UPDATE call_sessions SET ended_at = now() WHERE id = $1`, sessionID)
		if err != nil {
			slog.Error("call log session end", "session_id", sessionID, "error", err)
		}
	}()
}

package assistant

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// PGStore resolves assistants from PostgreSQL.
type PGStore struct {
	db *sql.DB
}

// Open connects to the assistant database at connStr and applies migrations.
func Open(connStr string) (*PGStore, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("assistant store open: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("assistant store ping: %w", err)
	}
	if err = migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("assistant store migrate: %w", err)
	}
	return &PGStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`)
	if err != nil {
		return err
	}

	var current int
	row := db.QueryRow(`SELECT COALESCE(MAX(version), -1) FROM schema_version`)
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
		if _, execErr := db.Exec(`INSERT INTO schema_version (version) VALUES ($1)`, i); execErr != nil {
			return fmt.Errorf("migration %d record: %w", i, execErr)
		}
	}
	return nil
}

// Close closes the database.
func (s *PGStore) Close() error {
	return s.db.Close()
}

// Resolve looks up one assistant by id.
func (s *PGStore) Resolve(ctx context.Context, id string) (Assistant, error) {
	var a Assistant
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, system_prompt, greeting, voice, collection FROM assistants WHERE id = $1`, id)
	err := row.Scan(&a.ID, &a.Name, &a.SystemPrompt, &a.Greeting, &a.Voice, &a.Collection)
	if err == sql.ErrNoRows {
		return Assistant{}, ErrNotFound
	}
	if err != nil {
		return Assistant{}, fmt.Errorf("resolve assistant %q: %w", id, err)
	}
	return a, nil
}

// List returns all assistants ordered by id.
func (s *PGStore) List(ctx context.Context) ([]Assistant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, system_prompt, greeting, voice, collection FROM assistants ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list assistants: %w", err)
	}
	defer rows.Close()

	var out []Assistant
	for rows.Next() {
		var a Assistant
		if err := rows.Scan(&a.ID, &a.Name, &a.SystemPrompt, &a.Greeting, &a.Voice, &a.Collection); err != nil {
			return nil, fmt.Errorf("list assistants: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list assistants: %w", err)
	}
	return out, nil
}

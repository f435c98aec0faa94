package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mercator-hq/creditpilot/pkg/pid"
)

// stateKey identifies the single controller state row. The controller
// manages exactly one percentage split, so the table never grows past one
// row; the key column exists to make the upsert explicit.
const stateKey = "controller"

// SQLiteBackend persists controller state in a SQLite database.
//
// It uses WAL mode with a busy timeout so a slow concurrent reader (for
// example the history CLI inspecting the same file) cannot fail a save.
type SQLiteBackend struct {
	db     *sql.DB
	dbPath string
	logger *slog.Logger
	now    func() time.Time

	saveStmt *sql.Stmt
	loadStmt *sql.Stmt
}

// NewSQLiteBackend opens (creating if necessary) a SQLite state database
// at dbPath.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("state db path cannot be empty")
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	b := &SQLiteBackend{
		db:     db,
		dbPath: dbPath,
		logger: slog.Default().With("component", "state.sqlite"),
		now:    time.Now,
	}

	if err := b.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize state schema: %w", err)
	}
	if err := b.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare state statements: %w", err)
	}

	return b, nil
}

func (b *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS controller_state (
		key TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := b.db.Exec(schema)
	return err
}

func (b *SQLiteBackend) prepareStatements() error {
	var err error

	b.saveStmt, err = b.db.Prepare(`
		INSERT INTO controller_state (key, state, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			state = excluded.state,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	b.loadStmt, err = b.db.Prepare(`
		SELECT state FROM controller_state WHERE key = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	return nil
}

// Load retrieves the persisted state. A missing row yields the default
// state; an undecodable row is logged as corrupt and reset to the default.
func (b *SQLiteBackend) Load(ctx context.Context) (pid.State, error) {
	var raw string
	err := b.loadStmt.QueryRowContext(ctx, stateKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		b.logger.Info("no previous state found, starting fresh", "path", b.dbPath)
		return DefaultState(b.now()), nil
	}
	if err != nil {
		return pid.State{}, fmt.Errorf("failed to load state: %w", err)
	}

	var s pid.State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		cerr := &CorruptionError{Backend: "sqlite", Path: b.dbPath, Cause: err}
		b.logger.Warn("resetting to default state", "error", cerr)
		return DefaultState(b.now()), nil
	}

	return s, nil
}

// Save upserts the controller state row.
func (b *SQLiteBackend) Save(ctx context.Context, s pid.State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if _, err := b.saveStmt.ExecContext(ctx, stateKey, string(raw), b.now().Unix()); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// Reset deletes the controller state row.
func (b *SQLiteBackend) Reset(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM controller_state WHERE key = ?`, stateKey)
	return err
}

// Close closes the prepared statements and the database.
func (b *SQLiteBackend) Close() error {
	if b.saveStmt != nil {
		b.saveStmt.Close()
	}
	if b.loadStmt != nil {
		b.loadStmt.Close()
	}
	return b.db.Close()
}

package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/mercator-hq/creditpilot/pkg/optimizer"
)

// Record is one persisted decision.
type Record struct {
	ID                string
	Timestamp         time.Time
	CurrentMonthSpend float64
	IdealSpend        float64
	DailySpendRate    float64
	TargetDailyRate   float64
	SpendError        float64
	BasePercentage    float64
	P                 float64
	I                 float64
	D                 float64
	RawPercentage     float64
	FinalPercentage   float64
	Overridden        bool
}

// QueryFilter bounds a history query. Zero values mean unbounded.
type QueryFilter struct {
	Since time.Time
	Until time.Time
	Limit int
}

// Store persists decision records in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	insertStmt *sql.Stmt
}

// NewStore opens (creating if necessary) the history database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("history db path cannot be empty")
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		logger: slog.Default().With("component", "history"),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	s.insertStmt, err = db.Prepare(`
		INSERT INTO decisions (
			id, timestamp, current_month_spend, ideal_spend, daily_spend_rate,
			target_daily_rate, spend_error, base_percentage, p, i, d,
			raw_percentage, final_percentage, overridden
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		current_month_spend REAL NOT NULL,
		ideal_spend REAL NOT NULL,
		daily_spend_rate REAL NOT NULL,
		target_daily_rate REAL NOT NULL,
		spend_error REAL NOT NULL,
		base_percentage REAL NOT NULL,
		p REAL NOT NULL,
		i REAL NOT NULL,
		d REAL NOT NULL,
		raw_percentage REAL NOT NULL,
		final_percentage REAL NOT NULL,
		overridden INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_decisions_timestamp ON decisions(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends one decision to the trail. Implements
// optimizer.DecisionRecorder.
func (s *Store) Record(ctx context.Context, d *optimizer.Decision) error {
	overridden := 0
	if d.Overridden {
		overridden = 1
	}

	_, err := s.insertStmt.ExecContext(ctx,
		d.CycleID,
		d.Timestamp.UnixNano(),
		d.Snapshot.CurrentMonthSpend,
		d.IdealSpend,
		d.Snapshot.DailySpendRate,
		d.TargetDailyRate,
		d.SpendError,
		d.BasePercentage,
		d.Components.P,
		d.Components.I,
		d.Components.D,
		d.RawPercentage,
		d.FinalPercentage,
		overridden,
	)
	if err != nil {
		return fmt.Errorf("failed to insert decision record: %w", err)
	}
	return nil
}

// Query returns records matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]*Record, error) {
	q := `
		SELECT id, timestamp, current_month_spend, ideal_spend, daily_spend_rate,
			target_daily_rate, spend_error, base_percentage, p, i, d,
			raw_percentage, final_percentage, overridden
		FROM decisions
		WHERE 1=1
	`
	args := []any{}

	if !filter.Since.IsZero() {
		q += " AND timestamp >= ?"
		args = append(args, filter.Since.UnixNano())
	}
	if !filter.Until.IsZero() {
		q += " AND timestamp <= ?"
		args = append(args, filter.Until.UnixNano())
	}
	q += " ORDER BY timestamp DESC"
	if filter.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var r Record
		var ts int64
		var overridden int
		if err := rows.Scan(
			&r.ID, &ts, &r.CurrentMonthSpend, &r.IdealSpend, &r.DailySpendRate,
			&r.TargetDailyRate, &r.SpendError, &r.BasePercentage, &r.P, &r.I, &r.D,
			&r.RawPercentage, &r.FinalPercentage, &overridden,
		); err != nil {
			return nil, fmt.Errorf("failed to scan decision record: %w", err)
		}
		r.Timestamp = time.Unix(0, ts)
		r.Overridden = overridden != 0
		records = append(records, &r)
	}
	return records, rows.Err()
}

// Latest returns the n most recent records, newest first.
func (s *Store) Latest(ctx context.Context, n int) ([]*Record, error) {
	return s.Query(ctx, QueryFilter{Limit: n})
}

// Prune removes records older than the cutoff, returning the count deleted.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM decisions WHERE timestamp < ?`, olderThan.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to prune decisions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Close closes the store.
func (s *Store) Close() error {
	if s.insertStmt != nil {
		s.insertStmt.Close()
	}
	return s.db.Close()
}

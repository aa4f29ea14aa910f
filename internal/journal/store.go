package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"zipseal/internal/batch"
)

// Run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// Run is one recorded batch pass.
type Run struct {
	ID         string
	Mode       string
	Dir        string
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Tagged     int
	Processed  int
	Pending    int
	Failed     int
}

// Event is the decision recorded for one archive within a run.
type Event struct {
	ID         int64
	RunID      string
	Archive    string
	Decision   string
	ProbeState string
	Detail     string
	RecordedAt time.Time
}

// Store persists run history in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ batch.Recorder = (*Store)(nil)

// Open initializes or connects to the journal database and applies
// migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("journal path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts a running entry for summary.
func (s *Store) BeginRun(ctx context.Context, summary batch.Summary) error {
	started := summary.StartedAt
	if started.IsZero() {
		started = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, mode, dir, status, started_at, total)
         VALUES (?, ?, ?, ?, ?, ?)`,
		summary.RunID,
		string(summary.Mode),
		summary.Dir,
		StatusRunning,
		formatTime(started),
		summary.Total,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordOutcome appends the decision for one archive.
func (s *Store) RecordOutcome(ctx context.Context, runID string, outcome batch.Outcome) error {
	var state any
	if outcome.Probed() {
		state = outcome.State.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO archive_events (run_id, archive, decision, probe_state, detail, recorded_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		runID,
		outcome.Archive,
		string(outcome.Decision),
		state,
		nullableString(outcome.Detail),
		formatTime(s.now()),
	)
	if err != nil {
		return fmt.Errorf("insert archive event: %w", err)
	}
	return nil
}

// FinishRun stores the final counts and status of a run. Cancellation and
// other errors are kept on the row.
func (s *Store) FinishRun(ctx context.Context, summary batch.Summary, runErr error) error {
	status := StatusCompleted
	switch {
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		status = StatusCancelled
	case runErr != nil:
		status = StatusFailed
	}
	var message any
	if runErr != nil {
		message = runErr.Error()
	}
	finished := summary.FinishedAt
	if finished.IsZero() {
		finished = s.now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs
         SET status = ?, error_message = ?, finished_at = ?,
             total = ?, tagged = ?, processed = ?, pending = ?, failed = ?
         WHERE id = ?`,
		status,
		message,
		formatTime(finished),
		summary.Total,
		summary.Tagged,
		summary.Processed,
		summary.Pending,
		summary.Failed,
		summary.RunID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update run: run %s not found", summary.RunID)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun fetches a run by id. A missing run returns nil without error.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// RunEvents returns the archive decisions of a run in the order recorded.
func (s *Store) RunEvents(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, archive, decision, probe_state, detail, recorded_at
         FROM archive_events WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query archive events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			evt        Event
			probeState sql.NullString
			detail     sql.NullString
			recorded   string
		)
		if err := rows.Scan(&evt.ID, &evt.RunID, &evt.Archive, &evt.Decision, &probeState, &detail, &recorded); err != nil {
			return nil, fmt.Errorf("scan archive event: %w", err)
		}
		evt.ProbeState = probeState.String
		evt.Detail = detail.String
		evt.RecordedAt = parseTime(recorded)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archive events: %w", err)
	}
	return events, nil
}

const runColumns = `id, mode, dir, status, error_message, started_at, finished_at,
    total, tagged, processed, pending, failed`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run      Run
		message  sql.NullString
		started  string
		finished sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Mode, &run.Dir, &run.Status, &message, &started, &finished,
		&run.Total, &run.Tagged, &run.Processed, &run.Pending, &run.Failed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Error = message.String
	run.StartedAt = parseTime(started)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

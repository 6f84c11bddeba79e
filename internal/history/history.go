package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/amspoke/carelink-downloader/internal/model"
)

// FileName is the name of the database file inside its directory.
const FileName = "history.db"

// DefaultListLimit is the number of runs ListRuns returns for a
// non-positive limit.
const DefaultListLimit = 20

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// DB stores run summaries.
type DB struct {
	db     *sql.DB
	dbPath string
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if they
	// don't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dir.
// If CreateIfNotExists is false and the database doesn't exist, an error
// wrapping os.ErrNotExist is returned.
func Open(ctx context.Context, dir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dir, FileName)

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?mode=rwc"
	} else if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("history database %s: %w", dbPath, err)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &DB{
		db:     db,
		dbPath: dbPath,
	}

	pragmas := []string{"PRAGMA foreign_keys=ON"}
	if opts.EnableWAL {
		pragmas = append(pragmas, "PRAGMA journal_mode=WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	if err := h.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return h, nil
}

// Path returns the path of the database file.
func (h *DB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *DB) Close() error {
	return h.db.Close()
}

func (h *DB) createTables(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		outcome TEXT NOT NULL,
		login_code INTEGER DEFAULT 0,
		login_error TEXT DEFAULT '',
		cycle_count INTEGER DEFAULT 0,
		artifact_count INTEGER DEFAULT 0,
		failure_count INTEGER DEFAULT 0,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS artifacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		cycle INTEGER NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		location TEXT NOT NULL,
		size INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id);
	`
	_, err := h.db.ExecContext(ctx, schema)
	return err
}

// SaveRun stores a finished run and its artifacts in one transaction.
// Saving a run with an existing ID replaces it.
func (h *DB) SaveRun(ctx context.Context, run *model.RunSummary) (err error) {
	if run == nil || run.ID == "" {
		return errors.New("run has no ID")
	}

	summaryJSON, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to serialize run: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
		return fmt.Errorf("failed to replace run: %w", err)
	}

	meta := run.Metadata()
	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, started_at, finished_at, outcome, login_code, login_error,
		cycle_count, artifact_count, failure_count, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		string(run.Outcome),
		run.LoginCode,
		run.LoginError,
		meta.Cycles,
		meta.Artifacts,
		meta.Failures,
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, cycle := range run.Cycles {
		for _, a := range cycle.Artifacts {
			_, err = tx.ExecContext(ctx, `
			INSERT INTO artifacts (run_id, cycle, kind, name, location, size)
			VALUES (?, ?, ?, ?, ?, ?)
			`, run.ID, cycle.Index, string(a.Kind), a.Name, a.Location, a.Size)
			if err != nil {
				return fmt.Errorf("failed to insert artifact: %w", err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns returns the metadata of the most recent runs, newest first.
// A non-positive limit returns DefaultListLimit runs.
func (h *DB) ListRuns(ctx context.Context, limit int) ([]model.RunMetadata, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := h.db.QueryContext(ctx, `
	SELECT id, started_at, finished_at, outcome, cycle_count, artifact_count, failure_count
	FROM runs
	ORDER BY started_at DESC, id
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.RunMetadata
	for rows.Next() {
		var (
			meta     model.RunMetadata
			started  string
			finished string
			outcome  string
		)
		if err := rows.Scan(&meta.ID, &started, &finished, &outcome, &meta.Cycles, &meta.Artifacts, &meta.Failures); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		meta.StartedAt = parseTimestamp(started)
		meta.FinishedAt = parseTimestamp(finished)
		meta.Outcome = model.Outcome(outcome)
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

// GetRun returns the stored summary of a run.
// It returns ErrNotFound if the run does not exist.
func (h *DB) GetRun(ctx context.Context, id string) (*model.RunSummary, error) {
	var summaryJSON string
	err := h.db.QueryRowContext(ctx, `SELECT summary_json FROM runs WHERE id = ?`, id).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var run model.RunSummary
	if err := json.Unmarshal([]byte(summaryJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}
	return &run, nil
}

// ArtifactRecord is a stored artifact with the run and cycle that produced it.
type ArtifactRecord struct {
	model.Artifact

	RunID string
	Cycle int
}

// ListArtifacts returns the artifacts of a run in export order.
func (h *DB) ListArtifacts(ctx context.Context, runID string) ([]ArtifactRecord, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT run_id, cycle, kind, name, location, size
	FROM artifacts
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []ArtifactRecord
	for rows.Next() {
		var (
			a    ArtifactRecord
			kind string
		)
		if err := rows.Scan(&a.RunID, &a.Cycle, &kind, &a.Name, &a.Location, &a.Size); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		a.Kind = model.Kind(kind)
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// timestampLayout stores times in UTC so that text ordering matches time
// ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05", // SQLite default datetime format
}

// parseTimestamp parses a stored timestamp, returning the zero time if no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

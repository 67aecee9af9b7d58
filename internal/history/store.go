package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/trafficgen/internal/model"
)

// FileName is the database file name inside the history directory.
const FileName = "history.db"

// ErrNotFound is returned when a database or run does not exist.
var ErrNotFound = errors.New("not found")

// Store is the SQLite run ledger.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the options used when recording runs.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// ReadOnlyOptions returns options for reading an existing ledger; Open
// fails with ErrNotFound instead of creating an empty one.
func ReadOnlyOptions() Options {
	return Options{}
}

// Open opens the ledger in dir.
func Open(dir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database %s: %w", dbPath, ErrNotFound)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		ended_at TEXT NOT NULL,
		egress TEXT NOT NULL DEFAULT '',
		root_urls INTEGER NOT NULL DEFAULT 0,
		sessions INTEGER NOT NULL DEFAULT 0,
		hops INTEGER NOT NULL DEFAULT 0,
		dead_ends INTEGER NOT NULL DEFAULT 0,
		bytes INTEGER NOT NULL DEFAULT 0,
		good_requests INTEGER NOT NULL DEFAULT 0,
		bad_requests INTEGER NOT NULL DEFAULT 0,
		blacklist_added INTEGER NOT NULL DEFAULT 0,
		final_min_wait_ms INTEGER NOT NULL DEFAULT 0,
		final_max_wait_ms INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores run and sets run.ID.
func (s *Store) SaveRun(ctx context.Context, run *model.RunSummary) (int64, error) {
	query := `
	INSERT INTO runs (started_at, ended_at, egress, root_urls, sessions, hops, dead_ends,
		bytes, good_requests, bad_requests, blacklist_added, final_min_wait_ms, final_max_wait_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.EndedAt),
		run.Egress,
		run.RootURLs,
		run.Sessions,
		run.Hops,
		run.DeadEnds,
		run.Bytes,
		run.GoodRequests,
		run.BadRequests,
		run.BlacklistAdded,
		run.FinalMinWait.Milliseconds(),
		run.FinalMaxWait.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	run.ID = id
	return id, nil
}

const selectRun = `
	SELECT id, started_at, ended_at, egress, root_urls, sessions, hops, dead_ends,
		bytes, good_requests, bad_requests, blacklist_added, final_min_wait_ms, final_max_wait_ms
	FROM runs
	`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*model.RunSummary, error) {
	var (
		run              model.RunSummary
		started, ended   string
		minWait, maxWait int64
	)
	err := row.Scan(&run.ID, &started, &ended, &run.Egress, &run.RootURLs, &run.Sessions,
		&run.Hops, &run.DeadEnds, &run.Bytes, &run.GoodRequests, &run.BadRequests,
		&run.BlacklistAdded, &minWait, &maxWait)
	if err != nil {
		return nil, err
	}

	run.StartedAt = parseTimestamp(started)
	run.EndedAt = parseTimestamp(ended)
	run.FinalMinWait = time.Duration(minWait) * time.Millisecond
	run.FinalMaxWait = time.Duration(maxWait) * time.Millisecond
	return &run, nil
}

// GetRun returns the run with the given id, or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id int64) (*model.RunSummary, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx, selectRun+"WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*model.RunSummary, error) {
	query := selectRun + "ORDER BY started_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Totals aggregates every recorded run.
type Totals struct {
	Runs         int64 `json:"runs"`
	Bytes        int64 `json:"bytes"`
	GoodRequests int64 `json:"good_requests"`
	BadRequests  int64 `json:"bad_requests"`
}

// Totals sums all recorded runs.
func (s *Store) Totals(ctx context.Context) (Totals, error) {
	query := `
	SELECT COUNT(*), COALESCE(SUM(bytes), 0), COALESCE(SUM(good_requests), 0), COALESCE(SUM(bad_requests), 0)
	FROM runs
	`

	var t Totals
	if err := s.db.QueryRowContext(ctx, query).Scan(&t.Runs, &t.Bytes, &t.GoodRequests, &t.BadRequests); err != nil {
		return Totals{}, fmt.Errorf("failed to sum runs: %w", err)
	}
	return t, nil
}

// timestampLayout keeps sub-second precision and sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestampFormats are tried in order when reading timestamps back.
var timestampFormats = []string{
	timestampLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time for values in no known format.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

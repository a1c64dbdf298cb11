// Package store persists submitted programs and their outcomes in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	mdwerror "github.com/msto63/calcscript/foundation/core/error"
	"github.com/msto63/calcscript/foundation/script"
)

// Source names the surface a program was submitted through
type Source string

const (
	SourceHTTP      Source = "http"
	SourceWebSocket Source = "websocket"
	SourceGRPC      Source = "grpc"
	SourceCLI       Source = "cli"
	SourceConsole   Source = "console"
)

// Submission is one executed program
type Submission struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	Source       Source        `json:"source"`
	SessionID    string        `json:"session_id,omitempty"`
	Code         string        `json:"code"`
	Success      bool          `json:"success"`
	Output       string        `json:"output"`
	ErrorCode    string        `json:"error_code,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	ErrorLine    int           `json:"error_line,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// NewSubmission builds the record for one run of code. res is nil when the
// run failed with err.
func NewSubmission(source Source, code string, res *script.Result, err error, elapsed time.Duration) *Submission {
	sub := &Submission{
		Source:   source,
		Code:     code,
		Duration: elapsed,
	}
	if err != nil {
		sub.ErrorCode = mdwerror.GetCode(err).String()
		sub.ErrorMessage = script.Describe(err)
		sub.ErrorLine = script.FaultLine(err)
		return sub
	}
	if res != nil {
		sub.Success = true
		sub.Output = res.Output
		sub.SessionID = res.SessionID
		sub.Duration = res.Duration
	}
	return sub
}

// Filter narrows a history query
type Filter struct {
	Source       Source
	FailuresOnly bool
	Since        time.Time
	Limit        int
	Offset       int
}

// Stats summarises the stored history
type Stats struct {
	Total     int64            `json:"total"`
	Failures  int64            `json:"failures"`
	BySource  map[string]int64 `json:"by_source"`
	ByCode    map[string]int64 `json:"by_error_code"`
	LastRunAt time.Time        `json:"last_run_at,omitempty"`
}

// Store defines submission persistence
type Store interface {
	Record(ctx context.Context, sub *Submission) error
	Get(ctx context.Context, id string) (*Submission, error)
	Recent(ctx context.Context, filter Filter) ([]*Submission, error)
	Stats(ctx context.Context) (*Stats, error)
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
	PingContext(ctx context.Context) error
	Close() error
}

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Config holds configuration for the SQLite store
type Config struct {
	Path string
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		Path: "./data/history.db",
	}
}

// NewSQLiteStore opens (or creates) the history database
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, storeError(err, "failed to create directory", "store.NewSQLiteStore")
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, storeError(err, "failed to open database", "store.NewSQLiteStore")
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, storeError(err, "failed to initialize schema", "store.NewSQLiteStore")
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		timestamp DATETIME NOT NULL,
		source TEXT NOT NULL,
		session_id TEXT,
		code TEXT NOT NULL,
		success INTEGER NOT NULL,
		output TEXT NOT NULL DEFAULT '',
		error_code TEXT,
		error_message TEXT,
		error_line INTEGER NOT NULL DEFAULT 0,
		duration_ns INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_timestamp ON submissions(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_submissions_source ON submissions(source);
	CREATE INDEX IF NOT EXISTS idx_submissions_success ON submissions(success);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Record stores a submission, assigning ID and timestamp when missing
func (s *SQLiteStore) Record(ctx context.Context, sub *Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.Timestamp.IsZero() {
		sub.Timestamp = time.Now()
	}
	// stored as text; one zone keeps ordering and range filters correct
	sub.Timestamp = sub.Timestamp.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, timestamp, source, session_id, code, success, output,
			error_code, error_message, error_line, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sub.ID, sub.Timestamp, string(sub.Source), nullString(sub.SessionID), sub.Code, sub.Success,
		sub.Output, nullString(sub.ErrorCode), nullString(sub.ErrorMessage), sub.ErrorLine,
		int64(sub.Duration))
	if err != nil {
		return storeError(err, "failed to insert submission", "store.Record")
	}

	return nil
}

// Get returns one submission by ID
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, source, session_id, code, success, output,
			error_code, error_message, error_line, duration_ns
		FROM submissions WHERE id = ?`, id)

	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, mdwerror.Newf("submission not found: %s", id).
			WithCode(mdwerror.CodeNotFound).
			WithOperation("store.Get")
	}
	if err != nil {
		return nil, storeError(err, "failed to read submission", "store.Get")
	}
	return sub, nil
}

// Recent returns submissions matching filter, newest first
func (s *SQLiteStore) Recent(ctx context.Context, filter Filter) ([]*Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, timestamp, source, session_id, code, success, output,
		error_code, error_message, error_line, duration_ns
		FROM submissions WHERE 1=1`
	var args []interface{}

	if filter.Source != "" {
		query += " AND source = ?"
		args = append(args, string(filter.Source))
	}
	if filter.FailuresOnly {
		query += " AND success = 0"
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC())
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeError(err, "failed to query submissions", "store.Recent")
	}
	defer rows.Close()

	var subs []*Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, storeError(err, "failed to scan submission", "store.Recent")
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "failed to iterate submissions", "store.Recent")
	}

	return subs, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row scanner) (*Submission, error) {
	var sub Submission
	var source string
	var sessionID, errorCode, errorMessage sql.NullString
	var durationNS int64

	if err := row.Scan(&sub.ID, &sub.Timestamp, &source, &sessionID, &sub.Code, &sub.Success,
		&sub.Output, &errorCode, &errorMessage, &sub.ErrorLine, &durationNS); err != nil {
		return nil, err
	}

	sub.Source = Source(source)
	sub.SessionID = sessionID.String
	sub.ErrorCode = errorCode.String
	sub.ErrorMessage = errorMessage.String
	sub.Duration = time.Duration(durationNS)
	return &sub, nil
}

// Stats aggregates the stored history
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{
		BySource: make(map[string]int64),
		ByCode:   make(map[string]int64),
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0) FROM submissions`,
	).Scan(&stats.Total, &stats.Failures); err != nil {
		return nil, storeError(err, "failed to count submissions", "store.Stats")
	}

	if err := s.countBy(ctx, `SELECT source, COUNT(*) FROM submissions GROUP BY source`, stats.BySource); err != nil {
		return nil, err
	}
	if err := s.countBy(ctx, `SELECT error_code, COUNT(*) FROM submissions
		WHERE error_code IS NOT NULL GROUP BY error_code`, stats.ByCode); err != nil {
		return nil, err
	}

	// MAX() loses the column type in SQLite, so read the newest row instead
	var last time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT timestamp FROM submissions ORDER BY timestamp DESC LIMIT 1`).Scan(&last)
	switch {
	case err == nil:
		stats.LastRunAt = last
	case !errors.Is(err, sql.ErrNoRows):
		return nil, storeError(err, "failed to read last submission", "store.Stats")
	}

	return stats, nil
}

func (s *SQLiteStore) countBy(ctx context.Context, query string, into map[string]int64) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return storeError(err, "failed to aggregate submissions", "store.Stats")
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return storeError(err, "failed to scan aggregate", "store.Stats")
		}
		into[key] = count
	}
	return rows.Err()
}

// Prune deletes submissions older than olderThan and returns how many
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, storeError(err, "failed to prune submissions", "store.Prune")
	}
	return result.RowsAffected()
}

// PingContext verifies the database is reachable
func (s *SQLiteStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func storeError(err error, msg, op string) error {
	return mdwerror.Wrap(err, msg).
		WithCode(mdwerror.CodeDatabaseError).
		WithOperation(op)
}

var _ Store = (*SQLiteStore)(nil)

// String formats a submission as one history line
func (s *Submission) String() string {
	status := "ok"
	if !s.Success {
		status = s.ErrorCode
	}
	return fmt.Sprintf("%s  %-9s  %-10s  %s", s.Timestamp.Local().Format("2006-01-02 15:04:05"), s.Source, status, firstLine(s.Code))
}

func firstLine(code string) string {
	for i, r := range code {
		if r == '\n' {
			return code[:i] + " ..."
		}
	}
	return code
}

// Package store persists evaluation outcomes in a local sqlite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"trustgate/internal/runner"
)

// Record is one persisted evaluation outcome.
type Record struct {
	ID        string        `json:"id"`
	ModelURL  string        `json:"model_url"`
	Name      string        `json:"name,omitempty"`
	Status    runner.Status `json:"status"`
	NetScore  *float64      `json:"net_score,omitempty"`
	Report    []byte        `json:"report,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store wraps the sqlite connection and its prepared statements.
type Store struct {
	db       *sql.DB
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// Open creates or opens the database at dataDir and runs migrations.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "trustgate.db")
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{db: db, prepared: make(map[string]*sql.Stmt)}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := s.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("evaluation store initialized", "path", dbPath)
	return s, nil
}

func (s *Store) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			model_url TEXT NOT NULL,
			name TEXT,
			status TEXT NOT NULL,
			net_score REAL,
			report TEXT,
			error TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_model_url ON evaluations(model_url)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at DESC)`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

func (s *Store) initPreparedStatements() error {
	statements := map[string]string{
		"insert_evaluation": `INSERT INTO evaluations (id, model_url, name, status, net_score, report, error, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,

		"get_evaluation": `SELECT id, model_url, name, status, net_score, report, error, created_at
			FROM evaluations WHERE id = ?`,

		"list_evaluations": `SELECT id, model_url, name, status, net_score, report, error, created_at
			FROM evaluations ORDER BY created_at DESC LIMIT ?`,

		"latest_for_model": `SELECT id, model_url, name, status, net_score, report, error, created_at
			FROM evaluations WHERE model_url = ? ORDER BY created_at DESC LIMIT 1`,
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	for name, query := range statements {
		stmt, err := s.db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		s.prepared[name] = stmt
	}
	return nil
}

func (s *Store) stmt(name string) (*sql.Stmt, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	stmt, ok := s.prepared[name]
	if !ok {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}
	return stmt, nil
}

// SaveOutcome persists one batch outcome and returns the record ID.
func (s *Store) SaveOutcome(ctx context.Context, outcome runner.Outcome) (string, error) {
	rec := Record{
		ID:        uuid.NewString(),
		ModelURL:  outcome.Ref.ModelURL,
		Name:      outcome.Ref.Name,
		Status:    outcome.Status,
		Error:     outcome.Error,
		CreatedAt: time.Now().UTC(),
	}
	if outcome.Report != nil {
		score := outcome.Report.NetScore
		rec.NetScore = &score
		payload, err := json.Marshal(outcome.Report)
		if err != nil {
			return "", fmt.Errorf("failed to encode report: %w", err)
		}
		rec.Report = payload
	}

	stmt, err := s.stmt("insert_evaluation")
	if err != nil {
		return "", err
	}
	_, err = stmt.ExecContext(ctx,
		rec.ID, rec.ModelURL, nullable(rec.Name), string(rec.Status),
		rec.NetScore, nullableBytes(rec.Report), nullable(rec.Error), rec.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert evaluation: %w", err)
	}
	return rec.ID, nil
}

// Get fetches one evaluation record by ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	stmt, err := s.stmt("get_evaluation")
	if err != nil {
		return nil, err
	}
	return scanRecord(stmt.QueryRowContext(ctx, id))
}

// LatestForModel fetches the most recent record for a model URL.
func (s *Store) LatestForModel(ctx context.Context, modelURL string) (*Record, error) {
	stmt, err := s.stmt("latest_for_model")
	if err != nil {
		return nil, err
	}
	return scanRecord(stmt.QueryRowContext(ctx, modelURL))
}

// List returns the most recent records, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	stmt, err := s.stmt("list_evaluations")
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// Close closes the prepared statements and the connection.
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for name, stmt := range s.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("failed to close prepared statement", "name", name, "error", err)
		}
	}
	s.prepared = make(map[string]*sql.Stmt)
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec    Record
		name   sql.NullString
		report sql.NullString
		errMsg sql.NullString
		status string
	)
	err := row.Scan(&rec.ID, &rec.ModelURL, &name, &status, &rec.NetScore, &report, &errMsg, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan evaluation: %w", err)
	}
	rec.Status = runner.Status(status)
	rec.Name = name.String
	rec.Error = errMsg.String
	if report.Valid {
		rec.Report = []byte(report.String)
	}
	return &rec, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

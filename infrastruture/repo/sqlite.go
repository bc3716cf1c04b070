package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

var ErrNotInitialized = errors.New("store is not initialized")

// SQLiteRunRepo stores run records in a single SQLite table. Init must be
// called before use.
type SQLiteRunRepo struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteRunRepo creates a SQLiteRunRepo for the database at path.
func NewSQLiteRunRepo(path string) *SQLiteRunRepo {
	return &SQLiteRunRepo{path: path}
}

// Init opens the database and creates the runs table.
func (s *SQLiteRunRepo) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	// Roles in separate processes share the file.
	db, err := sql.Open("sqlite", "file:"+s.path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// SaveMap upserts the world layout of a run.
func (s *SQLiteRunRepo) SaveMap(ctx context.Context, id uuid.UUID, rows []string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, map, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			map = excluded.map,
			updated_at = excluded.updated_at
	`, id.String(), string(payload), time.Now().UTC().UnixNano())
	return err
}

// SaveTrials upserts the successful trials and the failure count of a run.
func (s *SQLiteRunRepo) SaveTrials(ctx context.Context, id uuid.UUID, successes []domain.Trial, failed int) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(successes)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, successful_paths, successful_count, failed_count, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			successful_paths = excluded.successful_paths,
			successful_count = excluded.successful_count,
			failed_count = excluded.failed_count,
			updated_at = excluded.updated_at
	`, id.String(), string(payload), len(successes), failed, time.Now().UTC().UnixNano())
	return err
}

// SaveStatus upserts the final status of a run.
func (s *SQLiteRunRepo) SaveStatus(ctx context.Context, id uuid.UUID, status domain.Status, rounds int) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, status, rounds, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			rounds = excluded.rounds,
			updated_at = excluded.updated_at
	`, id.String(), string(status), rounds, time.Now().UTC().UnixNano())
	return err
}

// ByID retrieves a run by its ID.
// Returns domain.ErrRunNotFound if the run is not found.
func (s *SQLiteRunRepo) ByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	var (
		rows, paths, status sql.NullString
		rounds              int
		successes, failed   int
		updatedAt           int64
	)
	err = db.QueryRowContext(ctx, `
		SELECT map, status, rounds, successful_paths, successful_count, failed_count, updated_at
		FROM runs WHERE id = ?
	`, id.String()).Scan(&rows, &status, &rounds, &paths, &successes, &failed, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}

	run := &domain.Run{
		ID:              id,
		Status:          domain.Status(status.String),
		Rounds:          rounds,
		SuccessfulCount: successes,
		FailedCount:     failed,
		UpdatedAt:       time.Unix(0, updatedAt).UTC(),
	}
	if rows.Valid {
		if err := json.Unmarshal([]byte(rows.String), &run.Map); err != nil {
			return nil, fmt.Errorf("decode map of run %s: %w", id, err)
		}
	}
	if paths.Valid {
		if err := json.Unmarshal([]byte(paths.String), &run.SuccessfulPaths); err != nil {
			return nil, fmt.Errorf("decode trials of run %s: %w", id, err)
		}
	}
	return run, nil
}

// Close releases the database.
func (s *SQLiteRunRepo) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteRunRepo) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			map TEXT,
			status TEXT,
			rounds INTEGER NOT NULL DEFAULT 0,
			successful_paths TEXT,
			successful_count INTEGER NOT NULL DEFAULT 0,
			failed_count INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);
	`)
	return err
}

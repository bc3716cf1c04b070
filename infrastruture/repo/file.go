package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/google/uuid"
)

const (
	mapSection    = "map.json"
	trialsSection = "trials.json"
	statusSection = "status.json"
)

type mapDoc struct {
	Map       []string  `json:"map"`
	UpdatedAt time.Time `json:"updated_at"`
}

type trialsDoc struct {
	SuccessfulPaths []domain.Trial `json:"successful_paths"`
	FailedCount     int            `json:"failed_count"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type statusDoc struct {
	Status    domain.Status `json:"status"`
	Rounds    int           `json:"rounds"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// FileRunRepo keeps every run in its own directory, one JSON file per
// section. Roles running as separate processes each write only their own
// file.
type FileRunRepo struct {
	dir string
	mu  sync.Mutex
}

// NewFileRunRepo creates a FileRunRepo rooted at dir.
func NewFileRunRepo(dir string) (*FileRunRepo, error) {
	if dir == "" {
		return nil, errors.New("results directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating results directory: %w", err)
	}
	return &FileRunRepo{dir: dir}, nil
}

// SaveMap stores the world layout of a run.
func (f *FileRunRepo) SaveMap(_ context.Context, id uuid.UUID, rows []string) error {
	return f.write(id, mapSection, mapDoc{Map: rows, UpdatedAt: time.Now().UTC()})
}

// SaveTrials stores the successful trials and the failure count of a run.
func (f *FileRunRepo) SaveTrials(_ context.Context, id uuid.UUID, successes []domain.Trial, failed int) error {
	return f.write(id, trialsSection, trialsDoc{SuccessfulPaths: successes, FailedCount: failed, UpdatedAt: time.Now().UTC()})
}

// SaveStatus stores the final status of a run.
func (f *FileRunRepo) SaveStatus(_ context.Context, id uuid.UUID, status domain.Status, rounds int) error {
	return f.write(id, statusSection, statusDoc{Status: status, Rounds: rounds, UpdatedAt: time.Now().UTC()})
}

// ByID assembles a run from whichever sections have been written.
func (f *FileRunRepo) ByID(_ context.Context, id uuid.UUID) (*domain.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	run := &domain.Run{ID: id}
	found := false

	var m mapDoc
	if ok, err := f.read(id, mapSection, &m); err != nil {
		return nil, err
	} else if ok {
		found = true
		run.Map = m.Map
		run.UpdatedAt = latest(run.UpdatedAt, m.UpdatedAt)
	}

	var tr trialsDoc
	if ok, err := f.read(id, trialsSection, &tr); err != nil {
		return nil, err
	} else if ok {
		found = true
		run.SuccessfulPaths = tr.SuccessfulPaths
		run.SuccessfulCount = len(tr.SuccessfulPaths)
		run.FailedCount = tr.FailedCount
		run.UpdatedAt = latest(run.UpdatedAt, tr.UpdatedAt)
	}

	var st statusDoc
	if ok, err := f.read(id, statusSection, &st); err != nil {
		return nil, err
	} else if ok {
		found = true
		run.Status = st.Status
		run.Rounds = st.Rounds
		run.UpdatedAt = latest(run.UpdatedAt, st.UpdatedAt)
	}

	if !found {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

func (f *FileRunRepo) write(id uuid.UUID, section string, doc any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Join(f.dir, id.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	// Readers never see a half written section.
	tmp, err := os.CreateTemp(dir, section+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(dir, section))
}

func (f *FileRunRepo) read(id uuid.UUID, section string, doc any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, id.String(), section))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return false, fmt.Errorf("decoding %s of run %s: %w", section, id, err)
	}
	return true, nil
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// Package service records run results from the roles and serves them back
// to the REST API.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"github.com/google/uuid"
)

const defaultTop = 10

var (
	ErrMissingRepo = errors.New("run repository is required")
	ErrNoBoard     = errors.New("run board is not configured")
)

// RunService records the sections of a run written by each role.
type RunService struct {
	repo   i.RunRepo
	board  i.RunBoard
	logger i.Logger
}

// NewRunService creates a RunService. board may be nil, in which case
// rankings are not kept.
func NewRunService(repo i.RunRepo, board i.RunBoard, logger i.Logger) (*RunService, error) {
	if repo == nil {
		return nil, ErrMissingRepo
	}
	if logger == nil {
		logger = i.NopLogger{}
	}
	return &RunService{
		repo:   repo,
		board:  board,
		logger: logger,
	}, nil
}

// RecordWorld stores the layout served by the executor.
func (rs *RunService) RecordWorld(ctx context.Context, id uuid.UUID, rows []string) error {
	if err := rs.repo.SaveMap(ctx, id, rows); err != nil {
		rs.logger.Error(fmt.Sprintf("saving world of run %s: %s", id, err))
		return err
	}
	rs.logger.Info(fmt.Sprintf("world of run %s recorded", id))
	return nil
}

// RecordTrials stores the driver's trials. Only successes are kept in full;
// failures are counted.
func (rs *RunService) RecordTrials(ctx context.Context, id uuid.UUID, trials []domain.Trial) error {
	successes := make([]domain.Trial, 0, len(trials))
	for _, t := range trials {
		if t.Succeeded() {
			successes = append(successes, t)
		}
	}
	failed := len(trials) - len(successes)

	if err := rs.repo.SaveTrials(ctx, id, successes, failed); err != nil {
		rs.logger.Error(fmt.Sprintf("saving trials of run %s: %s", id, err))
		return err
	}
	rs.logger.Info(fmt.Sprintf("run %s: %d successful and %d failed trials recorded", id, len(successes), failed))

	if rs.board == nil {
		return nil
	}
	if err := rs.board.Record(ctx, id, len(successes)); err != nil {
		rs.logger.Warning(fmt.Sprintf("ranking run %s: %s", id, err))
		return err
	}
	return nil
}

// RecordOutcome stores the explorer's final status.
func (rs *RunService) RecordOutcome(ctx context.Context, id uuid.UUID, status domain.Status, rounds int) error {
	if err := rs.repo.SaveStatus(ctx, id, status, rounds); err != nil {
		rs.logger.Error(fmt.Sprintf("saving status of run %s: %s", id, err))
		return err
	}
	rs.logger.Info(fmt.Sprintf("run %s finished with %s after %d rounds", id, status, rounds))
	return nil
}

// Run returns the stored record of a run.
func (rs *RunService) Run(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	return rs.repo.ByID(ctx, id)
}

// Top returns up to n runs with the most successful trials.
func (rs *RunService) Top(ctx context.Context, n int64) ([]domain.RunRank, error) {
	if rs.board == nil {
		return nil, ErrNoBoard
	}
	if n <= 0 {
		n = defaultTop
	}
	return rs.board.Top(ctx, n)
}

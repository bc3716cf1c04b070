package i

import (
	"context"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/google/uuid"
)

// RunRepo defines the persistence operations for run records. Each role
// writes its own part of a run, so every Save is an upsert of one section.
type RunRepo interface {
	// SaveMap stores the world layout the executor serves.
	SaveMap(ctx context.Context, id uuid.UUID, rows []string) error

	// SaveTrials stores the successful trials and the number of failed ones.
	SaveTrials(ctx context.Context, id uuid.UUID, successes []domain.Trial, failed int) error

	// SaveStatus stores the explorer's final status and round count.
	SaveStatus(ctx context.Context, id uuid.UUID, status domain.Status, rounds int) error

	// ByID retrieves a run by its ID.
	// Returns domain.ErrRunNotFound if no section of the run was saved.
	ByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
}

// RunBoard ranks runs by their number of successful trials.
type RunBoard interface {
	Record(ctx context.Context, id uuid.UUID, successes int) error
	Top(ctx context.Context, n int64) ([]domain.RunRank, error)
}

// RunResults is the read side of run recording served over the REST API.
type RunResults interface {
	Run(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	Top(ctx context.Context, n int64) ([]domain.RunRank, error)
}

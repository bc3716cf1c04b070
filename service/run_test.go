package service

import (
	"context"
	"errors"
	"testing"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	runs map[uuid.UUID]*domain.Run
	err  error
}

func newMemRepo() *memRepo {
	return &memRepo{runs: map[uuid.UUID]*domain.Run{}}
}

func (m *memRepo) run(id uuid.UUID) *domain.Run {
	r, ok := m.runs[id]
	if !ok {
		r = &domain.Run{ID: id}
		m.runs[id] = r
	}
	return r
}

func (m *memRepo) SaveMap(_ context.Context, id uuid.UUID, rows []string) error {
	if m.err != nil {
		return m.err
	}
	m.run(id).Map = rows
	return nil
}

func (m *memRepo) SaveTrials(_ context.Context, id uuid.UUID, successes []domain.Trial, failed int) error {
	if m.err != nil {
		return m.err
	}
	r := m.run(id)
	r.SuccessfulPaths = successes
	r.SuccessfulCount = len(successes)
	r.FailedCount = failed
	return nil
}

func (m *memRepo) SaveStatus(_ context.Context, id uuid.UUID, status domain.Status, rounds int) error {
	if m.err != nil {
		return m.err
	}
	r := m.run(id)
	r.Status = status
	r.Rounds = rounds
	return nil
}

func (m *memRepo) ByID(_ context.Context, id uuid.UUID) (*domain.Run, error) {
	r, ok := m.runs[id]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return r, nil
}

type memBoard struct {
	scores map[uuid.UUID]int
	asked  int64
}

func (b *memBoard) Record(_ context.Context, id uuid.UUID, successes int) error {
	b.scores[id] = successes
	return nil
}

func (b *memBoard) Top(_ context.Context, n int64) ([]domain.RunRank, error) {
	b.asked = n
	var ranks []domain.RunRank
	for id, s := range b.scores {
		ranks = append(ranks, domain.RunRank{ID: id, SuccessfulCount: s})
	}
	return ranks, nil
}

func trial(round int, outcome domain.Outcome) domain.Trial {
	return domain.NewTrial(0, round,
		[]lake.Coordinate{{X: 0, Y: 0}, {X: 1, Y: 0}},
		[]lake.Direction{lake.Right},
		outcome)
}

func TestNewRunServiceRequiresRepo(t *testing.T) {
	rs, err := NewRunService(nil, nil, nil)
	assert.Nil(t, rs)
	assert.ErrorIs(t, err, ErrMissingRepo)
}

func TestRunServiceRecordsEverySection(t *testing.T) {
	repo := newMemRepo()
	board := &memBoard{scores: map[uuid.UUID]int{}}
	rs, err := NewRunService(repo, board, nil)
	require.NoError(t, err)

	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, rs.RecordWorld(ctx, id, []string{"SF", "FG"}))
	require.NoError(t, rs.RecordTrials(ctx, id, []domain.Trial{
		trial(1, domain.OutcomeFailure),
		trial(2, domain.OutcomeSuccess),
		trial(2, domain.OutcomeFailure),
	}))
	require.NoError(t, rs.RecordOutcome(ctx, id, domain.StatusGoalFound, 2))

	run, err := rs.Run(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"SF", "FG"}, run.Map)
	assert.Equal(t, domain.StatusGoalFound, run.Status)
	assert.Equal(t, 2, run.Rounds)
	assert.Equal(t, 1, run.SuccessfulCount)
	assert.Equal(t, 2, run.FailedCount)
	require.Len(t, run.SuccessfulPaths, 1)
	assert.True(t, run.SuccessfulPaths[0].Succeeded())
	assert.Equal(t, 1, board.scores[id])
}

func TestRunServiceTop(t *testing.T) {
	t.Run("without a board", func(t *testing.T) {
		rs, _ := NewRunService(newMemRepo(), nil, nil)
		_, err := rs.Top(context.Background(), 3)
		assert.ErrorIs(t, err, ErrNoBoard)
	})

	t.Run("defaults non-positive n", func(t *testing.T) {
		board := &memBoard{scores: map[uuid.UUID]int{uuid.New(): 4}}
		rs, _ := NewRunService(newMemRepo(), board, nil)
		ranks, err := rs.Top(context.Background(), 0)
		require.NoError(t, err)
		assert.Len(t, ranks, 1)
		assert.Equal(t, int64(defaultTop), board.asked)
	})
}

func TestRunServicePropagatesRepoErrors(t *testing.T) {
	repo := newMemRepo()
	repo.err = errors.New("disk full")
	rs, _ := NewRunService(repo, nil, nil)
	ctx := context.Background()

	assert.ErrorIs(t, rs.RecordWorld(ctx, uuid.New(), []string{"S"}), repo.err)
	assert.ErrorIs(t, rs.RecordTrials(ctx, uuid.New(), nil), repo.err)
	assert.ErrorIs(t, rs.RecordOutcome(ctx, uuid.New(), domain.StatusExhausted, 1), repo.err)

	_, err := rs.Run(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

// Package domain holds the run summary shared by the roles, the results
// stores and the REST API.
package domain

import (
	"errors"
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/google/uuid"
)

var ErrRunNotFound = errors.New("run not found")

// Status is the final outcome of an exploration run.
type Status string

const (
	StatusGoalFound     Status = "goal_found"
	StatusExhausted     Status = "exhausted"
	StatusGoalUnreached Status = "goal_unreached"
	StatusRoundLimit    Status = "round_limit"
)

// Outcome is the result of replaying a single route.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Trial is one replay of a route against the executor. Steps and
// Directions hold what was actually walked.
type Trial struct {
	Index      int               `json:"index" bson:"index"`
	Round      int               `json:"round" bson:"round"`
	Steps      []lake.Coordinate `json:"steps" bson:"steps"`
	Directions []string          `json:"directions" bson:"directions"`
	Outcome    Outcome           `json:"outcome" bson:"outcome"`
}

// NewTrial records a walk of dirs starting at steps[0].
func NewTrial(index, round int, steps []lake.Coordinate, dirs []lake.Direction, outcome Outcome) Trial {
	t := Trial{
		Index:      index,
		Round:      round,
		Steps:      make([]lake.Coordinate, len(steps)),
		Directions: make([]string, len(dirs)),
		Outcome:    outcome,
	}
	copy(t.Steps, steps)
	for i, d := range dirs {
		t.Directions[i] = d.String()
	}
	return t
}

// Succeeded reports whether the trial reached the goal.
func (t Trial) Succeeded() bool {
	return t.Outcome == OutcomeSuccess
}

// Run is the persisted summary of one exploration.
type Run struct {
	ID              uuid.UUID `json:"id" bson:"-"`
	Map             []string  `json:"map" bson:"map"`
	Status          Status    `json:"status" bson:"status"`
	Rounds          int       `json:"rounds" bson:"rounds"`
	SuccessfulPaths []Trial   `json:"successful_paths" bson:"successfulPaths"`
	SuccessfulCount int       `json:"successful_count" bson:"successfulCount"`
	FailedCount     int       `json:"failed_count" bson:"failedCount"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updatedAt"`
}

// RunRank is a run's position on the leaderboard.
type RunRank struct {
	ID              uuid.UUID `json:"id"`
	SuccessfulCount int       `json:"successful_count"`
}

// Package runsapi serves recorded exploration runs.
package runsapi

import (
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
)

// TopRequest bounds the size of a leaderboard response.
type TopRequest struct {
	N int64 `form:"n" binding:"omitempty,min=1,max=100"`
}

// RankResponse is one leaderboard entry.
type RankResponse struct {
	ID              string `json:"id"`
	SuccessfulCount int    `json:"successful_count"`
}

// TrialResponse is a successful walk of a run.
type TrialResponse struct {
	Index      int      `json:"index"`
	Round      int      `json:"round"`
	Steps      [][2]int `json:"steps"`
	Directions []string `json:"directions"`
}

// RunResponse is the stored record of a run.
type RunResponse struct {
	ID              string          `json:"id"`
	Map             []string        `json:"map"`
	Status          string          `json:"status"`
	Rounds          int             `json:"rounds"`
	SuccessfulPaths []TrialResponse `json:"successful_paths"`
	SuccessfulCount int             `json:"successful_count"`
	FailedCount     int             `json:"failed_count"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func newRunResponse(run *domain.Run) *RunResponse {
	res := &RunResponse{
		ID:              run.ID.String(),
		Map:             run.Map,
		Status:          string(run.Status),
		Rounds:          run.Rounds,
		SuccessfulPaths: make([]TrialResponse, 0, len(run.SuccessfulPaths)),
		SuccessfulCount: run.SuccessfulCount,
		FailedCount:     run.FailedCount,
		UpdatedAt:       run.UpdatedAt,
	}
	for _, t := range run.SuccessfulPaths {
		steps := make([][2]int, len(t.Steps))
		for i, c := range t.Steps {
			steps[i] = [2]int{c.X, c.Y}
		}
		res.SuccessfulPaths = append(res.SuccessfulPaths, TrialResponse{
			Index:      t.Index,
			Round:      t.Round,
			Steps:      steps,
			Directions: t.Directions,
		})
	}
	return res
}

package runsapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/service"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const queryTimeout = 2 * time.Second

// RunsController serves run records and the run leaderboard.
type RunsController struct {
	results i.RunResults
	logger  i.Logger
}

// NewRunsController initializes a RunsController.
func NewRunsController(results i.RunResults, logger i.Logger) *RunsController {
	if logger == nil {
		logger = i.NopLogger{}
	}
	return &RunsController{
		results: results,
		logger:  logger,
	}
}

// RegisterPublic registers public routes.
func (rc *RunsController) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/runs/top", rc.top)
}

// RegisterProtected registers protected routes.
func (rc *RunsController) RegisterProtected(route *gin.RouterGroup) {
	route.GET("/runs/:ID", rc.run)
}

// top lists the runs with the most successful trials.
func (rc *RunsController) top(ctx *gin.Context) {
	var request TopRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	ranks, err := rc.results.Top(timeoutCtx, request.N)
	if err != nil {
		if errors.Is(err, service.ErrNoBoard) {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		rc.logger.Error("listing top runs: " + err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while listing runs"})
		return
	}

	response := make([]RankResponse, 0, len(ranks))
	for _, r := range ranks {
		response = append(response, RankResponse{ID: r.ID.String(), SuccessfulCount: r.SuccessfulCount})
	}
	ctx.JSON(http.StatusOK, response)
}

// run retrieves the record of a single run.
func (rc *RunsController) run(ctx *gin.Context) {
	ID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	run, err := rc.results.Run(timeoutCtx, ID)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		rc.logger.Error("loading run " + ID.String() + ": " + err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while loading run"})
		return
	}

	ctx.JSON(http.StatusOK, newRunResponse(run))
}

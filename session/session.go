// Package session runs the explorer, the driver and the executor of one
// exploration inside a single process, linked by in-memory pipes.
package session

import (
	"context"
	"errors"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/driver"
	"github.com/beka-birhanu/vinom-pathfinder/executor"
	"github.com/beka-birhanu/vinom-pathfinder/explorer"
	"github.com/beka-birhanu/vinom-pathfinder/pathfind"
	"github.com/beka-birhanu/vinom-pathfinder/protocol"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"golang.org/x/sync/errgroup"
)

var ErrMissingWorld = errors.New("session needs a world")

// Config carries the parameters of an in-process run.
type Config struct {
	Size           int // Side of the explorer's initial map.
	World          *executor.World
	Encoder        protocol.Encoder
	Enumerator     pathfind.Enumerator
	MaxRounds      int
	ExplorerLogger i.Logger
	DriverLogger   i.Logger
	ExecutorLogger i.Logger
}

// Result is what the three roles produced.
type Result struct {
	Report *explorer.Report
	Trials []domain.Trial
}

// Run plays a whole exploration. The first role to fail cancels the
// others and its error is returned.
func Run(ctx context.Context, c Config) (*Result, error) {
	if c.World == nil {
		return nil, ErrMissingWorld
	}

	explorerEnd, driverUp := protocol.Pipe()
	driverDown, executorEnd := protocol.Pipe()

	ex, err := executor.New(executor.Config{
		Conn:    executorEnd,
		Encoder: c.Encoder,
		World:   c.World,
		Logger:  c.ExecutorLogger,
	})
	if err != nil {
		return nil, err
	}
	dr, err := driver.New(driver.Config{
		Explorer: driverUp,
		Executor: driverDown,
		Encoder:  c.Encoder,
		Logger:   c.DriverLogger,
	})
	if err != nil {
		return nil, err
	}
	exp, err := explorer.New(explorer.Config{
		Size:       c.Size,
		Conn:       explorerEnd,
		Encoder:    c.Encoder,
		Enumerator: c.Enumerator,
		MaxRounds:  c.MaxRounds,
		Logger:     c.ExplorerLogger,
	})
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	res := &Result{}
	g.Go(func() error {
		return ex.Serve(ctx)
	})
	g.Go(func() error {
		trials, err := dr.Run(ctx)
		res.Trials = trials
		return err
	})
	g.Go(func() error {
		report, err := exp.Run(ctx)
		res.Report = report
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

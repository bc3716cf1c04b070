// Package driver replays the explorer's routes on the executor one action
// at a time and relays every scan back to the explorer.
package driver

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/beka-birhanu/vinom-pathfinder/protocol"
	"github.com/beka-birhanu/vinom-pathfinder/route"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
)

var (
	ErrMissingConn    = errors.New("driver needs explorer and executor connections")
	ErrMissingEncoder = errors.New("driver needs an encoder")
)

// Config carries what a Driver needs.
type Config struct {
	Explorer protocol.Conn    // Upstream channel.
	Executor protocol.Conn    // Downstream channel.
	Encoder  protocol.Encoder // Record body codec.
	Logger   i.Logger
}

// Driver sits between the explorer and the executor. It is single use.
type Driver struct {
	explorer protocol.Conn
	executor protocol.Conn
	encoder  protocol.Encoder
	logger   i.Logger

	round  int
	trials []domain.Trial
}

// New validates c and creates a driver.
func New(c Config) (*Driver, error) {
	if c.Explorer == nil || c.Executor == nil {
		return nil, ErrMissingConn
	}
	if c.Encoder == nil {
		return nil, ErrMissingEncoder
	}
	d := &Driver{
		explorer: c.Explorer,
		executor: c.Executor,
		encoder:  c.Encoder,
		logger:   c.Logger,
	}
	if d.logger == nil {
		d.logger = i.NopLogger{}
	}
	return d, nil
}

// Run replays batches until the explorer sends end, forwards end to the
// executor and returns every trial in replay order. Both connections are
// closed on return.
func (d *Driver) Run(ctx context.Context) ([]domain.Trial, error) {
	defer d.executor.Close()
	defer d.explorer.Close()

	for {
		r, err := protocol.Expect(ctx, d.explorer, protocol.StartRecordType, protocol.EndRecordType)
		if err != nil {
			return d.trials, fmt.Errorf("waiting for a batch: %w", err)
		}
		if r.Type == protocol.EndRecordType {
			if err := protocol.Signal(ctx, d.executor, protocol.EndRecordType); err != nil {
				return d.trials, fmt.Errorf("sending end: %w", err)
			}
			d.logger.Info(fmt.Sprintf("explorer ended the run after %d rounds and %d trials", d.round, len(d.trials)))
			return d.trials, nil
		}

		d.round++
		if err := d.replayBatch(ctx); err != nil {
			return d.trials, fmt.Errorf("round %d: %w", d.round, err)
		}
	}
}

func (d *Driver) replayBatch(ctx context.Context) error {
	r, err := protocol.Expect(ctx, d.explorer, protocol.RoutesRecordType)
	if err != nil {
		return err
	}
	routes, err := d.encoder.UnmarshalRoutes(r.Body)
	if err != nil {
		return err
	}
	d.logger.Info(fmt.Sprintf("round %d: replaying %d routes", d.round, len(routes)))

	for idx, rt := range routes {
		trial, err := d.replay(ctx, idx, rt)
		if err != nil {
			return fmt.Errorf("route %d: %w", idx, err)
		}
		d.trials = append(d.trials, trial)
		d.logger.Debug(fmt.Sprintf("route %d %v: %s", idx, trial.Directions, trial.Outcome))
	}

	return protocol.Signal(ctx, d.explorer, protocol.NoMoreScansRecordType)
}

// replay walks one route on the executor. The trial holds only the steps
// that were actually taken.
func (d *Driver) replay(ctx context.Context, idx int, rt route.Route) (domain.Trial, error) {
	dirs, err := rt.Directions()
	if err != nil {
		return domain.Trial{}, err
	}
	if len(dirs) == 0 {
		return domain.NewTrial(idx, d.round, rt, nil, domain.OutcomeFailure), nil
	}

	if err := protocol.Signal(ctx, d.executor, protocol.StartRecordType); err != nil {
		return domain.Trial{}, err
	}

	pos := lake.StartCoordinate
	for step, dir := range dirs {
		taken := step + 1
		record := func(o domain.Outcome) domain.Trial {
			return domain.NewTrial(idx, d.round, rt[:taken+1], dirs[:taken], o)
		}

		body, err := d.encoder.MarshalAction(dir.Action())
		if err != nil {
			return domain.Trial{}, err
		}
		if err := d.executor.Send(ctx, protocol.Record{Type: protocol.ActionRecordType, Body: body}); err != nil {
			return domain.Trial{}, err
		}
		pos = pos.Neighbor(dir)

		refused, err := d.relayScan(ctx, pos)
		if err != nil {
			return domain.Trial{}, err
		}

		r, err := protocol.Expect(ctx, d.executor, protocol.DoneRecordType, protocol.NotDoneRecordType)
		if err != nil {
			return domain.Trial{}, err
		}
		if r.Type == protocol.DoneRecordType {
			r, err := protocol.Expect(ctx, d.executor, protocol.SuccessRecordType, protocol.FailureRecordType)
			if err != nil {
				return domain.Trial{}, err
			}
			if r.Type == protocol.SuccessRecordType {
				return record(domain.OutcomeSuccess), nil
			}
			return record(domain.OutcomeFailure), nil
		}

		if refused || taken == len(dirs) {
			if err := protocol.Signal(ctx, d.executor, protocol.PathTerminatedRecordType); err != nil {
				return domain.Trial{}, err
			}
			return record(domain.OutcomeFailure), nil
		}
		if err := protocol.Signal(ctx, d.executor, protocol.PathNotTerminatedRecordType); err != nil {
			return domain.Trial{}, err
		}
	}

	// Unreachable: the loop returns on the last step.
	return domain.Trial{}, nil
}

// relayScan asks the executor for a scan and forwards it to the explorer
// annotated with the tracked position. When the executor reports a
// different position the move was refused at the world's edge; the scan
// describes some other tile, so it is dropped and the route abandoned.
func (d *Driver) relayScan(ctx context.Context, pos lake.Coordinate) (bool, error) {
	if err := protocol.Signal(ctx, d.executor, protocol.ScanStartRecordType); err != nil {
		return false, err
	}
	r, err := protocol.Expect(ctx, d.executor, protocol.ScanRecordType)
	if err != nil {
		return false, err
	}
	scan, err := d.encoder.UnmarshalScan(r.Body)
	if err != nil {
		return false, err
	}
	if scan.Coordinate != pos {
		d.logger.Warning(fmt.Sprintf("executor stayed at %s instead of moving to %s", scan.Coordinate, pos))
		return true, nil
	}

	scan.Coordinate = pos
	body, err := d.encoder.MarshalScan(scan)
	if err != nil {
		return false, err
	}
	if err := protocol.Signal(ctx, d.explorer, protocol.MoreScansRecordType); err != nil {
		return false, err
	}
	return false, d.explorer.Send(ctx, protocol.Record{Type: protocol.ScanRecordType, Body: body})
}

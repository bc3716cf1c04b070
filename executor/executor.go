// Package executor simulates a non-slippery FrozenLake world and serves
// single steps of it to the driver.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/beka-birhanu/vinom-pathfinder/protocol"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
)

var (
	ErrMissingConn    = errors.New("executor needs a driver connection")
	ErrMissingEncoder = errors.New("executor needs an encoder")
	ErrMissingWorld   = errors.New("executor needs a world")
)

// Config carries what an Executor needs.
type Config struct {
	Conn    protocol.Conn    // Channel to the driver.
	Encoder protocol.Encoder // Record body codec.
	World   *World
	Logger  i.Logger
}

// Executor answers the driver's step and scan requests.
type Executor struct {
	conn    protocol.Conn
	encoder protocol.Encoder
	world   *World
	logger  i.Logger

	episodes int
}

// New validates c and creates an executor.
func New(c Config) (*Executor, error) {
	if c.Conn == nil {
		return nil, ErrMissingConn
	}
	if c.Encoder == nil {
		return nil, ErrMissingEncoder
	}
	if c.World == nil {
		return nil, ErrMissingWorld
	}
	e := &Executor{conn: c.Conn, encoder: c.Encoder, world: c.World, logger: c.Logger}
	if e.logger == nil {
		e.logger = i.NopLogger{}
	}
	return e, nil
}

// Serve plays episodes until the driver sends end, then closes the
// connection.
func (e *Executor) Serve(ctx context.Context) error {
	defer e.conn.Close()
	e.logger.Info(fmt.Sprintf("serving %dx%d world\n%s", e.world.Width(), e.world.Height(), e.world))

	for {
		r, err := protocol.Expect(ctx, e.conn, protocol.StartRecordType, protocol.EndRecordType)
		if err != nil {
			return fmt.Errorf("waiting for an episode: %w", err)
		}
		if r.Type == protocol.EndRecordType {
			e.logger.Info(fmt.Sprintf("driver ended the run after %d episodes", e.episodes))
			return nil
		}

		e.episodes++
		if err := e.play(ctx, e.world.NewEpisode()); err != nil {
			return fmt.Errorf("episode %d: %w", e.episodes, err)
		}
	}
}

// play serves one episode: each action is followed by a scan request, then
// the executor reports whether the episode is over. A running episode ends
// when the driver says the path terminated.
func (e *Executor) play(ctx context.Context, ep *Episode) error {
	for {
		r, err := protocol.Expect(ctx, e.conn, protocol.ActionRecordType)
		if err != nil {
			return err
		}
		action, err := e.encoder.UnmarshalAction(r.Body)
		if err != nil {
			return err
		}
		dir, err := action.Direction()
		if err != nil {
			return err
		}
		ep.Step(dir)

		if _, err := protocol.Expect(ctx, e.conn, protocol.ScanStartRecordType); err != nil {
			return err
		}
		body, err := e.encoder.MarshalScan(ep.Scan())
		if err != nil {
			return err
		}
		if err := e.conn.Send(ctx, protocol.Record{Type: protocol.ScanRecordType, Body: body}); err != nil {
			return err
		}

		if ep.Over() {
			outcome := protocol.FailureRecordType
			if ep.Tile() == lake.Goal {
				outcome = protocol.SuccessRecordType
			}
			if err := protocol.Signal(ctx, e.conn, protocol.DoneRecordType); err != nil {
				return err
			}
			e.logger.Debug(fmt.Sprintf("episode %d ended at %s with %s", e.episodes, ep.Position(), outcome))
			return protocol.Signal(ctx, e.conn, outcome)
		}

		if err := protocol.Signal(ctx, e.conn, protocol.NotDoneRecordType); err != nil {
			return err
		}
		r, err = protocol.Expect(ctx, e.conn, protocol.PathTerminatedRecordType, protocol.PathNotTerminatedRecordType)
		if err != nil {
			return err
		}
		if r.Type == protocol.PathTerminatedRecordType {
			return nil
		}
	}
}

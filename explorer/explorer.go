// Package explorer owns the map of the lake. Each round it picks a target,
// enumerates routes to it over what is known so far, hands the batch to
// the driver and folds the streamed scans back into the map.
package explorer

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/beka-birhanu/vinom-pathfinder/pathfind"
	"github.com/beka-birhanu/vinom-pathfinder/protocol"
	"github.com/beka-birhanu/vinom-pathfinder/route"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
)

const defaultMaxRounds = 1000

var (
	ErrMissingConn    = errors.New("explorer needs a driver connection")
	ErrMissingEncoder = errors.New("explorer needs an encoder")
)

// State is a step of the explorer's round loop.
type State uint8

const (
	Selecting State = iota
	Enumerating
	Dispatching
	AwaitingScans
	Deciding
	Done
)

func (s State) String() string {
	switch s {
	case Selecting:
		return "selecting"
	case Enumerating:
		return "enumerating"
	case Dispatching:
		return "dispatching"
	case AwaitingScans:
		return "awaiting_scans"
	case Deciding:
		return "deciding"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Config carries what an Explorer needs.
type Config struct {
	Size       int                 // Side of the initial square map.
	Conn       protocol.Conn       // Channel to the driver.
	Encoder    protocol.Encoder    // Record body codec.
	Enumerator pathfind.Enumerator // Defaults to an unbounded DFSEnumerator.
	MaxRounds  int                 // Defaults to 1000.
	Logger     i.Logger
}

// Report summarises a finished exploration.
type Report struct {
	Status domain.Status
	Rounds int
	Target lake.Coordinate // Last target selected.
	Map    []string
}

// Explorer runs the exploration rounds. It is single use.
type Explorer struct {
	grid       *lake.Grid
	selector   *pathfind.Selector
	conn       protocol.Conn
	encoder    protocol.Encoder
	enumerator pathfind.Enumerator
	maxRounds  int
	logger     i.Logger

	state  State
	round  int
	target lake.Coordinate
	kind   pathfind.Selection
	routes []route.Route
	status domain.Status
}

// New validates c and creates an explorer with a fresh map.
func New(c Config) (*Explorer, error) {
	if c.Conn == nil {
		return nil, ErrMissingConn
	}
	if c.Encoder == nil {
		return nil, ErrMissingEncoder
	}
	grid, err := lake.New(c.Size)
	if err != nil {
		return nil, err
	}

	e := &Explorer{
		grid:       grid,
		selector:   pathfind.NewSelector(),
		conn:       c.Conn,
		encoder:    c.Encoder,
		enumerator: c.Enumerator,
		maxRounds:  c.MaxRounds,
		logger:     c.Logger,
		state:      Selecting,
	}
	if e.enumerator == nil {
		e.enumerator = pathfind.DFSEnumerator{}
	}
	if e.maxRounds <= 0 {
		e.maxRounds = defaultMaxRounds
	}
	if e.logger == nil {
		e.logger = i.NopLogger{}
	}
	return e, nil
}

// Run drives rounds until the exploration is done, then sends end to the
// driver and closes the connection.
func (e *Explorer) Run(ctx context.Context) (*Report, error) {
	defer e.conn.Close()

	for {
		var err error
		switch e.state {
		case Selecting:
			e.selectTarget()
		case Enumerating:
			err = e.enumerate(ctx)
		case Dispatching:
			err = e.dispatch(ctx)
		case AwaitingScans:
			err = e.awaitScans(ctx)
		case Deciding:
			e.decide()
		case Done:
			if err := protocol.Signal(ctx, e.conn, protocol.EndRecordType); err != nil {
				return nil, fmt.Errorf("sending end: %w", err)
			}
			e.logger.Info(fmt.Sprintf("exploration finished with %s after %d rounds\n%s", e.status, e.round, e.grid))
			return &Report{
				Status: e.status,
				Rounds: e.round,
				Target: e.target,
				Map:    e.grid.Rows(),
			}, nil
		}
		if err != nil {
			return nil, fmt.Errorf("round %d %s: %w", e.round, e.state, err)
		}
	}
}

func (e *Explorer) selectTarget() {
	if e.round >= e.maxRounds {
		e.logger.Warning(fmt.Sprintf("round limit %d reached", e.maxRounds))
		e.finish(domain.StatusRoundLimit)
		return
	}

	e.target, e.kind = e.selector.Next(e.grid)
	if e.kind == pathfind.SelectExhausted {
		e.logger.Info("nothing left to explore and no goal seen")
		e.finish(domain.StatusExhausted)
		return
	}

	e.round++
	e.logger.Info(fmt.Sprintf("round %d: targeting %s tile at %s", e.round, e.kind, e.target))
	e.state = Enumerating
}

func (e *Explorer) enumerate(ctx context.Context) error {
	graph := pathfind.BuildGraph(e.grid)
	routes, err := e.enumerator.Enumerate(ctx, graph, lake.StartCoordinate, e.target)
	if err != nil {
		return err
	}
	if len(routes) == 0 {
		e.logger.Info(fmt.Sprintf("no route toward %s on the current map", e.target))
	} else {
		e.logger.Debug(fmt.Sprintf("%d routes toward %s", len(routes), e.target))
	}
	e.routes = routes
	e.state = Dispatching
	return nil
}

func (e *Explorer) dispatch(ctx context.Context) error {
	body, err := e.encoder.MarshalRoutes(e.routes)
	if err != nil {
		return err
	}
	if err := protocol.Signal(ctx, e.conn, protocol.StartRecordType); err != nil {
		return err
	}
	if err := e.conn.Send(ctx, protocol.Record{Type: protocol.RoutesRecordType, Body: body}); err != nil {
		return err
	}
	e.state = AwaitingScans
	return nil
}

// awaitScans applies every streamed scan, in order, until the driver has
// replayed the whole batch.
func (e *Explorer) awaitScans(ctx context.Context) error {
	for {
		r, err := protocol.Expect(ctx, e.conn, protocol.MoreScansRecordType, protocol.NoMoreScansRecordType)
		if err != nil {
			return err
		}
		if r.Type == protocol.NoMoreScansRecordType {
			e.state = Deciding
			return nil
		}

		r, err = protocol.Expect(ctx, e.conn, protocol.ScanRecordType)
		if err != nil {
			return err
		}
		scan, err := e.encoder.UnmarshalScan(r.Body)
		if err != nil {
			return err
		}
		if e.grid.Update(scan.Coordinate, scan.Current, scan.Surroundings) {
			e.logger.Debug(fmt.Sprintf("%s is %s\n%s", scan.Coordinate, scan.Current, e.grid))
		}
	}
}

func (e *Explorer) decide() {
	if e.kind != pathfind.SelectGoal {
		e.state = Selecting
		return
	}
	if len(e.routes) == 0 {
		e.finish(domain.StatusGoalUnreached)
		return
	}
	e.finish(domain.StatusGoalFound)
}

func (e *Explorer) finish(s domain.Status) {
	e.status = s
	e.state = Done
}

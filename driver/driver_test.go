package driver

import (
	"context"
	"testing"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/executor"
	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/beka-birhanu/vinom-pathfinder/protocol"
	pb "github.com/beka-birhanu/vinom-pathfinder/protocol/pb_encoder"
	"github.com/beka-birhanu/vinom-pathfinder/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func path(xy ...int) route.Route {
	r := make(route.Route, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		r = append(r, lake.Coordinate{X: xy[i], Y: xy[i+1]})
	}
	return r
}

type harness struct {
	t        *testing.T
	ctx      context.Context
	explorer protocol.Conn
	enc      *pb.Protobuf
	trials   chan []domain.Trial
	runErr   chan error
	served   chan error
}

// start wires a driver between a scripted explorer and a real executor
// serving rows.
func start(t *testing.T, rows ...string) *harness {
	t.Helper()
	w, err := executor.NewWorld(rows)
	require.NoError(t, err)

	explorerEnd, driverUp := protocol.Pipe()
	driverDown, executorEnd := protocol.Pipe()

	ex, err := executor.New(executor.Config{Conn: executorEnd, Encoder: &pb.Protobuf{}, World: w})
	require.NoError(t, err)
	d, err := New(Config{Explorer: driverUp, Executor: driverDown, Encoder: &pb.Protobuf{}})
	require.NoError(t, err)

	h := &harness{
		t:        t,
		ctx:      context.Background(),
		explorer: explorerEnd,
		enc:      &pb.Protobuf{},
		trials:   make(chan []domain.Trial, 1),
		runErr:   make(chan error, 1),
		served:   make(chan error, 1),
	}
	go func() { h.served <- ex.Serve(h.ctx) }()
	go func() {
		trials, err := d.Run(h.ctx)
		h.trials <- trials
		h.runErr <- err
	}()
	return h
}

// batch dispatches routes and returns the scans relayed back.
func (h *harness) batch(routes ...route.Route) []lake.Scan {
	body, err := h.enc.MarshalRoutes(routes)
	require.NoError(h.t, err)
	require.NoError(h.t, protocol.Signal(h.ctx, h.explorer, protocol.StartRecordType))
	require.NoError(h.t, h.explorer.Send(h.ctx, protocol.Record{Type: protocol.RoutesRecordType, Body: body}))

	var scans []lake.Scan
	for {
		r, err := protocol.Expect(h.ctx, h.explorer, protocol.MoreScansRecordType, protocol.NoMoreScansRecordType)
		require.NoError(h.t, err)
		if r.Type == protocol.NoMoreScansRecordType {
			return scans
		}
		r, err = protocol.Expect(h.ctx, h.explorer, protocol.ScanRecordType)
		require.NoError(h.t, err)
		scan, err := h.enc.UnmarshalScan(r.Body)
		require.NoError(h.t, err)
		scans = append(scans, scan)
	}
}

func (h *harness) end() []domain.Trial {
	require.NoError(h.t, protocol.Signal(h.ctx, h.explorer, protocol.EndRecordType))
	trials := <-h.trials
	require.NoError(h.t, <-h.runErr)
	require.NoError(h.t, <-h.served)
	return trials
}

var holeLake = []string{"SFF", "FHF", "FFG"}

func TestDriverStopsAtHole(t *testing.T) {
	h := start(t, holeLake...)

	scans := h.batch(path(0, 0, 1, 0, 1, 1, 2, 1))
	require.Len(t, scans, 2)
	assert.Equal(t, lake.Coordinate{X: 1, Y: 0}, scans[0].Coordinate)
	assert.Equal(t, lake.Frozen, scans[0].Current)
	assert.Equal(t, lake.Coordinate{X: 1, Y: 1}, scans[1].Coordinate)
	assert.Equal(t, lake.Hole, scans[1].Current)

	trials := h.end()
	require.Len(t, trials, 1)
	assert.Equal(t, domain.OutcomeFailure, trials[0].Outcome)
	assert.Equal(t, []string{"r", "d"}, trials[0].Directions)
	assert.Equal(t, []lake.Coordinate(path(0, 0, 1, 0, 1, 1)), trials[0].Steps)
}

func TestDriverRecordsExhaustedRouteAsFailure(t *testing.T) {
	h := start(t, holeLake...)

	scans := h.batch(path(0, 0, 1, 0))
	require.Len(t, scans, 1)

	trials := h.end()
	require.Len(t, trials, 1)
	assert.Equal(t, domain.OutcomeFailure, trials[0].Outcome)
	assert.Equal(t, []string{"r"}, trials[0].Directions)
}

func TestDriverAccumulatesRounds(t *testing.T) {
	h := start(t, holeLake...)

	h.batch(path(0, 0, 1, 0), path(0, 0, 0, 1, 0, 2, 1, 2, 2, 2))
	assert.Empty(t, h.batch())
	h.batch(path(0, 0, 1, 0, 2, 0, 2, 1, 2, 2), path(0, 0))

	trials := h.end()
	require.Len(t, trials, 4)

	assert.Equal(t, 1, trials[1].Round)
	assert.Equal(t, 1, trials[1].Index)
	assert.True(t, trials[1].Succeeded())
	assert.Equal(t, []string{"d", "d", "r", "r"}, trials[1].Directions)

	assert.Equal(t, 3, trials[2].Round)
	assert.Equal(t, 0, trials[2].Index)
	assert.True(t, trials[2].Succeeded())

	// A route with no steps never reaches the executor.
	assert.Equal(t, domain.OutcomeFailure, trials[3].Outcome)
	assert.Empty(t, trials[3].Directions)
}

func TestDriverDropsScansOfRefusedMoves(t *testing.T) {
	h := start(t, "SG")

	scans := h.batch(path(0, 0, 0, 1, 1, 1))
	assert.Empty(t, scans)

	trials := h.end()
	require.Len(t, trials, 1)
	assert.Equal(t, domain.OutcomeFailure, trials[0].Outcome)
	assert.Equal(t, []string{"d"}, trials[0].Directions)
}

func TestDriverProtocolViolation(t *testing.T) {
	h := start(t, holeLake...)

	require.NoError(t, protocol.Signal(h.ctx, h.explorer, protocol.ScanRecordType))
	<-h.trials
	assert.ErrorIs(t, <-h.runErr, protocol.ErrProtocolViolation)
}

func TestNewValidatesConfig(t *testing.T) {
	a, b := protocol.Pipe()

	_, err := New(Config{Explorer: a, Encoder: &pb.Protobuf{}})
	assert.ErrorIs(t, err, ErrMissingConn)
	_, err = New(Config{Explorer: a, Executor: b})
	assert.ErrorIs(t, err, ErrMissingEncoder)
}

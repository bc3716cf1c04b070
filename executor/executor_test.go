package executor

import (
	"context"
	"testing"

	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/beka-birhanu/vinom-pathfinder/protocol"
	pb "github.com/beka-birhanu/vinom-pathfinder/protocol/pb_encoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type driverSide struct {
	t    *testing.T
	ctx  context.Context
	conn protocol.Conn
	enc  *pb.Protobuf
}

func (d driverSide) signal(rt protocol.RecordType) {
	require.NoError(d.t, protocol.Signal(d.ctx, d.conn, rt))
}

func (d driverSide) expect(rt ...protocol.RecordType) protocol.RecordType {
	r, err := protocol.Expect(d.ctx, d.conn, rt...)
	require.NoError(d.t, err)
	return r.Type
}

// step sends one action and returns the scan that follows.
func (d driverSide) step(dir lake.Direction) lake.Scan {
	body, err := d.enc.MarshalAction(dir.Action())
	require.NoError(d.t, err)
	require.NoError(d.t, d.conn.Send(d.ctx, protocol.Record{Type: protocol.ActionRecordType, Body: body}))
	d.signal(protocol.ScanStartRecordType)

	r, err := protocol.Expect(d.ctx, d.conn, protocol.ScanRecordType)
	require.NoError(d.t, err)
	scan, err := d.enc.UnmarshalScan(r.Body)
	require.NoError(d.t, err)
	return scan
}

func serve(t *testing.T, rows ...string) (driverSide, <-chan error) {
	t.Helper()
	w, err := NewWorld(rows)
	require.NoError(t, err)

	a, b := protocol.Pipe()
	e, err := New(Config{Conn: a, Encoder: &pb.Protobuf{}, World: w})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- e.Serve(context.Background()) }()
	return driverSide{t: t, ctx: context.Background(), conn: b, enc: &pb.Protobuf{}}, done
}

func TestExecutorEpisodes(t *testing.T) {
	d, done := serve(t, gymLake...)

	// Into a hole on the second step.
	d.signal(protocol.StartRecordType)
	scan := d.step(lake.Right)
	assert.Equal(t, lake.Frozen, scan.Current)
	assert.Equal(t, lake.Coordinate{X: 1, Y: 0}, scan.Coordinate)
	assert.Equal(t, protocol.NotDoneRecordType, d.expect(protocol.DoneRecordType, protocol.NotDoneRecordType))
	d.signal(protocol.PathNotTerminatedRecordType)

	scan = d.step(lake.Down)
	assert.Equal(t, lake.Hole, scan.Current)
	assert.Equal(t, lake.Surroundings{}, scan.Surroundings)
	d.expect(protocol.DoneRecordType)
	d.expect(protocol.FailureRecordType)

	// A fresh episode starts back on the start tile and can stop early.
	d.signal(protocol.StartRecordType)
	scan = d.step(lake.Down)
	assert.Equal(t, lake.Coordinate{X: 0, Y: 1}, scan.Coordinate)
	d.expect(protocol.NotDoneRecordType)
	d.signal(protocol.PathTerminatedRecordType)

	// Straight to the goal.
	d.signal(protocol.StartRecordType)
	path := []lake.Direction{lake.Right, lake.Right, lake.Down, lake.Down, lake.Down, lake.Right}
	for i, dir := range path {
		scan = d.step(dir)
		if i < len(path)-1 {
			d.expect(protocol.NotDoneRecordType)
			d.signal(protocol.PathNotTerminatedRecordType)
		}
	}
	assert.Equal(t, lake.Goal, scan.Current)
	d.expect(protocol.DoneRecordType)
	d.expect(protocol.SuccessRecordType)

	d.signal(protocol.EndRecordType)
	assert.NoError(t, <-done)
}

func TestExecutorRefusedMoveReportsActualPosition(t *testing.T) {
	d, done := serve(t, "SF", "FG")

	d.signal(protocol.StartRecordType)
	scan := d.step(lake.Left)
	assert.Equal(t, lake.StartCoordinate, scan.Coordinate)
	assert.Equal(t, lake.Start, scan.Current)
	d.expect(protocol.NotDoneRecordType)
	d.signal(protocol.PathTerminatedRecordType)

	d.signal(protocol.EndRecordType)
	assert.NoError(t, <-done)
}

func TestExecutorProtocolViolation(t *testing.T) {
	d, done := serve(t, "SF", "FG")

	d.signal(protocol.ScanStartRecordType)
	assert.ErrorIs(t, <-done, protocol.ErrProtocolViolation)
}

func TestExecutorDisconnected(t *testing.T) {
	d, done := serve(t, "SF", "FG")

	d.signal(protocol.StartRecordType)
	require.NoError(t, d.conn.Close())
	assert.ErrorIs(t, <-done, protocol.ErrDisconnected)
}

func TestNewValidatesConfig(t *testing.T) {
	a, _ := protocol.Pipe()
	w, err := NewWorld([]string{"SG"})
	require.NoError(t, err)

	_, err = New(Config{Encoder: &pb.Protobuf{}, World: w})
	assert.ErrorIs(t, err, ErrMissingConn)
	_, err = New(Config{Conn: a, World: w})
	assert.ErrorIs(t, err, ErrMissingEncoder)
	_, err = New(Config{Conn: a, Encoder: &pb.Protobuf{}})
	assert.ErrorIs(t, err, ErrMissingWorld)
}

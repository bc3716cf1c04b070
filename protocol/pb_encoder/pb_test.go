package pb

import (
	"testing"

	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/beka-birhanu/vinom-pathfinder/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestRoutes(t *testing.T) {
	p := &Protobuf{}

	t.Run("batch with negative coordinates", func(t *testing.T) {
		routes := []route.Route{
			{{X: 0, Y: 0}},
			{{X: 0, Y: 0}, {X: -1, Y: 0}, {X: -1, Y: -1}},
			{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1}},
		}
		b, err := p.MarshalRoutes(routes)
		require.NoError(t, err)

		got, err := p.UnmarshalRoutes(b)
		require.NoError(t, err)
		assert.Equal(t, routes, got)
	})

	t.Run("empty batch", func(t *testing.T) {
		b, err := p.MarshalRoutes(nil)
		require.NoError(t, err)

		got, err := p.UnmarshalRoutes(b)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("rejects a route that does not start at the origin", func(t *testing.T) {
		b, err := p.MarshalRoutes([]route.Route{{{X: 1, Y: 0}, {X: 2, Y: 0}}})
		require.NoError(t, err)

		_, err = p.UnmarshalRoutes(b)
		assert.ErrorIs(t, err, route.ErrNotFromStart)
	})

	t.Run("rejects truncated input", func(t *testing.T) {
		b, err := p.MarshalRoutes([]route.Route{{{X: 0, Y: 0}, {X: 1, Y: 0}}})
		require.NoError(t, err)

		_, err = p.UnmarshalRoutes(b[:len(b)-1])
		assert.Error(t, err)
	})
}

func TestScan(t *testing.T) {
	p := &Protobuf{}
	scan := lake.Scan{
		Current:      lake.Frozen,
		Surroundings: lake.Surroundings{lake.Blocked, lake.Reachable, lake.Blocked, lake.Reachable},
		Coordinate:   lake.Coordinate{X: 3, Y: -2},
	}

	b, err := p.MarshalScan(scan)
	require.NoError(t, err)
	got, err := p.UnmarshalScan(b)
	require.NoError(t, err)
	assert.Equal(t, scan, got)

	t.Run("terminal scan keeps undetermined surroundings", func(t *testing.T) {
		hole := lake.Scan{Current: lake.Hole, Coordinate: lake.Coordinate{X: 1}}
		b, err := p.MarshalScan(hole)
		require.NoError(t, err)
		got, err := p.UnmarshalScan(b)
		require.NoError(t, err)
		assert.Equal(t, lake.Surroundings{}, got.Surroundings)
	})

	t.Run("rejects unknown tile letters", func(t *testing.T) {
		b := protowire.AppendTag(nil, scanCurrent, protowire.VarintType)
		b = protowire.AppendVarint(b, 'Q')
		_, err := p.UnmarshalScan(b)
		assert.ErrorIs(t, err, lake.ErrInvalidTile)
	})

	t.Run("rejects out of range adjacency", func(t *testing.T) {
		b := protowire.AppendTag(nil, scanCurrent, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(lake.Frozen))
		b = protowire.AppendTag(b, scanLeft, protowire.VarintType)
		b = protowire.AppendVarint(b, 7)
		_, err := p.UnmarshalScan(b)
		assert.ErrorIs(t, err, ErrInvalidAdjacency)
	})

	t.Run("requires the current tile", func(t *testing.T) {
		_, err := p.UnmarshalScan(nil)
		assert.ErrorIs(t, err, lake.ErrInvalidTile)
	})
}

func TestAction(t *testing.T) {
	p := &Protobuf{}
	for _, a := range []lake.Action{lake.ActionLeft, lake.ActionDown, lake.ActionRight, lake.ActionUp} {
		b, err := p.MarshalAction(a)
		require.NoError(t, err)
		got, err := p.UnmarshalAction(b)
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	_, err := p.MarshalAction(lake.Action(4))
	assert.ErrorIs(t, err, lake.ErrInvalidAction)

	b := protowire.AppendTag(nil, actionValue, protowire.VarintType)
	b = protowire.AppendVarint(b, 9)
	_, err = p.UnmarshalAction(b)
	assert.ErrorIs(t, err, lake.ErrInvalidAction)
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	p := &Protobuf{}
	b, err := p.MarshalAction(lake.ActionRight)
	require.NoError(t, err)
	b = protowire.AppendTag(b, 15, protowire.BytesType)
	b = protowire.AppendBytes(b, []byte("future"))

	got, err := p.UnmarshalAction(b)
	require.NoError(t, err)
	assert.Equal(t, lake.ActionRight, got)
}

package lake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reachable(dirs ...Direction) Surroundings {
	var s Surroundings
	for i := range s {
		s[i] = Blocked
	}
	for _, d := range dirs {
		s[d] = Reachable
	}
	return s
}

func TestNew(t *testing.T) {
	t.Run("rejects non-positive size", func(t *testing.T) {
		for _, size := range []int{0, -3} {
			g, err := New(size)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, ErrInvalidSize)
		}
	})

	t.Run("unknown except start", func(t *testing.T) {
		g, err := New(3)
		require.NoError(t, err)
		assert.Equal(t, []string{"SXX", "XXX", "XXX"}, g.Rows())
		assert.Equal(t, 8, g.Count(Unknown))
		assert.Equal(t, Start, g.At(StartCoordinate))
	})
}

func TestGridUpdate(t *testing.T) {
	t.Run("sets observed tile and marks reachable neighbours", func(t *testing.T) {
		g, _ := New(3)
		changed := g.Update(Coordinate{X: 1, Y: 0}, Frozen, reachable(Down, Left, Right))
		assert.True(t, changed)
		assert.Equal(t, []string{"SFX", "XXX", "XXX"}, g.Rows())
	})

	t.Run("start is never overwritten", func(t *testing.T) {
		g, _ := New(2)
		g.Update(StartCoordinate, Frozen, reachable(Right, Down))
		g.Update(Coordinate{X: 1, Y: 0}, Frozen, reachable(Left))
		g.Update(StartCoordinate, Hole, Surroundings{})
		assert.Equal(t, Start, g.At(StartCoordinate))
	})

	t.Run("idempotent", func(t *testing.T) {
		once, _ := New(3)
		twice, _ := New(3)
		c := Coordinate{X: 2, Y: 2}
		adj := reachable(Right, Down, Up)

		once.Update(c, Frozen, adj)
		twice.Update(c, Frozen, adj)
		changed := twice.Update(c, Frozen, adj)

		assert.False(t, changed)
		assert.Equal(t, once.Rows(), twice.Rows())
		assert.Equal(t, once.Origin(), twice.Origin())
	})

	t.Run("reachable does not overwrite a hole", func(t *testing.T) {
		g, _ := New(4)
		g.Update(Coordinate{X: 1, Y: 0}, Hole, Surroundings{})
		require.Equal(t, Hole, g.At(Coordinate{X: 1, Y: 0}))

		g.Update(StartCoordinate, Start, reachable(Right))
		assert.Equal(t, Hole, g.At(Coordinate{X: 1, Y: 0}))
	})

	t.Run("reachable resets ignored tiles to unknown", func(t *testing.T) {
		g, _ := New(2)
		g.Update(Coordinate{X: 1, Y: 0}, Ignored, Surroundings{})
		g.Update(StartCoordinate, Start, reachable(Right))
		assert.Equal(t, Unknown, g.At(Coordinate{X: 1, Y: 0}))
	})

	t.Run("blocked and undetermined do nothing", func(t *testing.T) {
		g, _ := New(2)
		g.Update(Coordinate{X: 1, Y: 1}, Goal, Surroundings{})
		assert.Equal(t, []string{"SX", "XG"}, g.Rows())
		assert.Equal(t, 2, g.Width())
	})

	t.Run("grows toward reachable neighbours outside", func(t *testing.T) {
		g, _ := New(2)
		g.Update(Coordinate{X: 1, Y: 1}, Frozen, reachable(Right, Down))
		assert.Equal(t, 3, g.Width())
		assert.Equal(t, 3, g.Height())
		assert.Equal(t, []string{"SXO", "XFX", "OXO"}, g.Rows())
	})

	t.Run("materialises the observed coordinate itself", func(t *testing.T) {
		g, _ := New(2)
		g.Update(Coordinate{X: 3, Y: 0}, Frozen, Surroundings{})
		assert.Equal(t, []string{"SXOF", "XXOO"}, g.Rows())
	})
}

func TestGridExpand(t *testing.T) {
	t.Run("toward negative x re-anchors", func(t *testing.T) {
		g, _ := New(4)
		shift := g.Expand(Coordinate{X: -1, Y: 0})

		assert.Equal(t, Coordinate{X: 1, Y: 0}, shift)
		rows := g.Rows()
		assert.Equal(t, "OSXXX", rows[0])
		assert.Equal(t, Filler, Tile(rows[0][0]))
		assert.Equal(t, Start, Tile(rows[0][1]))
		assert.Equal(t, Start, g.At(StartCoordinate))
		assert.Equal(t, Filler, g.At(Coordinate{X: -1, Y: 0}))
	})

	t.Run("preserves every previously valid coordinate", func(t *testing.T) {
		g, _ := New(3)
		g.Update(Coordinate{X: 1, Y: 1}, Hole, Surroundings{})
		g.Update(Coordinate{X: 2, Y: 0}, Frozen, Surroundings{})
		before := map[Coordinate]Tile{}
		g.Each(func(c Coordinate, tile Tile) { before[c] = tile })

		g.Expand(Coordinate{X: -2, Y: -1})
		g.Expand(Coordinate{X: 5, Y: 4})

		for c, tile := range before {
			assert.Equal(t, tile, g.At(c), "coordinate %s", c)
		}
		assert.Equal(t, 8, g.Width())
		assert.Equal(t, 6, g.Height())
	})

	t.Run("inside the rectangle is a no-op", func(t *testing.T) {
		g, _ := New(3)
		assert.Equal(t, Coordinate{}, g.Expand(Coordinate{X: 2, Y: 2}))
		assert.Equal(t, 3, g.Width())
	})
}

func TestGridAtOutOfBoundsPanics(t *testing.T) {
	g, _ := New(2)
	assert.Panics(t, func() { g.At(Coordinate{X: 2, Y: 0}) })
}

func TestGridFind(t *testing.T) {
	g, _ := New(3)
	g.Update(Coordinate{X: 1, Y: 0}, Frozen, Surroundings{})
	g.Update(Coordinate{X: 2, Y: 0}, Frozen, Surroundings{})

	c, ok := g.Find(Unknown)
	require.True(t, ok)
	assert.Equal(t, Coordinate{X: 0, Y: 1}, c)

	_, ok = g.Find(Goal)
	assert.False(t, ok)
}

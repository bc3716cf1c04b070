package pathfind

import (
	"testing"

	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func c(x, y int) lake.Coordinate {
	return lake.Coordinate{X: x, Y: y}
}

// gridOf builds a grid whose tiles match rows, with rows[0][0] as Start.
func gridOf(t *testing.T, rows ...string) *lake.Grid {
	t.Helper()
	g, err := lake.New(len(rows))
	require.NoError(t, err)
	for y, row := range rows {
		for x, r := range row {
			tile, err := lake.ParseTile(r)
			require.NoError(t, err)
			if tile == lake.Filler {
				continue
			}
			g.Update(c(x, y), tile, lake.Surroundings{})
		}
	}
	return g
}

func TestBuildGraph(t *testing.T) {
	t.Run("open grid", func(t *testing.T) {
		graph := BuildGraph(gridOf(t, "SXX", "XXX", "XXX"))
		assert.Len(t, graph.Nodes(), 9)
		assert.Len(t, graph.Edges(), 12)
		assert.Equal(t, []lake.Coordinate{c(1, 0), c(1, 2), c(0, 1), c(2, 1)}, graph.Neighbors(c(1, 1)))
	})

	t.Run("hole in the middle", func(t *testing.T) {
		graph := BuildGraph(gridOf(t, "SFF", "FHF", "FFG"))
		assert.Len(t, graph.Edges(), 8)
		assert.Empty(t, graph.Neighbors(c(1, 1)))
		assert.True(t, graph.Has(c(1, 1)))
	})

	t.Run("no edge touches a hole or filler", func(t *testing.T) {
		g := gridOf(t, "SFH", "FXF", "HFG")
		g.Expand(c(-1, 3))
		graph := BuildGraph(g)

		for _, e := range graph.Edges() {
			for _, end := range []lake.Coordinate{e.From, e.To} {
				tile := g.At(end)
				assert.NotEqual(t, lake.Hole, tile, "edge %v", e)
				assert.NotEqual(t, lake.Filler, tile, "edge %v", e)
			}
			_, err := lake.DirectionOf(e.To.Sub(e.From))
			assert.NoError(t, err)
		}
		assert.True(t, graph.Has(c(-1, 3)))
		assert.Empty(t, graph.Neighbors(c(-1, 0)))
	})
}

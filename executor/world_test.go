package executor

import (
	"testing"

	"github.com/beka-birhanu/vinom-pathfinder/lake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gymLake = []string{"SFFF", "FHFH", "FFFH", "HFFG"}

func TestNewWorld(t *testing.T) {
	tests := []struct {
		name string
		rows []string
		err  error
	}{
		{"gym 4x4", gymLake, nil},
		{"rectangular", []string{"SFG"}, nil},
		{"empty", nil, ErrEmptyWorld},
		{"ragged", []string{"SF", "F"}, ErrRaggedWorld},
		{"unknown letter", []string{"SX", "FG"}, ErrWorldTile},
		{"start elsewhere", []string{"FS", "FG"}, ErrStartPlacement},
		{"two starts", []string{"SS", "FG"}, ErrStartPlacement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := NewWorld(tt.rows)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rows, w.Rows())
		})
	}
}

func TestEpisode(t *testing.T) {
	w, err := NewWorld(gymLake)
	require.NoError(t, err)

	t.Run("moves off the lake are refused", func(t *testing.T) {
		ep := w.NewEpisode()
		assert.False(t, ep.Step(lake.Up))
		assert.False(t, ep.Step(lake.Left))
		assert.Equal(t, lake.StartCoordinate, ep.Position())

		scan := ep.Scan()
		assert.Equal(t, lake.Start, scan.Current)
		assert.Equal(t, lake.Surroundings{lake.Blocked, lake.Reachable, lake.Blocked, lake.Reachable}, scan.Surroundings)
	})

	t.Run("holes end the episode", func(t *testing.T) {
		ep := w.NewEpisode()
		require.True(t, ep.Step(lake.Right))
		require.True(t, ep.Step(lake.Down))

		assert.True(t, ep.Over())
		assert.Equal(t, lake.Hole, ep.Tile())
		assert.False(t, ep.Step(lake.Right))

		scan := ep.Scan()
		assert.Equal(t, lake.Coordinate{X: 1, Y: 1}, scan.Coordinate)
		assert.Equal(t, lake.Surroundings{}, scan.Surroundings)
	})

	t.Run("holes are reachable neighbours", func(t *testing.T) {
		ep := w.NewEpisode()
		require.True(t, ep.Step(lake.Down))
		assert.Equal(t, lake.Reachable, ep.Scan().Toward(lake.Right))
	})

	t.Run("goal", func(t *testing.T) {
		ep := w.NewEpisode()
		for _, d := range []lake.Direction{lake.Right, lake.Right, lake.Down, lake.Down, lake.Down, lake.Right} {
			ep.Step(d)
		}
		assert.Equal(t, lake.Goal, ep.Tile())
		assert.True(t, ep.Over())
	})
}

package executor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beka-birhanu/vinom-pathfinder/lake"
)

var (
	ErrEmptyWorld     = errors.New("world has no tiles")
	ErrRaggedWorld    = errors.New("world rows differ in length")
	ErrWorldTile      = errors.New("world tile must be one of S F H G")
	ErrStartPlacement = errors.New("world must have exactly one start, at the top-left corner")
)

// World is an immutable FrozenLake layout. Coordinates are relative to the
// start tile at the top-left corner.
type World struct {
	width  int
	height int
	tiles  [][]lake.Tile
}

// NewWorld parses rows of S, F, H and G letters.
func NewWorld(rows []string) (*World, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyWorld
	}

	w := &World{width: len(rows[0]), height: len(rows), tiles: make([][]lake.Tile, len(rows))}
	starts := 0
	for y, row := range rows {
		if len(row) != w.width {
			return nil, fmt.Errorf("%w: row %d has %d tiles, want %d", ErrRaggedWorld, y, len(row), w.width)
		}
		w.tiles[y] = make([]lake.Tile, w.width)
		for x, r := range row {
			t := lake.Tile(r)
			if !t.Settled() {
				return nil, fmt.Errorf("%w: %q at (%d, %d)", ErrWorldTile, r, x, y)
			}
			if t == lake.Start {
				starts++
			}
			w.tiles[y][x] = t
		}
	}
	if starts != 1 || w.tiles[0][0] != lake.Start {
		return nil, ErrStartPlacement
	}
	return w, nil
}

// Width returns the number of columns.
func (w *World) Width() int {
	return w.width
}

// Height returns the number of rows.
func (w *World) Height() int {
	return w.height
}

// Contains reports whether c lies on the lake.
func (w *World) Contains(c lake.Coordinate) bool {
	return c.X >= 0 && c.X < w.width && c.Y >= 0 && c.Y < w.height
}

// At returns the tile at c, which must be on the lake.
func (w *World) At(c lake.Coordinate) lake.Tile {
	return w.tiles[c.Y][c.X]
}

// Rows returns the layout as one string per row.
func (w *World) Rows() []string {
	rows := make([]string, w.height)
	for y, row := range w.tiles {
		var b strings.Builder
		for _, t := range row {
			b.WriteByte(byte(t))
		}
		rows[y] = b.String()
	}
	return rows
}

func (w *World) String() string {
	return strings.Join(w.Rows(), "\n")
}

// Episode is one walk over a world, starting on the start tile.
type Episode struct {
	world *World
	pos   lake.Coordinate
}

// NewEpisode places a walker on the start tile.
func (w *World) NewEpisode() *Episode {
	return &Episode{world: w}
}

// Position returns where the walker stands.
func (e *Episode) Position() lake.Coordinate {
	return e.pos
}

// Tile returns the tile under the walker.
func (e *Episode) Tile() lake.Tile {
	return e.world.At(e.pos)
}

// Over reports whether the walker is on a hole or the goal.
func (e *Episode) Over() bool {
	return e.Tile().Terminal()
}

// Step moves one tile in direction d. Moves off the lake, and any move once
// the episode is over, leave the walker in place. It reports whether the
// walker moved.
func (e *Episode) Step(d lake.Direction) bool {
	if e.Over() {
		return false
	}
	next := e.pos.Neighbor(d)
	if !e.world.Contains(next) {
		return false
	}
	e.pos = next
	return true
}

// Scan reports the tile under the walker and, for each direction, whether a
// step would move it. Every direction is undetermined once the episode is
// over.
func (e *Episode) Scan() lake.Scan {
	scan := lake.Scan{Current: e.Tile(), Coordinate: e.pos}
	if e.Over() {
		return scan
	}
	for _, d := range lake.Directions {
		scan.Surroundings[d] = lake.Blocked
		if e.world.Contains(e.pos.Neighbor(d)) {
			scan.Surroundings[d] = lake.Reachable
		}
	}
	return scan
}

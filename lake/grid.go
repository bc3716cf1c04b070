/*
Package lake models the explorer's knowledge of a FrozenLake world.

A Grid is a logically infinite lattice of tiles materialised as a rectangle
that grows on demand. Coordinates handed to a Grid are logical: (0,0) is
always the Start tile, even after the rectangle has grown toward negative
indices. Materialised indices, as seen through Rows and Each, shift with
growth while logical coordinates keep addressing the same tile.

Update is the only way observed state enters the grid; Expand is the only
way the rectangle grows.
*/
package lake

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSize = errors.New("grid size must be positive")

// Grid is the explorer's map. It is owned by a single goroutine and is not
// safe for concurrent use.
type Grid struct {
	width  int        // Number of materialised columns.
	height int        // Number of materialised rows.
	origin Coordinate // Materialised index of logical (0,0).
	cells  [][]Tile   // cells[row][col]
}

// New creates a size x size grid of Unknown tiles with Start at (0,0).
func New(size int) (*Grid, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	cells := make([][]Tile, size)
	for row := range cells {
		cells[row] = make([]Tile, size)
		for col := range cells[row] {
			cells[row][col] = Unknown
		}
	}
	cells[0][0] = Start

	return &Grid{width: size, height: size, cells: cells}, nil
}

// Width returns the number of materialised columns.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of materialised rows.
func (g *Grid) Height() int {
	return g.height
}

// Origin returns the materialised index of the logical origin.
func (g *Grid) Origin() Coordinate {
	return g.origin
}

// InBounds reports whether c is inside the materialised rectangle.
func (g *Grid) InBounds(c Coordinate) bool {
	i := c.Add(g.origin)
	return i.X >= 0 && i.X < g.width && i.Y >= 0 && i.Y < g.height
}

// At returns the tile at c. Reading outside the materialised rectangle is a
// programming error and panics; callers check InBounds or go through Update.
func (g *Grid) At(c Coordinate) Tile {
	if !g.InBounds(c) {
		panic(fmt.Sprintf("lake: coordinate %s outside materialised %dx%d grid", c, g.width, g.height))
	}
	i := c.Add(g.origin)
	return g.cells[i.Y][i.X]
}

// Update records an observation of the tile at c. The tile takes the
// observed state unless it is Start. Every Reachable neighbour that is not
// already settled becomes Unknown, growing the grid when it lies outside.
// Calling Update twice with the same arguments has the same effect as once.
// It reports whether any tile changed.
func (g *Grid) Update(c Coordinate, observed Tile, around Surroundings) bool {
	changed := false

	g.ensure(c)
	if current := g.At(c); current != Start && current != observed {
		g.set(c, observed)
		changed = true
	}

	for _, d := range Directions {
		if around[d] != Reachable {
			continue
		}
		n := c.Neighbor(d)
		g.ensure(n)
		if t := g.At(n); t.Settled() || t == Unknown {
			continue
		}
		g.set(n, Unknown)
		changed = true
	}

	return changed
}

// Expand grows the rectangle on whichever edges are needed to include
// toward, padding new cells with Filler. It returns how far existing
// materialised indices moved right and down; logical coordinates are
// unaffected. The rectangle never shrinks.
func (g *Grid) Expand(toward Coordinate) Coordinate {
	i := toward.Add(g.origin)
	left := max(0, -i.X)
	right := max(0, i.X-(g.width-1))
	top := max(0, -i.Y)
	bottom := max(0, i.Y-(g.height-1))
	if left+right+top+bottom == 0 {
		return Coordinate{}
	}

	width := g.width + left + right
	height := g.height + top + bottom
	cells := make([][]Tile, height)
	for row := range cells {
		cells[row] = make([]Tile, width)
		for col := range cells[row] {
			cells[row][col] = Filler
		}
	}
	for row := 0; row < g.height; row++ {
		copy(cells[row+top][left:], g.cells[row])
	}

	shift := Coordinate{X: left, Y: top}
	g.cells = cells
	g.width = width
	g.height = height
	g.origin = g.origin.Add(shift)
	return shift
}

// Each calls fn for every materialised tile in row-major order with its
// logical coordinate.
func (g *Grid) Each(fn func(Coordinate, Tile)) {
	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			fn(Coordinate{X: col, Y: row}.Sub(g.origin), g.cells[row][col])
		}
	}
}

// Find returns the first tile equal to t in row-major order.
func (g *Grid) Find(t Tile) (Coordinate, bool) {
	for row := 0; row < g.height; row++ {
		for col := 0; col < g.width; col++ {
			if g.cells[row][col] == t {
				return Coordinate{X: col, Y: row}.Sub(g.origin), true
			}
		}
	}
	return Coordinate{}, false
}

// Count returns how many tiles equal t.
func (g *Grid) Count(t Tile) int {
	n := 0
	for _, row := range g.cells {
		for _, cell := range row {
			if cell == t {
				n++
			}
		}
	}
	return n
}

// Rows returns the materialised rectangle as one string per row.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	for i, row := range g.cells {
		var b strings.Builder
		for _, cell := range row {
			b.WriteByte(byte(cell))
		}
		rows[i] = b.String()
	}
	return rows
}

// String provides a textual representation of the grid.
func (g *Grid) String() string {
	var b strings.Builder
	for _, row := range g.cells {
		for i, cell := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(byte(cell))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ensure materialises c, growing the rectangle if necessary.
func (g *Grid) ensure(c Coordinate) {
	if !g.InBounds(c) {
		g.Expand(c)
	}
}

// set writes t at c, which must be in bounds.
func (g *Grid) set(c Coordinate, t Tile) {
	i := c.Add(g.origin)
	g.cells[i.Y][i.X] = t
}

package executor

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/lake"
)

const (
	GeneratorRandom = "random"
	GeneratorMaze   = "maze"

	maxWorldSize = 64
)

var (
	ErrWorldSize         = errors.New("generated world size out of range")
	ErrFrozenProbability = errors.New("frozen probability must be in (0, 1]")
	ErrUnknownGenerator  = errors.New("unknown world generator")
	ErrExpandProbability = errors.New("expand probability must be in [0, 1]")
)

// GeneratorConfig selects and parameterises a world generator.
type GeneratorConfig struct {
	Kind              string  // GeneratorRandom or GeneratorMaze.
	Size              int     // Side of the square world.
	FrozenProbability float64 // Chance of a frozen tile in a random world.
	ExpandProbability float64 // Chance the world is one tile wider and taller than Size.
	Seed              int64   // Zero seeds from the clock.
}

// Generate builds a world as c describes.
func Generate(c GeneratorConfig) (*World, error) {
	if c.ExpandProbability < 0 || c.ExpandProbability > 1 {
		return nil, fmt.Errorf("%w: %v", ErrExpandProbability, c.ExpandProbability)
	}
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	size := c.Size
	if rng.Float64() < c.ExpandProbability {
		size++
	}

	switch c.Kind {
	case GeneratorRandom, "":
		return RandomWorld(size, c.FrozenProbability, rng)
	case GeneratorMaze:
		return MazeWorld(size, rng)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenerator, c.Kind)
	}
}

// RandomWorld draws size x size lakes where each tile is frozen with
// probability p, with the start at the top-left and the goal at the
// bottom-right, until the goal can be walked to.
func RandomWorld(size int, p float64, rng *rand.Rand) (*World, error) {
	if size < 2 || size > maxWorldSize {
		return nil, fmt.Errorf("%w: %d", ErrWorldSize, size)
	}
	if p <= 0 || p > 1 {
		return nil, fmt.Errorf("%w: %v", ErrFrozenProbability, p)
	}

	for {
		tiles := make([][]byte, size)
		for y := range tiles {
			tiles[y] = make([]byte, size)
			for x := range tiles[y] {
				tiles[y][x] = byte(lake.Hole)
				if rng.Float64() < p {
					tiles[y][x] = byte(lake.Frozen)
				}
			}
		}
		tiles[0][0] = byte(lake.Start)
		tiles[size-1][size-1] = byte(lake.Goal)

		if goalReachable(tiles) {
			return NewWorld(toRows(tiles))
		}
	}
}

// goalReachable walks every non-hole tile reachable from the start.
func goalReachable(tiles [][]byte) bool {
	visited := map[lake.Coordinate]struct{}{lake.StartCoordinate: {}}
	stack := []lake.Coordinate{lake.StartCoordinate}

	for len(stack) > 0 {
		c := pop(&stack)
		if lake.Tile(tiles[c.Y][c.X]) == lake.Goal {
			return true
		}
		for _, d := range lake.Directions {
			n := c.Neighbor(d)
			if n.Y < 0 || n.Y >= len(tiles) || n.X < 0 || n.X >= len(tiles[n.Y]) {
				continue
			}
			if lake.Tile(tiles[n.Y][n.X]) == lake.Hole {
				continue
			}
			if _, seen := visited[n]; !seen {
				visited[n] = struct{}{}
				stack = append(stack, n)
			}
		}
	}
	return false
}

// pop removes and returns the last element of a stack of coordinates.
func pop(s *[]lake.Coordinate) lake.Coordinate {
	lastIndex := len(*s) - 1
	popped := (*s)[lastIndex]
	*s = (*s)[:lastIndex]
	return popped
}

// MazeWorld carves a perfect maze with Wilson's algorithm and lays it out as
// a lake: maze cells sit on even coordinates, opened walls between them are
// frozen and everything else is a hole. An even size leaves the last row and
// column as holes. The goal is the maze cell furthest from the start
// corner.
func MazeWorld(size int, rng *rand.Rand) (*World, error) {
	if size < 3 || size > maxWorldSize {
		return nil, fmt.Errorf("%w: %d", ErrWorldSize, size)
	}

	cells := (size + 1) / 2
	tiles := make([][]byte, size)
	for y := range tiles {
		tiles[y] = make([]byte, size)
		for x := range tiles[y] {
			tiles[y][x] = byte(lake.Hole)
		}
	}

	for _, passage := range wilson(cells, rng) {
		from, to := passage[0], passage[1]
		tiles[2*from.Y][2*from.X] = byte(lake.Frozen)
		tiles[2*to.Y][2*to.X] = byte(lake.Frozen)
		tiles[from.Y+to.Y][from.X+to.X] = byte(lake.Frozen)
	}
	tiles[0][0] = byte(lake.Start)
	tiles[2*(cells-1)][2*(cells-1)] = byte(lake.Goal)

	return NewWorld(toRows(tiles))
}

// wilson returns the passages of a uniform spanning tree over an n x n grid
// of cells. Each random walk remembers only the last direction it left a
// cell by, which erases its loops.
func wilson(n int, rng *rand.Rand) [][2]lake.Coordinate {
	inTree := map[lake.Coordinate]bool{{X: rng.Intn(n), Y: rng.Intn(n)}: true}
	neighbors := func(c lake.Coordinate) []lake.Coordinate {
		var result []lake.Coordinate
		for _, d := range lake.Directions {
			nb := c.Neighbor(d)
			if nb.X >= 0 && nb.X < n && nb.Y >= 0 && nb.Y < n {
				result = append(result, nb)
			}
		}
		return result
	}

	var passages [][2]lake.Coordinate
	for _, idx := range rng.Perm(n * n) {
		start := lake.Coordinate{X: idx % n, Y: idx / n}
		if inTree[start] {
			continue
		}

		next := map[lake.Coordinate]lake.Coordinate{}
		for cell := start; !inTree[cell]; {
			nbrs := neighbors(cell)
			next[cell] = nbrs[rng.Intn(len(nbrs))]
			cell = next[cell]
		}

		for cell := start; !inTree[cell]; cell = next[cell] {
			inTree[cell] = true
			passages = append(passages, [2]lake.Coordinate{cell, next[cell]})
		}
	}
	return passages
}

func toRows(tiles [][]byte) []string {
	rows := make([]string, len(tiles))
	for y, row := range tiles {
		rows[y] = string(row)
	}
	return rows
}

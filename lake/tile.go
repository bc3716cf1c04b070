package lake

import (
	"errors"
	"fmt"
)

var ErrInvalidTile = errors.New("invalid tile")

// Tile is the state of a single cell, encoded by its map letter.
type Tile byte

const (
	Start       Tile = 'S'
	Frozen      Tile = 'F'
	Hole        Tile = 'H'
	Goal        Tile = 'G'
	Unknown     Tile = 'X'
	Ignored     Tile = 'I'
	Filler      Tile = 'O'
	Unreachable Tile = 'Z'
)

// ParseTile converts a map letter into a Tile.
func ParseTile(r rune) (Tile, error) {
	t := Tile(r)
	if r > 0xff || !t.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTile, r)
	}
	return t, nil
}

// Valid reports whether t is one of the known tile states.
func (t Tile) Valid() bool {
	switch t {
	case Start, Frozen, Hole, Goal, Unknown, Ignored, Filler, Unreachable:
		return true
	}
	return false
}

// Terminal reports whether the executor forbids leaving t.
func (t Tile) Terminal() bool {
	return t == Hole || t == Goal
}

// Settled reports whether t was observed directly and must not be
// demoted back to Unknown by a neighbour's scan.
func (t Tile) Settled() bool {
	return t == Start || t == Frozen || t == Hole || t == Goal
}

// Traversable reports whether routes may pass through t.
func (t Tile) Traversable() bool {
	return t != Hole && t != Filler
}

func (t Tile) String() string {
	return string(rune(t))
}

// Adjacency is what a scan learned about one neighbouring tile.
type Adjacency uint8

const (
	// Undetermined is reported for every direction of a terminal tile.
	Undetermined Adjacency = iota
	Reachable
	Blocked
)

func (a Adjacency) String() string {
	switch a {
	case Reachable:
		return "reachable"
	case Blocked:
		return "blocked"
	default:
		return "undetermined"
	}
}

// Surroundings holds one Adjacency per Direction.
type Surroundings [4]Adjacency

// Scan is the executor's report after a single step.
type Scan struct {
	Current      Tile
	Surroundings Surroundings
	Coordinate   Coordinate
}

// Toward returns what the scan saw in direction d.
func (s Scan) Toward(d Direction) Adjacency {
	return s.Surroundings[d]
}

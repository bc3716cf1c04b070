package pathfind

import (
	"github.com/beka-birhanu/vinom-pathfinder/lake"
)

// Selection tells the explorer what kind of target the selector chose.
type Selection uint8

const (
	SelectUnknown Selection = iota
	SelectIgnored
	SelectGoal
	SelectExhausted
)

func (s Selection) String() string {
	switch s {
	case SelectUnknown:
		return "unknown"
	case SelectIgnored:
		return "ignored"
	case SelectGoal:
		return "goal"
	case SelectExhausted:
		return "exhausted"
	default:
		return "invalid"
	}
}

// Selector picks the next exploration target. It remembers the previous
// target so that a tile chosen in two consecutive rounds is demoted: an
// Unknown tile becomes Ignored and an Ignored tile becomes Unreachable.
type Selector struct {
	prev     lake.Coordinate
	prevKind Selection
	hasPrev  bool
}

// NewSelector returns a selector with no previous target.
func NewSelector() *Selector {
	return &Selector{}
}

// Next chooses a target on g. Demotions are written to g through Update.
func (s *Selector) Next(g *lake.Grid) (lake.Coordinate, Selection) {
	for {
		c, ok := g.Find(lake.Unknown)
		if !ok {
			break
		}
		if s.hasPrev && s.prev == c {
			g.Update(c, lake.Ignored, lake.Surroundings{})
			continue
		}
		return s.remember(c, SelectUnknown)
	}

	for {
		c, ok := g.Find(lake.Ignored)
		if !ok {
			break
		}
		// A tile demoted to Ignored during this call still gets one round as
		// an Ignored target before it can be written off.
		if s.hasPrev && s.prev == c && s.prevKind == SelectIgnored {
			g.Update(c, lake.Unreachable, lake.Surroundings{})
			continue
		}
		return s.remember(c, SelectIgnored)
	}

	if c, ok := g.Find(lake.Goal); ok {
		return s.remember(c, SelectGoal)
	}

	return lake.Coordinate{}, SelectExhausted
}

func (s *Selector) remember(c lake.Coordinate, kind Selection) (lake.Coordinate, Selection) {
	s.prev, s.prevKind, s.hasPrev = c, kind, true
	return c, kind
}

// Package route holds enumerated routes and the direction and action
// sequences derived from them.
package route

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-pathfinder/lake"
)

var (
	ErrEmptyRoute   = errors.New("route has no coordinates")
	ErrNotFromStart = errors.New("route does not begin at start")
	ErrInvalidStep  = errors.New("route step is not a cardinal move")
)

// Route is an ordered coordinate sequence beginning at the start tile where
// consecutive coordinates differ by one cardinal step. Routes are read-only
// once enumerated.
type Route []lake.Coordinate

// New copies steps into a Route after validating it.
func New(steps []lake.Coordinate) (Route, error) {
	r := make(Route, len(steps))
	copy(r, steps)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate checks the route invariants.
func (r Route) Validate() error {
	if len(r) == 0 {
		return ErrEmptyRoute
	}
	if r[0] != lake.StartCoordinate {
		return fmt.Errorf("%w: begins at %s", ErrNotFromStart, r[0])
	}
	_, err := r.Directions()
	return err
}

// Target returns the last coordinate of the route.
func (r Route) Target() lake.Coordinate {
	return r[len(r)-1]
}

// Steps returns the number of moves the route takes.
func (r Route) Steps() int {
	return max(0, len(r)-1)
}

// Directions returns the direction of every move, one fewer than the
// number of coordinates.
func (r Route) Directions() ([]lake.Direction, error) {
	dirs := make([]lake.Direction, 0, r.Steps())
	for i := 1; i < len(r); i++ {
		d, err := lake.DirectionOf(r[i].Sub(r[i-1]))
		if err != nil {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStep, r[i-1], r[i])
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

// Actions returns the executor action for every move.
func (r Route) Actions() ([]lake.Action, error) {
	dirs, err := r.Directions()
	if err != nil {
		return nil, err
	}
	return ActionsOf(dirs), nil
}

// ActionsOf maps directions to executor actions.
func ActionsOf(dirs []lake.Direction) []lake.Action {
	actions := make([]lake.Action, len(dirs))
	for i, d := range dirs {
		actions[i] = d.Action()
	}
	return actions
}

// DirectionsOf maps executor actions back to directions.
func DirectionsOf(actions []lake.Action) ([]lake.Direction, error) {
	dirs := make([]lake.Direction, len(actions))
	for i, a := range actions {
		d, err := a.Direction()
		if err != nil {
			return nil, err
		}
		dirs[i] = d
	}
	return dirs, nil
}

// Trace integrates directions from start back into a coordinate sequence.
func Trace(start lake.Coordinate, dirs []lake.Direction) Route {
	r := make(Route, 0, len(dirs)+1)
	r = append(r, start)
	for _, d := range dirs {
		start = start.Neighbor(d)
		r = append(r, start)
	}
	return r
}

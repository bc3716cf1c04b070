package lake

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidAction    = errors.New("invalid action")
)

// Coordinate addresses a tile. X is the column and Y the row, origin at the
// top-left with Y growing downward.
type Coordinate struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

// StartCoordinate is where every route begins.
var StartCoordinate = Coordinate{X: 0, Y: 0}

// Add returns the component-wise sum of c and o.
func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{X: c.X + o.X, Y: c.Y + o.Y}
}

// Sub returns the component-wise difference c - o.
func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{X: c.X - o.X, Y: c.Y - o.Y}
}

// Neighbor returns the coordinate one step away in direction d.
func (c Coordinate) Neighbor(d Direction) Coordinate {
	return c.Add(d.Offset())
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// Direction is one of the four cardinal directions.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in scan order.
var Directions = [...]Direction{Up, Down, Left, Right}

// Action is the executor's code for moving in a direction.
type Action uint8

const (
	ActionLeft  Action = 0
	ActionDown  Action = 1
	ActionRight Action = 2
	ActionUp    Action = 3
)

var (
	offsets = [...]Coordinate{
		Up:    {X: 0, Y: -1},
		Down:  {X: 0, Y: 1},
		Left:  {X: -1, Y: 0},
		Right: {X: 1, Y: 0},
	}
	directionActions = [...]Action{
		Up:    ActionUp,
		Down:  ActionDown,
		Left:  ActionLeft,
		Right: ActionRight,
	}
	actionDirections = [...]Direction{
		ActionLeft:  Left,
		ActionDown:  Down,
		ActionRight: Right,
		ActionUp:    Up,
	}
	directionCodes = [...]string{
		Up:    "u",
		Down:  "d",
		Left:  "l",
		Right: "r",
	}
)

// Valid reports whether d is one of the four cardinal members.
func (d Direction) Valid() bool {
	return int(d) < len(offsets)
}

// Offset returns the unit coordinate delta for d.
// It panics for a direction that is not Valid.
func (d Direction) Offset() Coordinate {
	return offsets[d]
}

// Action returns the executor action for d.
func (d Direction) Action() Action {
	return directionActions[d]
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionCodes[d]
}

// DirectionOf returns the direction whose offset equals delta.
func DirectionOf(delta Coordinate) (Direction, error) {
	for _, d := range Directions {
		if offsets[d] == delta {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: delta %s is not a cardinal step", ErrInvalidDirection, delta)
}

// ParseDirection parses the single letter code used in results ("u", "d", "l", "r").
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions {
		if directionCodes[d] == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Valid reports whether a is one of the four executor actions.
func (a Action) Valid() bool {
	return int(a) < len(actionDirections)
}

// Direction returns the direction moved by a.
func (a Action) Direction() (Direction, error) {
	if !a.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidAction, a)
	}
	return actionDirections[a], nil
}

// Package netconfig defines lightweight types shared between the client core and
// the wire protocol. It must have zero dependencies on ebiten or any graphics
// library so the core can be exercised headless.
package netconfig

import "fmt"

// EntityID is the server-assigned identifier of an entity on the map.
type EntityID int

// Direction is one of the four cardinal movement directions. There are no diagonals.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in declaration order.
var Directions = [...]Direction{Up, Down, Left, Right}

var directionNames = map[Direction]string{
	Up:    "up",
	Down:  "down",
	Left:  "left",
	Right: "right",
}

// String returns the wire name of the direction.
func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return "unknown"
}

// Unit returns the unit vector for the direction in screen space, where y grows downward.
func (d Direction) Unit() (dx, dy float64) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

// Valid reports whether d is one of the four known directions.
func (d Direction) Valid() bool {
	_, ok := directionNames[d]
	return ok
}

// ParseDirection converts a wire name ("up", "down", "left", "right") into a Direction.
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if name == s {
			return d, nil
		}
	}
	return Down, fmt.Errorf("unknown direction %q", s)
}

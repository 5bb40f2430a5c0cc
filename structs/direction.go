package structs

import "fmt"

// Direction is one of the four unit headings, or None when the snake is paused.
type Direction uint8

// Left, Down, Right, Up are declared in rotation order: each one is the
// previous turned anti-clockwise on screen.
const (
	None Direction = iota
	Left
	Down
	Right
	Up
)

// Directions lists the four unit headings in rotation order.
var Directions = [4]Direction{Left, Down, Right, Up}

// Delta returns the movement vector of d.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	}
	return 0, 0
}

// Rotate walks the cycle [Left, Down, Right, Up] by steps positions.
// One step is a left turn, two a reversal, three a right turn.
func (d Direction) Rotate(steps int) Direction {
	if d == None || d > Up {
		return None
	}
	i := (int(d-Left) + steps) % len(Directions)
	if i < 0 {
		i += len(Directions)
	}
	return Directions[i]
}

// TurnLeft is Rotate(1).
func (d Direction) TurnLeft() Direction { return d.Rotate(1) }

// TurnRight is Rotate(3).
func (d Direction) TurnRight() Direction { return d.Rotate(3) }

// Reverse is Rotate(2).
func (d Direction) Reverse() Direction { return d.Rotate(2) }

// IsOpposite reports whether a and b sum to the zero vector.
// None is not opposite to anything.
func IsOpposite(a, b Direction) bool {
	if a == None || b == None {
		return false
	}
	ax, ay := a.Delta()
	bx, by := b.Delta()
	return ax+bx == 0 && ay+by == 0
}

func (d Direction) String() string {
	switch d {
	case None:
		return "none"
	case Left:
		return "left"
	case Down:
		return "down"
	case Right:
		return "right"
	case Up:
		return "up"
	}
	return "????"
}

// ParseDirection accepts the names produced by String, plus "top" and
// "bottom" which older clients send.
func ParseDirection(name string) (Direction, error) {
	switch name {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "up", "top":
		return Up, nil
	case "down", "bottom":
		return Down, nil
	case "none":
		return None, nil
	}
	return None, fmt.Errorf("invalid direction '%s' provided", name)
}

// Sign returns the unit heading along one axis for a signed distance:
// horizontal when vertical is false. Zero distance yields None.
func Sign(diff int, vertical bool) Direction {
	switch {
	case diff > 0 && vertical:
		return Down
	case diff < 0 && vertical:
		return Up
	case diff > 0:
		return Right
	case diff < 0:
		return Left
	}
	return None
}

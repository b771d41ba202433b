package types

import "fmt"

// Point is a cell on a square toroidal grid.
type Point struct {
	X uint `json:"x"`
	Y uint `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Transform returns the point moved steps cells towards the direction on a grid
// of the given side. Both axes wrap independently, so leaving column 0 to the left
// lands on column side-1 and leaving column side-1 to the right lands on column 0.
func (p Point) Transform(d Direction, steps, side uint) Point {
	dx, dy := d.delta()
	return Point{
		X: wrap(p.X, dx, steps, side),
		Y: wrap(p.Y, dy, steps, side),
	}
}

func wrap(value uint, sign int, steps, side uint) uint {
	if side == 0 || sign == 0 {
		return value
	}
	steps %= side
	value %= side
	if sign < 0 {
		return (value + side - steps) % side
	}
	return (value + steps) % side
}

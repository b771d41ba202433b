package types

import (
	"encoding"
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrInvalidDirection is returned when a direction name is not one of up, down, left or right.
	ErrInvalidDirection = errors.New("invalid direction")
	// ErrEmptyInput is returned when a random choice is requested from an empty set.
	ErrEmptyInput = errors.New("empty input")
)

// Direction is a heading on the grid.
type Direction uint8

var (
	_ encoding.TextMarshaler   = (*Direction)(nil)
	_ encoding.TextUnmarshaler = (*Direction)(nil)
)

const (
	DirectionUp Direction = iota
	DirectionDown
	DirectionLeft
	DirectionRight
)

// Directions lists every valid heading.
var Directions = []Direction{DirectionUp, DirectionDown, DirectionLeft, DirectionRight}

// ParseDirection parses a lowercase direction name.
func ParseDirection(name string) (Direction, error) {
	switch name {
	case "up":
		return DirectionUp, nil
	case "down":
		return DirectionDown, nil
	case "left":
		return DirectionLeft, nil
	case "right":
		return DirectionRight, nil
	default:
		return DirectionUp, fmt.Errorf("%w: %q", ErrInvalidDirection, name)
	}
}

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "unknown"
	}
}

func (d Direction) MarshalText() ([]byte, error) {
	if d > DirectionRight {
		return nil, ErrInvalidDirection
	}
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(b []byte) error {
	parsed, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionUp:
		return DirectionDown
	case DirectionDown:
		return DirectionUp
	case DirectionLeft:
		return DirectionRight
	default:
		return DirectionLeft
	}
}

// delta returns the signed unit step of the direction.
func (d Direction) delta() (dx, dy int) {
	switch d {
	case DirectionUp:
		return 0, -1
	case DirectionDown:
		return 0, 1
	case DirectionLeft:
		return -1, 0
	default:
		return 1, 0
	}
}

// RejectOpposite returns the candidates that are not equal to forbidden.
// The input slice is left untouched.
func RejectOpposite(candidates []Direction, forbidden Direction) []Direction {
	filtered := make([]Direction, 0, len(candidates))
	for _, d := range candidates {
		if d != forbidden {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// ChooseRandom picks one of the candidates uniformly.
func ChooseRandom(rng *rand.Rand, candidates []Direction) (Direction, error) {
	if len(candidates) == 0 {
		return DirectionUp, ErrEmptyInput
	}
	return candidates[rng.Intn(len(candidates))], nil
}

// RandomDirection picks one of the four headings uniformly.
func RandomDirection(rng *rand.Rand) Direction {
	return Directions[rng.Intn(len(Directions))]
}

package constants

import "time"

const (
	// GridSide is the default number of cells on each side of the square grid
	GridSide uint = 10
	// SnakeStartLength is the default number of segments of a new snake
	SnakeStartLength uint = 3
	// TickInterval is the default time between two simulation ticks
	TickInterval = 10 * time.Second

	// MinGridSide is the smallest grid on which a snake can turn
	MinGridSide uint = 2
	// FoodPlacementAttempts bounds random sampling before falling back to a scan
	FoodPlacementAttempts = 64
)

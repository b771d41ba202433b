package state

import (
	"context"

	"github.com/cbodonnell/snek/pkg/game"
	"github.com/cbodonnell/snek/pkg/game/types"
)

// StateManager provides shared access to the game and to the directions
// queued for the next tick. Implementations must be thread-safe.
type StateManager interface {
	// EnqueueDirection queues a direction and returns a copy of the pending directions.
	EnqueueDirection(ctx context.Context, direction types.Direction) ([]types.Direction, error)
	// PendingDirections returns a copy of the pending directions.
	PendingDirections(ctx context.Context) ([]types.Direction, error)
	// Game returns a copy of the current game.
	Game(ctx context.Context) (*game.Game, error)
	// Advance runs one tick with every pending direction and clears the queue.
	Advance(ctx context.Context) (game.TickResult, error)
}

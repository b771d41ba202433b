package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbodonnell/snek/pkg/game"
	"github.com/cbodonnell/snek/pkg/game/types"
	"github.com/cbodonnell/snek/pkg/queue"
)

// InMemoryStateManager guards the game and the direction queue with independent locks.
// Advance is the only method holding both, and it always takes the game lock first.
type InMemoryStateManager struct {
	lock       sync.Mutex
	game       *game.Game
	directions queue.Queue[types.Direction]
}

var _ StateManager = (*InMemoryStateManager)(nil)

func NewInMemoryStateManager(g *game.Game) *InMemoryStateManager {
	return &InMemoryStateManager{
		game:       g,
		directions: queue.NewInMemoryQueue[types.Direction](),
	}
}

func (m *InMemoryStateManager) EnqueueDirection(ctx context.Context, direction types.Direction) ([]types.Direction, error) {
	if direction > types.DirectionRight {
		return nil, fmt.Errorf("failed to enqueue direction %d: %w", direction, types.ErrInvalidDirection)
	}

	return m.directions.EnqueueAndRead(direction), nil
}

func (m *InMemoryStateManager) PendingDirections(ctx context.Context) ([]types.Direction, error) {
	return m.directions.ReadAllMessages(), nil
}

func (m *InMemoryStateManager) Game(ctx context.Context) (*game.Game, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.game == nil {
		return nil, fmt.Errorf("game is nil")
	}
	return m.game.Copy(), nil
}

func (m *InMemoryStateManager) Advance(ctx context.Context) (game.TickResult, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.game == nil {
		return game.TickResult{}, fmt.Errorf("game is nil")
	}

	var result game.TickResult
	m.directions.Drain(func(directions []types.Direction) {
		result = m.game.Run(directions)
	})
	result.Snapshot = m.game.Copy()

	return result, nil
}

package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/snek/pkg/game"
	"github.com/cbodonnell/snek/pkg/log"
	"github.com/cbodonnell/snek/pkg/state"
)

// TickWorker advances the shared game on a fixed interval.
type TickWorker struct {
	stateManager state.StateManager
	interval     time.Duration
	frameChan    chan<- *game.Game
	saveRunChan  chan<- SaveRunRequest
}

type NewTickWorkerOptions struct {
	StateManager state.StateManager
	Interval     time.Duration
	// FrameChan receives a snapshot after every tick. Optional.
	FrameChan chan<- *game.Game
	// SaveRunChan receives every life that ended during a tick. Optional.
	SaveRunChan chan<- SaveRunRequest
}

// NewTickWorker creates a new TickWorker.
// Each tick drains the queued directions into one game tick. The next tick is
// scheduled once the previous one has completed, so ticks are never coalesced.
func NewTickWorker(opts NewTickWorkerOptions) *TickWorker {
	return &TickWorker{
		stateManager: opts.StateManager,
		interval:     opts.Interval,
		frameChan:    opts.FrameChan,
		saveRunChan:  opts.SaveRunChan,
	}
}

// Start runs the first tick immediately and then one tick per interval until ctx is done.
func (w *TickWorker) Start(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-timer.C:
			w.tick(ctx, t)
			timer.Reset(w.interval)
		}
	}
}

func (w *TickWorker) tick(ctx context.Context, t time.Time) {
	result, err := w.stateManager.Advance(ctx)
	if err != nil {
		log.Error("Failed to run game tick: %v", err)
		return
	}
	log.Debug("Tick %d took %s", result.Tick, time.Since(t))

	if result.Run != nil && w.saveRunChan != nil {
		saveRequest := SaveRunRequest{
			EndedAt: t,
			Run:     *result.Run,
		}
		select {
		case w.saveRunChan <- saveRequest:
		case <-ctx.Done():
			return
		}
	}

	if result.Snapshot != nil && w.frameChan != nil {
		select {
		case w.frameChan <- result.Snapshot:
		default:
			log.Warn("Frame channel is full, dropping frame for tick %d", result.Tick)
		}
	}
}

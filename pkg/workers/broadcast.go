package workers

import (
	"context"

	"github.com/cbodonnell/snek/pkg/game"
	"github.com/cbodonnell/snek/pkg/render"
)

// Broadcaster publishes rendered frames.
type Broadcaster interface {
	Broadcast(frame []byte)
}

type FrameBroadcastWorker struct {
	broadcaster Broadcaster
	frameChan   <-chan *game.Game
}

type NewFrameBroadcastWorkerOptions struct {
	Broadcaster Broadcaster
	FrameChan   <-chan *game.Game
}

// NewFrameBroadcastWorker creates a new FrameBroadcastWorker.
// The worker renders the snapshot of every tick and broadcasts it.
func NewFrameBroadcastWorker(opts NewFrameBroadcastWorkerOptions) *FrameBroadcastWorker {
	return &FrameBroadcastWorker{
		broadcaster: opts.Broadcaster,
		frameChan:   opts.FrameChan,
	}
}

func (w *FrameBroadcastWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case snapshot, ok := <-w.frameChan:
			if !ok {
				return
			}
			w.broadcaster.Broadcast([]byte(render.Render(snapshot)))
		}
	}
}

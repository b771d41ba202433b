package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/snek/pkg/game"
	"github.com/cbodonnell/snek/pkg/log"
	"github.com/cbodonnell/snek/pkg/repositories"
	"github.com/cbodonnell/snek/pkg/repositories/models"
	"github.com/google/uuid"
)

type SaveRunWorker struct {
	repository  repositories.Repository
	saveRunChan <-chan SaveRunRequest
}

type NewSaveRunWorkerOptions struct {
	Repository  repositories.Repository
	SaveRunChan <-chan SaveRunRequest
}

type SaveRunRequest struct {
	EndedAt time.Time
	Run     game.RunSummary
}

// NewSaveRunWorker creates a new SaveRunWorker.
// The worker records every life that ended in the game loop to the repository.
func NewSaveRunWorker(opts NewSaveRunWorkerOptions) *SaveRunWorker {
	return &SaveRunWorker{
		repository:  opts.Repository,
		saveRunChan: opts.SaveRunChan,
	}
}

func (w *SaveRunWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case saveRequest, ok := <-w.saveRunChan:
			if !ok {
				return
			}
			w.saveRun(ctx, saveRequest)
		}
	}
}

func (w *SaveRunWorker) saveRun(ctx context.Context, saveRequest SaveRunRequest) {
	run := &models.Run{
		ID:      uuid.New(),
		Score:   saveRequest.Run.Score,
		Length:  saveRequest.Run.Length,
		Ticks:   saveRequest.Run.Ticks,
		EndedAt: saveRequest.EndedAt.UTC(),
	}
	if err := w.repository.SaveRun(ctx, run); err != nil {
		log.Error("Failed to save run: %v", err)
		return
	}
	log.Info("Saved run %s with score %d", run.ID, run.Score)
}

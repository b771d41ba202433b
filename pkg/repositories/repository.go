package repositories

import (
	"context"
	"embed"

	"github.com/cbodonnell/snek/pkg/repositories/models"
	"github.com/google/uuid"
)

//go:embed migrations
var migrations embed.FS

// Repository stores the history of finished runs.
// Implementations must be safe for concurrent use.
type Repository interface {
	Close(ctx context.Context) error
	SaveRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	// ListRuns returns at most limit runs, best score first and most recent first among equal scores.
	ListRuns(ctx context.Context, limit int) ([]*models.Run, error)
}

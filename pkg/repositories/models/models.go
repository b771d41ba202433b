package models

import (
	"time"

	"github.com/google/uuid"
)

// Run is one finished life of the snake.
type Run struct {
	ID      uuid.UUID `json:"id"`
	Score   uint      `json:"score"`
	Length  int       `json:"length"`
	Ticks   uint64    `json:"ticks"`
	EndedAt time.Time `json:"ended_at"`
}

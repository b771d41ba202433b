package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/snek/pkg/log"
	"github.com/cbodonnell/snek/pkg/repositories/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteMemory is the path of a private in-memory database.
const SQLiteMemory = ":memory:"

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens the database at path and applies the migrations.
// The caller is responsible for calling Close() on the repository.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// every connection to :memory: would get its own empty database
	db.SetMaxOpenConns(1)

	pending, err := loadMigrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for _, m := range pending {
		if _, err := db.ExecContext(ctx, m.sql); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %s: %w", m.name, err)
		}
	}

	log.Debug("Opened SQLite database %s", path)
	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveRun(ctx context.Context, run *models.Run) error {
	q := `
	INSERT OR REPLACE INTO runs (id, score, length, ticks, ended_at)
	VALUES (?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, q, run.ID.String(), int64(run.Score), run.Length, int64(run.Ticks), run.EndedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	q := `
	SELECT id, score, length, ticks, ended_at FROM runs WHERE id = ?;
	`
	run, err := scanRun(r.db.QueryRowContext(ctx, q, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	return run, nil
}

func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	q := `
	SELECT id, score, length, ticks, ended_at FROM runs
	ORDER BY score DESC, ended_at DESC
	LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after iterating runs: %w", err)
	}

	return runs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var id string
	var score, ticks, endedAt int64
	var length int
	if err := row.Scan(&id, &score, &length, &ticks, &endedAt); err != nil {
		return nil, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run id %q: %w", id, err)
	}

	return &models.Run{
		ID:      parsedID,
		Score:   uint(score),
		Length:  length,
		Ticks:   uint64(ticks),
		EndedAt: time.UnixMilli(endedAt).UTC(),
	}, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cbodonnell/snek/pkg/log"
	"github.com/cbodonnell/snek/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository connects to the database and applies the migrations.
// The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %w", err)
	}
	log.Info("Connected to %s as %s", database, username)

	pending, err := loadMigrations("postgres")
	if err != nil {
		pool.Close()
		return nil, err
	}
	for _, m := range pending {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to execute migration %s: %w", m.name, err)
		}
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) SaveRun(ctx context.Context, run *models.Run) error {
	q := `
	INSERT INTO runs (id, score, length, ticks, ended_at) VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET score = $2, length = $3, ticks = $4, ended_at = $5;
	`
	_, err := r.pool.Exec(ctx, q, run.ID.String(), int64(run.Score), run.Length, int64(run.Ticks), run.EndedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	q := `
	SELECT id, score, length, ticks, ended_at FROM runs WHERE id = $1;
	`
	run, err := scanRun(r.pool.QueryRow(ctx, q, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	return run, nil
}

func (r *PostgresRepository) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	q := `
	SELECT id, score, length, ticks, ended_at FROM runs
	ORDER BY score DESC, ended_at DESC
	LIMIT $1;
	`
	rows, err := r.pool.Query(ctx, q, limit)
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

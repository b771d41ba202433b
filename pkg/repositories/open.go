package repositories

import (
	"context"
	"fmt"
	"net/url"
)

// Open creates the repository described by a connection string.
// An empty string opens a private in-memory SQLite database, sqlite://<path>
// opens a SQLite file and postgres:// or postgresql:// connects to Postgres.
func Open(ctx context.Context, connStr string) (Repository, error) {
	if connStr == "" {
		return NewSQLiteRepository(ctx, SQLiteMemory)
	}

	u, err := url.Parse(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	switch u.Scheme {
	case "sqlite":
		path := u.Host + u.Path
		if path == "" {
			path = SQLiteMemory
		}
		repository, err := NewSQLiteRepository(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite repository: %w", err)
		}
		return repository, nil
	case "postgres", "postgresql":
		repository, err := NewPostgresRepository(ctx, u.String())
		if err != nil {
			return nil, fmt.Errorf("failed to create Postgres repository: %w", err)
		}
		return repository, nil
	default:
		return nil, fmt.Errorf("unknown database type %s", u.Scheme)
	}
}

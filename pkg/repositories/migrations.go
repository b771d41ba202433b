package repositories

import (
	"fmt"
	"io/fs"
	"path"
)

type migration struct {
	name string
	sql  string
}

// loadMigrations returns the embedded migrations of a dialect in file name order.
func loadMigrations(dialect string) ([]migration, error) {
	dir := path.Join("migrations", dialect)
	entries, err := fs.ReadDir(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var result []migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		migrationPath := path.Join(dir, entry.Name())
		b, err := fs.ReadFile(migrations, migrationPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", migrationPath, err)
		}
		result = append(result, migration{name: migrationPath, sql: string(b)})
	}

	return result, nil
}

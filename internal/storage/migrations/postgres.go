package migrations

import (
	"context"
	"fmt"

	"dividend-projection-lab/internal/storage/postgres"
)

// RunPostgresMigrations applies the embedded Postgres schema.
// Every file uses IF NOT EXISTS, so reapplying is a no-op.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, m := range files {
		// pgx's simple protocol accepts multi-statement files.
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}

// Package backend opens the store set selected by configuration.
package backend

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"dividend-projection-lab/internal/config"
	"dividend-projection-lab/internal/storage"
	chstore "dividend-projection-lab/internal/storage/clickhouse"
	"dividend-projection-lab/internal/storage/memory"
	"dividend-projection-lab/internal/storage/migrations"
	pgstore "dividend-projection-lab/internal/storage/postgres"
)

// Stores holds every store the service needs.
type Stores struct {
	Backend   string
	Scenarios storage.ScenarioStore
	Runs      storage.RunStore
	Records   storage.PeriodRecordStore

	pool *pgstore.Pool
	conn *chstore.Conn
}

// Open connects the configured backend. Call Close when done.
// The postgres backend keeps scenarios and runs in PostgreSQL and
// period traces in ClickHouse.
func Open(ctx context.Context, cfg config.StorageConfig) (*Stores, error) {
	switch cfg.Backend {
	case "", config.BackendMemory:
		return Memory(), nil
	case config.BackendPostgres:
		return openPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// Memory returns in-memory stores.
func Memory() *Stores {
	return &Stores{
		Backend:   config.BackendMemory,
		Scenarios: memory.NewScenarioStore(),
		Runs:      memory.NewRunStore(),
		Records:   memory.NewPeriodRecordStore(),
	}
}

func openPostgres(ctx context.Context, cfg config.StorageConfig) (*Stores, error) {
	if cfg.PostgresDSN == "" || cfg.ClickHouseDSN == "" {
		return nil, fmt.Errorf("postgres backend requires postgres_dsn and clickhouse_dsn")
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	var conn *chstore.Conn
	if cfg.Migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		conn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickHouseDSN)
	} else {
		conn, err = chstore.NewConn(ctx, cfg.ClickHouseDSN)
	}
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Stores{
		Backend:   config.BackendPostgres,
		Scenarios: pgstore.NewScenarioStore(pool),
		Runs:      pgstore.NewRunStore(pool),
		Records:   chstore.NewPeriodRecordStore(conn),
		pool:      pool,
		conn:      conn,
	}, nil
}

// Ping checks every database connection concurrently.
// Memory stores are always reachable.
func (s *Stores) Ping(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if s.pool != nil {
		g.Go(func() error {
			if err := s.pool.Ping(ctx); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			return nil
		})
	}
	if s.conn != nil {
		g.Go(func() error {
			if err := s.conn.Ping(ctx); err != nil {
				return fmt.Errorf("clickhouse: %w", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close releases database connections.
func (s *Stores) Close() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

package db

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/gridcert/exchange/shared/infra/db/migrator"
)

func SetupDB(ctx context.Context, dbURI string, migrationsFS fs.FS) (*pgxpool.Pool, error) {
	pool, err := NewPgxPool(ctx, dbURI)
	if err != nil {
		return nil, fmt.Errorf("NewPgxPool: %w", err)
	}

	if err := Migrate(ctx, pool, migrationsFS); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func Migrate(ctx context.Context, pool *pgxpool.Pool, migrationsFS fs.FS) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	dbMigrator := migrator.NewMigrator(sqlDB, migrationsFS)
	if err := dbMigrator.Up(ctx); err != nil {
		return fmt.Errorf("migrator.Up: %w", err)
	}

	return nil
}

func NewPgxPool(ctx context.Context, dbURI string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dbURI)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}
	return pool, nil
}

// Version reports the schema version recorded by the migrator.
func Version(ctx context.Context, pool *pgxpool.Pool, migrationsFS fs.FS) (int64, error) {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	version, err := migrator.NewMigrator(sqlDB, migrationsFS).Version(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrator.Version: %w", err)
	}

	return version, nil
}

package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Schema files for orders, order_items and customer_tokens ship inside the binary.
//
//go:embed sql/*.sql
var schemaFS embed.FS

const migrationsTable = "fabricstore_schema_migrations"

// Apply brings the order schema up to the latest embedded version. It opens a
// short-lived database/sql handle on the pool's DSN because golang-migrate
// does not drive pgxpool directly.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	src, err := iofs.New(schemaFS, "sql")
	if err != nil {
		return fmt.Errorf("load embedded order schema: %w", err)
	}

	sqlDB, err := sql.Open("pgx", pool.Config().ConnString())
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer sqlDB.Close()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping migration connection: %w", err)
	}

	target, err := postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return fmt.Errorf("init postgres target: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx", target)
	if err != nil {
		return fmt.Errorf("init order schema migration: %w", err)
	}
	defer m.Close()

	err = m.Up()
	switch {
	case err == nil, errors.Is(err, migrate.ErrNoChange):
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("migrate order schema: %w (a numbered .up.sql is missing its .down.sql pair)", err)
	default:
		return fmt.Errorf("migrate order schema: %w", err)
	}
}

// Package client wires the CLI's local storage: it opens the SQLite
// database, applies migrations and exposes the repositories.
package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aethershare/aether/internal/client/migrations"
	"github.com/aethershare/aether/internal/client/repositories/transfers"
	"github.com/pressly/goose/v3"
)

type Repositories struct {
	Transfers transfers.Repository
	DB        *sql.DB
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, err
	}

	repos := &Repositories{
		Transfers: transfers.NewSQLiteRepository(db),
		DB:        db,
	}
	return repos, nil
}

package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/orgball2608/insta-compliance-bot/internal/migrations"
	"github.com/orgball2608/insta-compliance-bot/pkg/config"
	"github.com/orgball2608/insta-compliance-bot/pkg/logger"
	"github.com/pressly/goose/v3"
)

// Open connects to postgres through database/sql for schema management.
func Open(cfg *config.Config) (*sql.DB, error) {
	connect, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	if err = connect.Ping(); err != nil {
		_ = connect.Close()
		return nil, err
	}

	return connect, nil
}

// Migrate brings the schema up to date.
func Migrate(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	connect, err := Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect for migrations: %w", err)
	}
	defer connect.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, connect, migrations.Dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database migrations applied")
	return nil
}

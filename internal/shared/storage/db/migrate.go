package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationsDir = "migrations"

// ErrUnknownCommand is returned by Migrate for commands it does not run.
var ErrUnknownCommand = errors.New("unknown migration command")

// MigrationCommands lists what Migrate accepts.
var MigrationCommands = []string{"up", "down", "redo", "status", "version"}

// RunMigrations applies the embedded users/analyses schema. A nil database is
// a no-op so memory-backed runs can call it unconditionally.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return Migrate(ctx, database, "up")
}

// Migrate runs one goose command against the embedded schema.
func Migrate(ctx context.Context, database *sql.DB, command string) error {
	if database == nil {
		return nil
	}
	run, ok := map[string]func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error{
		"up":      goose.UpContext,
		"down":    goose.DownContext,
		"redo":    goose.RedoContext,
		"status":  goose.StatusContext,
		"version": goose.VersionContext,
	}[command]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}

	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := run(ctx, database, migrationsDir); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

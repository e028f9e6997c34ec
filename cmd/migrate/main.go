package main

// Manage the users/analyses schema on DATABASE_URL:
//   go run ./cmd/migrate [up|down|redo|status|version]

import (
	"context"
	"errors"
	"log"
	"os"
	"strings"

	"expertcof/internal/shared/config"
	"expertcof/internal/shared/storage/db"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = strings.ToLower(os.Args[1])
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, sqlDB, command); err != nil {
		if errors.Is(err, db.ErrUnknownCommand) {
			log.Printf("usage: migrate [%s]", strings.Join(db.MigrationCommands, "|"))
		}
		sqlDB.Close()
		log.Fatal(err)
	}
	log.Printf("migrate %s: done", command)
}

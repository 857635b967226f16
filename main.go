package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	log "github.com/sirupsen/logrus"

	"yinbot/cmd"
	"yinbot/database"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := handleMigrationCommand(); err != nil {
			log.Fatalf("Migration error: %v", err)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

// handleMigrationCommand runs migrate up|down|status. It reads the database
// settings straight from the environment so it works without a bot token.
func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: yinbot migrate [up|down|status] [args...]")
	}

	databaseName := os.Getenv("DATABASE_NAME")
	migrator, err := database.NewMigrator(database.ConstructDatabaseURL(os.Getenv("DATABASE_URL"), databaseName))
	if err != nil {
		return err
	}
	defer migrator.Close()

	var status database.MigrationStatus
	switch command := os.Args[2]; command {
	case "up":
		log.WithField("database", databaseName).Info("Running migrations")
		status, err = migrator.Up()
	case "down":
		steps := 1
		if len(os.Args) > 3 {
			if steps, err = strconv.Atoi(os.Args[3]); err != nil {
				return fmt.Errorf("invalid steps value: %w", err)
			}
		}
		status, err = migrator.Down(steps)
	case "status":
		status, err = migrator.Status()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
	if err != nil {
		return err
	}

	if !status.Applied {
		log.Info("No migrations applied")
		return nil
	}
	log.WithFields(log.Fields{
		"version": status.Version,
		"dirty":   status.Dirty,
	}).Info("Schema version")
	return nil
}

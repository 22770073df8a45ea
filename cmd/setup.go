package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Nishad-30/vibelist-ai/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err == nil {
			config = loaded
		} else {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// SetupConfig writes the example config file for editing.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	outputPath := cmd.String("output")

	if err := shared.CreateConfigFile(outputPath); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	r.writePlain("✓ Config written to %s\n", outputPath)
	r.writePlain("Fill in credentials.spotify.client_id and client_secret, then run:\n")
	r.writePlain("  vibelist setup database\n")
	r.writePlain("  vibelist spotify auth\n")

	return nil
}

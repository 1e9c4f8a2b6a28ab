package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vytor/mnemoflash/internal/config"
	"github.com/vytor/mnemoflash/internal/db"
	"github.com/vytor/mnemoflash/internal/logger"
)

func main() {
	root := &cobra.Command{
		Use:           "mnemoflash",
		Short:         "Mnemonic vocabulary flashcards",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending database migrations and exit",
			RunE:  runMigrate,
		},
	)

	if err := root.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// setup loads and validates configuration and installs the default logger.
func setup() (config.Config, *logger.Logger, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return cfg, nil, fmt.Errorf("invalid configuration:\n%w", err)
	}

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithFormat(logger.ParseFormat(cfg.LogFormat)),
		logger.WithColors(strings.EqualFold(cfg.LogFormat, "text")),
	)
	logger.SetDefault(log)
	return cfg, log, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	// Open applies pending migrations.
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer database.Close()

	log.Info("database at %s is up to date", cfg.DBPath)
	return nil
}

// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/planchais/chantiers-backend/internal/config"
	"github.com/planchais/chantiers-backend/internal/db"
	"github.com/planchais/chantiers-backend/internal/logger"
	"github.com/planchais/chantiers-backend/internal/repository"
	"github.com/planchais/chantiers-backend/internal/seed"
)

const (
	Version = "1.0.0"
	appName = "chantiers-backend"
)

// BuildTime is set with -ldflags at release time.
var BuildTime = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		port     string
		logLevel string
	)

	// setup loads .env and the configuration, then applies flag overrides.
	setup := func() *config.Config {
		if err := godotenv.Load(); err != nil {
			fmt.Println("No .env file found, using environment variables")
		}
		cfg := config.Load()
		if port != "" {
			cfg.Port = port
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger.Init(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
		return cfg
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(setup())
		},
	}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Chantier management API",
		Long: `Backend for the chantier management app: clients, chantiers, team
members and assignments, a monthly planning, PDF quotes and AI estimates.

Running without a subcommand starts the HTTP API.`,
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	cmd.PersistentFlags().StringVarP(&port, "port", "p", "", "HTTP port (overrides API_PORT)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")

	cmd.AddCommand(serve, migrateCmd(setup), seedCmd(setup))

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// ============================================
// migrate
// ============================================

func migrateCmd(setup func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withMigrator := func(fn func(*db.Migrator) error) error {
		cfg := setup()
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is not set")
		}
		mg, err := db.NewMigrator(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer mg.Close()
		return fn(mg)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(mg *db.Migrator) error { return mg.Up() })
			},
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Roll back N migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n := 1
				if len(args) == 1 {
					v, err := strconv.Atoi(args[0])
					if err != nil || v <= 0 {
						return fmt.Errorf("invalid step count %q", args[0])
					}
					n = v
				}
				return withMigrator(func(mg *db.Migrator) error { return mg.Down(n) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withMigrator(func(mg *db.Migrator) error {
					v, dirty, err := mg.Version()
					if err != nil {
						return err
					}
					fmt.Printf("schema version %d (dirty: %t)\n", v, dirty)
					return nil
				})
			},
		},
	)
	return cmd
}

// ============================================
// seed
// ============================================

func seedCmd(setup func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert development data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := setup()
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set")
			}
			if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			pg, err := db.NewPostgresDB(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pg.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return seed.SeedData(ctx, repository.NewPgRepositories(pg.Pool), cfg.SeedAdminPassword)
		},
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"bookshop/internal/config"
	"bookshop/internal/db"
	"bookshop/internal/logging"
	"bookshop/internal/user"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			fx.New(app(cfg)).Run()
			return nil
		},
	}

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed roles, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runMigrate(cmd.Context(), cfg)
		},
	}

	root := &cobra.Command{
		Use:           "bookshop",
		Short:         "Second-hand bookshop API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to the JSON or YAML config file")
	root.AddCommand(serve, migrate)
	return root
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if cfg.Auth.BcryptCost > 0 {
		user.Cost = cfg.Auth.BcryptCost
	}
	return cfg, nil
}

func runMigrate(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := logging.New(cfg)
	if err != nil {
		return err
	}
	conn, err := db.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info("Schema migrated", "driver", cfg.Database.Driver)
	return nil
}

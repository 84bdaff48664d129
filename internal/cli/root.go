// Package cli wires configuration, logging and storage into the todocal
// commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"todocal/internal/config"
	"todocal/internal/logging"
	"todocal/internal/store"
)

// NewRootCommand creates the root command. Running it without a
// subcommand starts the HTTP server.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "todocal",
		Short: "todocal - a local task calendar",
		Long: `A local, single-user task and project tracker.

Tasks and projects are kept as JSON documents in the data directory and
served over a small REST API, or to agents as JSON-RPC over stdio.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}

	// Global flags
	config.RegisterFlags(cmd.PersistentFlags())

	// Add subcommands
	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewRPCCommand())

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "todocal: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads configuration for cmd and builds the logger, which
// always writes to logOut.
func loadConfig(cmd *cobra.Command, logOut io.Writer) (*config.Config, *log.Logger, error) {
	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.FromConfig(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Source != "" {
		logger.Debug("loaded config file", "path", cfg.Source)
	}
	return cfg, logger, nil
}

// openStore opens the configured backend and loads the store from it.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*store.Store, error) {
	var backend store.Backend
	switch cfg.Storage {
	case config.StorageSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		b, err := store.NewSQLiteBackend(cfg.SQLitePath())
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		b, err := store.NewFileBackend(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		backend = b
	}

	s, err := store.Open(ctx, backend,
		store.WithLogger(logger),
		store.WithExampleFile(cfg.ExampleFile),
	)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	logger.Info("store ready", "storage", cfg.Storage, "data_dir", cfg.DataDir)
	return s, nil
}

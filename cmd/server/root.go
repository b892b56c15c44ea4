package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/examprep/backend/internal/infrastructure/config"
)

var rootCmd = &cobra.Command{
	Use:           "examprep",
	Short:         "Study session engine for certification exam practice",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db-driver", "", "Database driver, sqlite or postgres (overrides DB_DRIVER)")
	rootCmd.PersistentFlags().String("dsn", "", "Database DSN (overrides DB_DSN)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(simulateCmd)
}

// loadConfig reads the environment and applies the persistent flags on top.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	if v, _ := cmd.Flags().GetString("db-driver"); v != "" {
		cfg.DBDriver = v
	}
	if v, _ := cmd.Flags().GetString("dsn"); v != "" {
		cfg.DBDSN = v
	}
	return cfg
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, nil))
}

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/examprep/backend/internal/simulation"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a scripted two-question session against an in-memory corpus",
	RunE: func(cmd *cobra.Command, args []string) error {
		script := simulation.DefaultScript()
		if path, _ := cmd.Flags().GetString("dataset"); path != "" {
			provider, exam := datasetDefaults(cmd)
			d, err := readDataset(path, provider, exam)
			if err != nil {
				return err
			}
			script.Dataset = d
		}
		script.Seed, _ = cmd.Flags().GetInt64("seed")

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		_, err := simulation.Run(ctx, script, cmd.OutOrStdout(), newLogger(os.Stderr))
		return err
	},
}

func init() {
	simulateCmd.Flags().String("dataset", "", "Study dataset to use instead of the built-in sample")
	simulateCmd.Flags().Int64("seed", 1, "Question selection seed")
	addDatasetFlags(simulateCmd)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/examprep/backend/internal/domain/questionbank"
	"github.com/examprep/backend/internal/service"
)

var importCmd = &cobra.Command{
	Use:   "import <dataset.json>...",
	Short: "Import study dataset files into the question corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		logger := newLogger(os.Stderr)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		b, err := openBackend(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer b.cleanup()
		library := service.NewLibraryService(b.db, b.corpus, b.cache, logger)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		provider, exam := datasetDefaults(cmd)
		for _, path := range args {
			d, err := readDataset(path, provider, exam)
			if err != nil {
				return err
			}
			report, err := library.Import(ctx, d)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			if err := enc.Encode(map[string]any{"file": path, "report": report}); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	addDatasetFlags(importCmd)
}

// addDatasetFlags registers the provider and exam used for dataset files
// that do not name them, as the extraction scripts' output does not.
func addDatasetFlags(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "Provider ID for datasets that do not name one")
	cmd.Flags().String("exam", "", "Exam ID for datasets that do not name one")
}

func datasetDefaults(cmd *cobra.Command) (provider, exam string) {
	provider, _ = cmd.Flags().GetString("provider")
	exam, _ = cmd.Flags().GetString("exam")
	return provider, exam
}

// readDataset loads a dataset file, filling a missing provider or exam.
func readDataset(path, provider, exam string) (questionbank.Dataset, error) {
	var d questionbank.Dataset
	raw, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &d); err != nil {
		return d, fmt.Errorf("parse %s: %w", path, err)
	}
	d = d.WithDefaults(provider, exam)
	if d.Provider == "" || d.Exam == "" {
		return d, fmt.Errorf("%s does not name a provider and an exam; pass --provider and --exam", path)
	}
	return d, nil
}

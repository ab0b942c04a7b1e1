package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/coldreach/internal/model"
	"github.com/amishk599/coldreach/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Open the interactive form (TUI)",
	Long:  "Shows a form to add portfolio entries and generate an email for a job URL.",
	RunE:  runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	silentLogger := discardLogger()

	idx, err := openPortfolioIndex(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer idx.Close()

	pipeline, cleanup, err := setupPipeline(ctx, cfg, idx, silentLogger)
	if err != nil {
		return fmt.Errorf("set up pipeline: %w", err)
	}
	defer cleanup()

	// The collection is seeded lazily so a missing CSV or embedding server
	// surfaces as a banner instead of preventing the form from opening.
	generate := func(ctx context.Context, url string) (model.Result, error) {
		if _, err := idx.seed(ctx); err != nil {
			return model.Result{}, describeSeedError(err, idx.csv.Path())
		}
		return pipeline.Generate(ctx, url)
	}

	if err := tui.Run(generate, idx.csv.Append, cfg.LLM.Timeout+cfg.Scraper.Timeout); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

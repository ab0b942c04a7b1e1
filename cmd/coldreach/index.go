package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/coldreach/internal/tui"
)

var rebuild bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the portfolio collection from the CSV",
	Long: "Embeds every portfolio entry into the vector store. Without --rebuild the " +
		"collection is only filled when it is empty.",
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&rebuild, "rebuild", false, "drop the collection and embed the CSV again")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	idx, err := openPortfolioIndex(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer idx.Close()

	build := idx.seed
	if rebuild {
		build = idx.rebuild
	}

	var added int
	if isTerminal(os.Stdout) {
		added, err = tui.RunLoader(ctx, "Embedding portfolio", build)
	} else {
		added, err = build(ctx)
	}
	if err != nil {
		return fmt.Errorf("index portfolio: %w", describeSeedError(err, idx.csv.Path()))
	}

	total, err := idx.collection.Count(ctx)
	if err != nil {
		return fmt.Errorf("count collection: %w", err)
	}
	logger.Info("portfolio indexed",
		"collection", cfg.VectorStore.Collection,
		"added", added,
		"total", total,
		"rebuild", rebuild,
	)
	return nil
}

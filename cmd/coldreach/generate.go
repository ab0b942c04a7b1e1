package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/coldreach/internal/model"
)

var (
	dryRun   bool
	noRender bool
)

var generateCmd = &cobra.Command{
	Use:   "generate URL [URL...]",
	Short: "Draft cold emails for one or more job postings",
	Long: "Fetches each job posting, matches it against the portfolio and drafts an email. " +
		"URLs are processed in order; a failing URL is logged and the rest still run.",
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the prompt instead of calling the model")
	generateCmd.Flags().BoolVar(&noRender, "no-render", false, "print plain markdown instead of rendering it")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// From here on failures are returned so the deferred closes run.
	idx, err := openPortfolioIndex(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open vector store: %w", err)
	}
	defer idx.Close()

	added, err := idx.seed(ctx)
	if err != nil {
		return fmt.Errorf("seed portfolio collection: %w", describeSeedError(err, idx.csv.Path()))
	}
	if added > 0 {
		logger.Info("seeded portfolio collection", "entries", added, "collection", cfg.VectorStore.Collection)
	}

	pipeline, cleanup, err := setupPipeline(ctx, cfg, idx, logger)
	if err != nil {
		return fmt.Errorf("set up pipeline: %w", err)
	}
	defer cleanup()

	b := &batch{
		pipeline: pipeline,
		notifier: setupNotifier(cfg, !noRender, logger),
		dryRun:   dryRun,
		out:      os.Stdout,
		logger:   logger,
	}
	return b.run(ctx, args)
}

// emailPipeline is the part of outreach.Pipeline a batch run needs.
type emailPipeline interface {
	Generate(ctx context.Context, url string) (model.Result, error)
	Prepare(ctx context.Context, url string) (string, error)
}

// batch drafts emails for several URLs in order.
type batch struct {
	pipeline emailPipeline
	notifier model.Notifier
	dryRun   bool
	out      io.Writer // prompt output for dry runs
	logger   *slog.Logger
}

// run processes every URL, logging failures and moving on. It returns an
// error when any URL failed, including fallback emails, or ctx was cancelled.
func (b *batch) run(ctx context.Context, urls []string) error {
	failed := 0
	for _, url := range urls {
		if ctx.Err() != nil {
			break
		}
		if !b.process(ctx, url) {
			failed++
		}
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("generate interrupted: %w", err)
	}
	if failed > 0 {
		b.logger.Error("generate finished with failures", "urls", len(urls), "failed", failed)
		return fmt.Errorf("%d of %d URLs failed", failed, len(urls))
	}
	return nil
}

// process handles one URL and reports whether it succeeded.
func (b *batch) process(ctx context.Context, url string) bool {
	if b.dryRun {
		prompt, err := b.pipeline.Prepare(ctx, url)
		if err != nil {
			b.logger.Error("failed to prepare prompt", "url", url, "error", err)
			return false
		}
		fmt.Fprintln(b.out, prompt)
		return true
	}

	result, err := b.pipeline.Generate(ctx, url)
	if err != nil {
		b.logger.Error("failed to generate email", "url", url, "error", err)
		return false
	}
	if err := b.notifier.Notify(ctx, result); err != nil {
		b.logger.Error("failed to deliver email", "url", url, "error", err)
		return false
	}
	return result.GenerationErr == nil
}

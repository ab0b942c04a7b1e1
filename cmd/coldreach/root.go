package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/coldreach/internal/ai"
	"github.com/amishk599/coldreach/internal/config"
	"github.com/amishk599/coldreach/internal/embedding"
	"github.com/amishk599/coldreach/internal/model"
	"github.com/amishk599/coldreach/internal/notifier"
	"github.com/amishk599/coldreach/internal/outreach"
	"github.com/amishk599/coldreach/internal/portfolio"
	"github.com/amishk599/coldreach/internal/ratelimit"
	"github.com/amishk599/coldreach/internal/retry"
	"github.com/amishk599/coldreach/internal/scraper"
	"github.com/amishk599/coldreach/internal/vectorstore"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "coldreach",
	Short: "Cold emails from job postings",
	Long: "coldreach reads a job posting, picks the closest projects from your portfolio " +
		"and drafts a cold email pitching them.",
	// With no subcommand, open the interactive form.
	RunE:         runUI,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: COLDREACH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > COLDREACH_CONFIG env var > "./config.yaml".
// Only the implicit default may be missing, in which case defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if env := os.Getenv("COLDREACH_CONFIG"); env != "" {
		return config.Load(env)
	}
	return config.LoadOrDefault("config.yaml")
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// discardLogger is used while a full-screen TUI owns the terminal; any log
// output would corrupt the display.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupNotifier(cfg *config.Config, render bool, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, &http.Client{Timeout: cfg.Scraper.Timeout}, logger)
	case "log":
		return notifier.NewLogNotifier(logger)
	default:
		return notifier.NewConsoleNotifier(os.Stdout, render && isTerminal(os.Stdout))
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// setupFetcher builds the page fetcher chain:
// retry → per-host rate limit → ATS board router → HTTP or browser fetcher.
func setupFetcher(cfg *config.Config, logger *slog.Logger) model.PageFetcher {
	sc := cfg.Scraper
	httpClient := &http.Client{Timeout: sc.Timeout}

	var page model.PageFetcher
	switch sc.Mode {
	case "browser":
		page = scraper.NewBrowserFetcher(sc.Timeout, sc.MaxLength)
	default:
		page = scraper.NewHTTPFetcher(httpClient, sc.UserAgent, sc.MaxLength)
	}

	var fetcher model.PageFetcher = scraper.NewRouter(page, scraper.DefaultBoards(httpClient, sc.MaxLength)...)
	fetcher = ratelimit.NewRateLimitedFetcher(fetcher, ratelimit.NewHostRateLimiter(sc.MinDelay))
	return retry.NewRetryFetcher(fetcher, sc.MaxRetries, sc.RetryDelay, logger)
}

// portfolioIndex bundles the CSV table with the collection built from it.
type portfolioIndex struct {
	csv        *portfolio.CSVStore
	embedder   embedding.Embedder
	store      *vectorstore.Store
	collection *vectorstore.Collection
}

func openPortfolioIndex(ctx context.Context, cfg *config.Config) (*portfolioIndex, error) {
	emb, err := embedding.New(ctx, cfg.Embeddings, &http.Client{Timeout: cfg.LLM.Timeout})
	if err != nil {
		return nil, err
	}

	store, err := vectorstore.Open(cfg.VectorStore.Path, emb)
	if err != nil {
		emb.Close()
		return nil, err
	}

	coll, err := store.GetOrCreateCollection(ctx, cfg.VectorStore.Collection)
	if err != nil {
		store.Close()
		emb.Close()
		return nil, err
	}

	return &portfolioIndex{
		csv:        portfolio.Open(cfg.Portfolio.CSVPath),
		embedder:   emb,
		store:      store,
		collection: coll,
	}, nil
}

// seed fills the collection from the CSV if it is empty.
func (p *portfolioIndex) seed(ctx context.Context) (int, error) {
	n, err := p.collection.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	entries, err := p.csv.Load()
	if err != nil {
		return 0, err
	}
	return vectorstore.Seed(ctx, p.collection, entries)
}

// rebuild replaces the collection with the current CSV contents.
func (p *portfolioIndex) rebuild(ctx context.Context) (int, error) {
	entries, err := p.csv.Load()
	if err != nil {
		return 0, err
	}
	return vectorstore.Rebuild(ctx, p.collection, entries)
}

func (p *portfolioIndex) Close() {
	p.store.Close()
	p.embedder.Close()
}

// setupPipeline creates the LLM provider and wires the outreach pipeline.
// The returned cleanup releases the provider.
func setupPipeline(ctx context.Context, cfg *config.Config, idx *portfolioIndex, logger *slog.Logger) (*outreach.Pipeline, func(), error) {
	tmpl, err := ai.LoadTemplate(cfg.Prompt.TemplatePath)
	if err != nil {
		return nil, nil, err
	}

	provider, err := ai.NewProvider(ctx, cfg.LLM, &http.Client{Timeout: cfg.LLM.Timeout})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if c, ok := provider.(io.Closer); ok {
			c.Close()
		}
	}

	writer := ai.NewEmailWriter(provider, tmpl, cfg.Sender)
	fetcher := setupFetcher(cfg, logger)
	return outreach.NewPipeline(fetcher, idx.collection, writer, cfg.VectorStore.NResults, logger), cleanup, nil
}

// describeSeedError adds a hint for the most common first-run failure.
func describeSeedError(err error, csvPath string) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("portfolio CSV %s not found; add an entry with `coldreach portfolio add`: %w", csvPath, err)
	}
	return err
}

// Package outreach wires page fetching, portfolio lookup and email drafting
// into a single run per job URL.
package outreach

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/amishk599/coldreach/internal/model"
	"github.com/amishk599/coldreach/internal/vectorstore"
)

// ErrNoMatches is returned when the portfolio lookup comes back empty,
// usually because the collection was never indexed.
var ErrNoMatches = errors.New("no portfolio entries matched")

// Matcher finds portfolio documents similar to a text.
type Matcher interface {
	Query(ctx context.Context, text string, n int) ([]vectorstore.Match, error)
}

// Writer drafts emails from a job description and portfolio links.
type Writer interface {
	Prompt(description string, links []string) (string, error)
	Write(ctx context.Context, description string, links []string) (model.Email, error)
}

// Pipeline owns one outreach run: fetch → match → draft.
type Pipeline struct {
	fetcher  model.PageFetcher
	matcher  Matcher
	writer   Writer
	nResults int
	logger   *slog.Logger
}

// NewPipeline creates a pipeline wired with all its dependencies.
// nResults is the number of portfolio matches passed to the writer.
func NewPipeline(
	fetcher model.PageFetcher,
	matcher Matcher,
	writer Writer,
	nResults int,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		matcher:  matcher,
		writer:   writer,
		nResults: nResults,
		logger:   logger,
	}
}

// Generate drafts an email for the job posting at url.
// Fetch and lookup failures are returned as errors. A failed model call is
// not: the Result carries the fallback email and GenerationErr instead.
func (p *Pipeline) Generate(ctx context.Context, url string) (model.Result, error) {
	page, links, err := p.gather(ctx, url)
	if err != nil {
		return model.Result{}, err
	}

	email, err := p.writer.Write(ctx, page.Content, links)
	if err != nil && !email.Fallback {
		return model.Result{}, fmt.Errorf("drafting email for %s: %w", url, err)
	}

	result := model.Result{
		JobURL:        url,
		JobTitle:      page.Title,
		Links:         links,
		Email:         email,
		GenerationErr: err,
	}

	p.logger.Info("drafted email",
		"url", url,
		"title", page.Title,
		"content_length", len(page.Content),
		"links", len(links),
		"fallback", email.Fallback,
	)
	if err != nil {
		p.logger.Warn("email generation failed, using fallback", "url", url, "error", err)
	}

	return result, nil
}

// Prepare runs the pipeline up to the prompt and returns it without calling the model.
func (p *Pipeline) Prepare(ctx context.Context, url string) (string, error) {
	page, links, err := p.gather(ctx, url)
	if err != nil {
		return "", err
	}

	prompt, err := p.writer.Prompt(page.Content, links)
	if err != nil {
		return "", fmt.Errorf("rendering prompt for %s: %w", url, err)
	}

	p.logger.Debug("prepared prompt", "url", url, "links", len(links), "prompt_length", len(prompt))
	return prompt, nil
}

// gather fetches the posting and looks up the matching portfolio links.
// The whole page text stands in for the extracted skills.
func (p *Pipeline) gather(ctx context.Context, url string) (model.Page, []string, error) {
	page, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return model.Page{}, nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	matches, err := p.matcher.Query(ctx, page.Content, p.nResults)
	if err != nil {
		return model.Page{}, nil, fmt.Errorf("matching portfolio for %s: %w", url, err)
	}
	if len(matches) == 0 {
		return model.Page{}, nil, fmt.Errorf("matching portfolio for %s: %w", url, ErrNoMatches)
	}

	links := vectorstore.Links(matches)
	p.logger.Debug("matched portfolio", "url", url, "matches", len(matches))

	return page, links, nil
}

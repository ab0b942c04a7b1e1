package scraper

import (
	"context"
	"errors"
	"net/http"

	"github.com/amishk599/coldreach/internal/model"
)

// Ensure Router implements model.PageFetcher.
var _ model.PageFetcher = (*Router)(nil)

// Router sends ATS-hosted postings to their board API and everything else to
// the generic page fetcher.
type Router struct {
	fallback model.PageFetcher
	boards   []BoardFetcher
}

// NewRouter creates a router. Boards are tried in order.
func NewRouter(fallback model.PageFetcher, boards ...BoardFetcher) *Router {
	return &Router{fallback: fallback, boards: boards}
}

// Fetch dispatches rawURL. When a board API answers 404 for a URL it claimed,
// the rendered page is scraped instead.
func (r *Router) Fetch(ctx context.Context, rawURL string) (model.Page, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return model.Page{}, err
	}

	for _, b := range r.boards {
		if !b.Match(u) {
			continue
		}
		page, err := b.Fetch(ctx, rawURL)
		var httpErr *model.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			break
		}
		if errors.Is(err, ErrPostingNotFound) {
			break
		}
		return page, err
	}
	return r.fallback.Fetch(ctx, rawURL)
}

// DefaultBoards returns the Greenhouse, Lever and Ashby fetchers.
func DefaultBoards(client *http.Client, maxLength int) []BoardFetcher {
	return []BoardFetcher{
		NewGreenhouseFetcher(client, maxLength),
		NewLeverFetcher(client, maxLength),
		NewAshbyFetcher(client, maxLength),
	}
}

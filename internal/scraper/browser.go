package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/amishk599/coldreach/internal/model"
)

// Ensure BrowserFetcher implements model.PageFetcher.
var _ model.PageFetcher = (*BrowserFetcher)(nil)

// BrowserFetcher renders the page in headless Chromium before extracting its
// text. Use it for job boards that build the posting with JavaScript.
type BrowserFetcher struct {
	timeout   time.Duration
	maxLength int
}

// NewBrowserFetcher creates a fetcher that waits at most timeout for a page load.
func NewBrowserFetcher(timeout time.Duration, maxLength int) *BrowserFetcher {
	return &BrowserFetcher{timeout: timeout, maxLength: maxLength}
}

// Fetch launches a browser, loads rawURL and extracts the rendered DOM's text.
func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL string) (model.Page, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return model.Page{}, err
	}

	l := launcher.New().Context(ctx).Headless(true)
	defer l.Kill()

	controlURL, err := l.Launch()
	if err != nil {
		return model.Page{}, fmt.Errorf("browser fetch %s: launch: %w", rawURL, err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return model.Page{}, fmt.Errorf("browser fetch %s: connect: %w", rawURL, err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: u.String()})
	if err != nil {
		return model.Page{}, fmt.Errorf("browser fetch %s: open page: %w", rawURL, err)
	}
	page = page.Timeout(f.timeout)

	if err := page.WaitLoad(); err != nil {
		return model.Page{}, fmt.Errorf("browser fetch %s: wait load: %w", rawURL, err)
	}
	doc, err := page.HTML()
	if err != nil {
		return model.Page{}, fmt.Errorf("browser fetch %s: read html: %w", rawURL, err)
	}

	title, text, err := ExtractText(strings.NewReader(doc))
	if err != nil {
		return model.Page{}, fmt.Errorf("browser fetch %s: %w", rawURL, err)
	}
	return finishPage(model.Page{URL: rawURL, Title: title, Content: text}, f.maxLength)
}

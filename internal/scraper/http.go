package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/amishk599/coldreach/internal/model"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 2 << 20

var (
	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL = model.Permanent(errors.New("invalid job URL"))
	// ErrEmptyPage is returned when a page yields no visible text.
	ErrEmptyPage = model.Permanent(errors.New("page has no text content"))
)

// Ensure HTTPFetcher implements model.PageFetcher.
var _ model.PageFetcher = (*HTTPFetcher)(nil)

// HTTPFetcher loads a job page with a plain GET and extracts its text.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxLength int
}

// NewHTTPFetcher creates a fetcher. maxLength limits the returned content in
// characters; zero keeps everything.
func NewHTTPFetcher(client *http.Client, userAgent string, maxLength int) *HTTPFetcher {
	return &HTTPFetcher{
		client:    client,
		userAgent: userAgent,
		maxLength: maxLength,
	}
}

// Fetch downloads rawURL and returns its title and visible text.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (model.Page, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return model.Page{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return model.Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return model.Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Page{}, &model.HTTPError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	contentType := resp.Header.Get("Content-Type")
	var r io.Reader = io.LimitReader(resp.Body, maxBodyBytes)
	// Decode to UTF-8 using the header charset, a BOM or a <meta> tag.
	// An unknown charset leaves the bytes as they are.
	if decoded, err := charset.NewReader(r, contentType); err == nil {
		r = decoded
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return model.Page{}, fmt.Errorf("fetch %s: read body: %w", rawURL, err)
	}

	page := model.Page{URL: rawURL}
	if strings.HasPrefix(contentType, "text/plain") {
		page.Content = strings.TrimSpace(string(body))
	} else {
		page.Title, page.Content, err = ExtractText(strings.NewReader(string(body)))
		if err != nil {
			return model.Page{}, fmt.Errorf("fetch %s: %w", rawURL, err)
		}
	}

	return finishPage(page, f.maxLength)
}

// finishPage applies the length limit and rejects pages without text.
func finishPage(page model.Page, maxLength int) (model.Page, error) {
	if page.Content == "" {
		return model.Page{}, fmt.Errorf("fetch %s: %w", page.URL, ErrEmptyPage)
	}
	page.Content = truncate(page.Content, maxLength)
	return page, nil
}

func validateURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidURL, rawURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w %q: want an absolute http(s) URL", ErrInvalidURL, rawURL)
	}
	return u, nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

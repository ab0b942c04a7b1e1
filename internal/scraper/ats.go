package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/amishk599/coldreach/internal/model"
)

const (
	greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"
	leverBaseURL      = "https://api.lever.co/v0/postings"
	ashbyBaseURL      = "https://api.ashbyhq.com/posting-api/job-board"
)

// BoardFetcher reads a posting through an applicant tracking system's public
// API instead of scraping the rendered page.
type BoardFetcher interface {
	model.PageFetcher
	// Match reports whether u is a posting URL this fetcher understands.
	Match(u *url.URL) bool
}

// pathSegments splits the URL path into its non-empty segments.
func pathSegments(u *url.URL) []string {
	var segs []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// getJSON issues a GET and decodes a JSON body into v. Non-200 responses are
// returned as *model.HTTPError.
func getJSON(ctx context.Context, client *http.Client, apiURL, jobURL string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &model.HTTPError{
			URL:        jobURL,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("unexpected status from %s", apiURL),
		}
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// --- Greenhouse ---

// greenhouseJob is the single-job response of the Greenhouse boards API.
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Content     string             `json:"content"` // HTML, entity-encoded
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

// GreenhouseFetcher reads boards.greenhouse.io postings via the boards API.
type GreenhouseFetcher struct {
	client    *http.Client
	baseURL   string
	maxLength int
}

// NewGreenhouseFetcher creates a fetcher for Greenhouse-hosted postings.
func NewGreenhouseFetcher(client *http.Client, maxLength int) *GreenhouseFetcher {
	return &GreenhouseFetcher{client: client, baseURL: greenhouseBaseURL, maxLength: maxLength}
}

// Match accepts https://boards.greenhouse.io/{token}/jobs/{id} and the
// job-boards.* variants.
func (f *GreenhouseFetcher) Match(u *url.URL) bool {
	_, _, ok := greenhouseIDs(u)
	return ok
}

func greenhouseIDs(u *url.URL) (token, id string, ok bool) {
	host := strings.ToLower(u.Hostname())
	if host != "boards.greenhouse.io" && !strings.HasPrefix(host, "job-boards.") {
		return "", "", false
	}
	if !strings.HasSuffix(host, "greenhouse.io") {
		return "", "", false
	}
	segs := pathSegments(u)
	if len(segs) < 3 || segs[1] != "jobs" {
		return "", "", false
	}
	return segs[0], segs[2], true
}

// Fetch retrieves the posting and flattens its HTML content to text.
func (f *GreenhouseFetcher) Fetch(ctx context.Context, rawURL string) (model.Page, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return model.Page{}, err
	}
	token, id, ok := greenhouseIDs(u)
	if !ok {
		return model.Page{}, fmt.Errorf("%w %q: not a greenhouse posting", ErrInvalidURL, rawURL)
	}

	var gj greenhouseJob
	apiURL := fmt.Sprintf("%s/%s/jobs/%s", f.baseURL, url.PathEscape(token), url.PathEscape(id))
	if err := getJSON(ctx, f.client, apiURL, rawURL, &gj); err != nil {
		return model.Page{}, fmt.Errorf("greenhouse fetch for %s: %w", token, err)
	}

	content := fragmentText(gj.Content)
	if gj.Location.Name != "" && content != "" {
		content = "Location: " + gj.Location.Name + "\n" + content
	}
	return finishPage(model.Page{URL: rawURL, Title: gj.Title, Content: content}, f.maxLength)
}

// --- Lever ---

// leverCategories represents the categories object in a Lever posting.
type leverCategories struct {
	Team       string `json:"team"`
	Location   string `json:"location"`
	Commitment string `json:"commitment"`
}

type leverList struct {
	Text    string `json:"text"`
	Content string `json:"content"` // HTML <li> items
}

// leverJob is the single-posting response of the Lever postings API.
type leverJob struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Lists            []leverList     `json:"lists"`
	AdditionalPlain  string          `json:"additionalPlain"`
	Categories       leverCategories `json:"categories"`
	HostedURL        string          `json:"hostedUrl"`
}

// LeverFetcher reads jobs.lever.co postings via the public postings API.
type LeverFetcher struct {
	client    *http.Client
	baseURL   string
	maxLength int
}

// NewLeverFetcher creates a fetcher for Lever-hosted postings.
func NewLeverFetcher(client *http.Client, maxLength int) *LeverFetcher {
	return &LeverFetcher{client: client, baseURL: leverBaseURL, maxLength: maxLength}
}

// Match accepts https://jobs.lever.co/{company}/{id}[/apply].
func (f *LeverFetcher) Match(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	return (host == "jobs.lever.co" || host == "jobs.eu.lever.co") && len(pathSegments(u)) >= 2
}

// Fetch retrieves the posting and joins its description sections.
func (f *LeverFetcher) Fetch(ctx context.Context, rawURL string) (model.Page, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return model.Page{}, err
	}
	if !f.Match(u) {
		return model.Page{}, fmt.Errorf("%w %q: not a lever posting", ErrInvalidURL, rawURL)
	}
	segs := pathSegments(u)
	company, id := segs[0], segs[1]

	var lj leverJob
	apiURL := fmt.Sprintf("%s/%s/%s", f.baseURL, url.PathEscape(company), url.PathEscape(id))
	if err := getJSON(ctx, f.client, apiURL, rawURL, &lj); err != nil {
		return model.Page{}, fmt.Errorf("lever fetch for %s: %w", company, err)
	}

	var parts []string
	if lj.Categories.Location != "" {
		parts = append(parts, "Location: "+lj.Categories.Location)
	}
	if d := strings.TrimSpace(lj.DescriptionPlain); d != "" {
		parts = append(parts, d)
	}
	for _, l := range lj.Lists {
		section := fragmentText(l.Content)
		if section == "" {
			continue
		}
		parts = append(parts, l.Text+"\n"+section)
	}
	if a := strings.TrimSpace(lj.AdditionalPlain); a != "" {
		parts = append(parts, a)
	}

	return finishPage(model.Page{URL: rawURL, Title: lj.Text, Content: strings.Join(parts, "\n")}, f.maxLength)
}

// --- Ashby ---

// ashbyJob represents a single job in the Ashby job board API response.
type ashbyJob struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Location         string `json:"location"`
	JobURL           string `json:"jobUrl"`
	DescriptionPlain string `json:"descriptionPlain"`
	DescriptionHTML  string `json:"descriptionHtml"`
}

type ashbyResponse struct {
	Jobs []ashbyJob `json:"jobs"`
}

// AshbyFetcher reads jobs.ashbyhq.com postings via the job board API.
// The API has no single-job endpoint, so the board is listed and searched.
type AshbyFetcher struct {
	client    *http.Client
	baseURL   string
	maxLength int
}

// NewAshbyFetcher creates a fetcher for Ashby-hosted postings.
func NewAshbyFetcher(client *http.Client, maxLength int) *AshbyFetcher {
	return &AshbyFetcher{client: client, baseURL: ashbyBaseURL, maxLength: maxLength}
}

// Match accepts https://jobs.ashbyhq.com/{board}/{id}[/application].
func (f *AshbyFetcher) Match(u *url.URL) bool {
	return strings.ToLower(u.Hostname()) == "jobs.ashbyhq.com" && len(pathSegments(u)) >= 2
}

// ErrPostingNotFound is returned when a board does not list the requested posting.
var ErrPostingNotFound = model.Permanent(errors.New("posting not found on board"))

// Fetch lists the board and returns the posting whose id is in the URL.
func (f *AshbyFetcher) Fetch(ctx context.Context, rawURL string) (model.Page, error) {
	u, err := validateURL(rawURL)
	if err != nil {
		return model.Page{}, err
	}
	if !f.Match(u) {
		return model.Page{}, fmt.Errorf("%w %q: not an ashby posting", ErrInvalidURL, rawURL)
	}
	segs := pathSegments(u)
	board, id := segs[0], segs[1]

	var resp ashbyResponse
	apiURL := fmt.Sprintf("%s/%s", f.baseURL, url.PathEscape(board))
	if err := getJSON(ctx, f.client, apiURL, rawURL, &resp); err != nil {
		return model.Page{}, fmt.Errorf("ashby fetch for %s: %w", board, err)
	}

	for _, aj := range resp.Jobs {
		if aj.ID != id {
			continue
		}
		content := strings.TrimSpace(aj.DescriptionPlain)
		if content == "" {
			content = fragmentText(aj.DescriptionHTML)
		}
		if aj.Location != "" && content != "" {
			content = "Location: " + aj.Location + "\n" + content
		}
		return finishPage(model.Page{URL: rawURL, Title: aj.Title, Content: content}, f.maxLength)
	}
	return model.Page{}, fmt.Errorf("ashby fetch for %s: %s: %w", board, id, ErrPostingNotFound)
}

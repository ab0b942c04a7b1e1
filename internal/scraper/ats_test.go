package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// roundTripFunc adapts a function into an http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// redirectClient rewrites every request to hit srv, keeping the path.
func redirectClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestGreenhouseFetcher_Match(t *testing.T) {
	f := NewGreenhouseFetcher(http.DefaultClient, 0)
	tests := map[string]bool{
		"https://boards.greenhouse.io/acme/jobs/44444":        true,
		"https://job-boards.greenhouse.io/acme/jobs/44444":    true,
		"https://job-boards.eu.greenhouse.io/acme/jobs/44444": true,
		"https://boards.greenhouse.io/acme":                   false,
		"https://jobs.lever.co/acme/abc":                      false,
		"https://job-boards.example.com/acme/jobs/1":          false,
	}
	for raw, want := range tests {
		if got := f.Match(mustParse(t, raw)); got != want {
			t.Errorf("Match(%s) = %v, want %v", raw, got, want)
		}
	}
}

func TestGreenhouseFetcher_Fetch(t *testing.T) {
	payload := `{
		"id": 44444,
		"title": "Product Engineer",
		"location": {"name": "San Francisco, CA"},
		"content": "&lt;p&gt;This is the job description.&lt;/p&gt;&lt;ul&gt;&lt;li&gt;Go&lt;/li&gt;&lt;/ul&gt;",
		"absolute_url": "https://boards.greenhouse.io/acme/jobs/44444"
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/boards/acme/jobs/44444" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewGreenhouseFetcher(redirectClient(srv), 0)
	page, err := f.Fetch(context.Background(), "https://boards.greenhouse.io/acme/jobs/44444")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Title != "Product Engineer" {
		t.Errorf("Title = %q", page.Title)
	}
	want := "Location: San Francisco, CA\nThis is the job description.\nGo"
	if page.Content != want {
		t.Errorf("Content\n got  %q\n want %q", page.Content, want)
	}
}

func TestGreenhouseFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewGreenhouseFetcher(redirectClient(srv), 0)
	if _, err := f.Fetch(context.Background(), "https://boards.greenhouse.io/acme/jobs/1"); err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

func TestLeverFetcher_Fetch(t *testing.T) {
	payload := `{
		"id": "ff7ef527",
		"text": "Software Engineer",
		"descriptionPlain": "Plain text job description",
		"lists": [
			{"text": "Requirements", "content": "<li>Go</li><li>Postgres</li>"},
			{"text": "Empty", "content": ""}
		],
		"additionalPlain": "We are remote friendly.",
		"categories": {"team": "Engineering", "location": "Remote", "commitment": "Full-time"},
		"hostedUrl": "https://jobs.lever.co/acme/ff7ef527"
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/postings/acme/ff7ef527" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewLeverFetcher(redirectClient(srv), 0)
	page, err := f.Fetch(context.Background(), "https://jobs.lever.co/acme/ff7ef527/apply")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Title != "Software Engineer" {
		t.Errorf("Title = %q", page.Title)
	}
	want := "Location: Remote\nPlain text job description\nRequirements\nGo\nPostgres\nWe are remote friendly."
	if page.Content != want {
		t.Errorf("Content\n got  %q\n want %q", page.Content, want)
	}
}

func TestAshbyFetcher_Fetch(t *testing.T) {
	payload := `{"jobs": [
		{"id": "other", "title": "Designer", "descriptionPlain": "Figma"},
		{"id": "abc-123", "title": "Platform Engineer", "location": "Berlin", "descriptionHtml": "<p>Terraform and AWS</p>"}
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posting-api/job-board/acme" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	f := NewAshbyFetcher(redirectClient(srv), 0)
	page, err := f.Fetch(context.Background(), "https://jobs.ashbyhq.com/acme/abc-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Title != "Platform Engineer" || page.Content != "Location: Berlin\nTerraform and AWS" {
		t.Errorf("page = %+v", page)
	}

	_, err = f.Fetch(context.Background(), "https://jobs.ashbyhq.com/acme/missing")
	if !errors.Is(err, ErrPostingNotFound) {
		t.Errorf("expected ErrPostingNotFound, got %v", err)
	}
}

func TestAshbyFetcher_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not valid json`))
	}))
	defer srv.Close()

	f := NewAshbyFetcher(redirectClient(srv), 0)
	_, err := f.Fetch(context.Background(), "https://jobs.ashbyhq.com/acme/abc")
	if err == nil || !strings.Contains(err.Error(), "ashby fetch for acme") {
		t.Fatalf("expected wrapped decode error, got %v", err)
	}
}

package scraper

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/amishk599/coldreach/internal/model"
)

type stubFetcher struct {
	name  string
	err   error
	calls int
}

func (s *stubFetcher) Fetch(_ context.Context, rawURL string) (model.Page, error) {
	s.calls++
	if s.err != nil {
		return model.Page{}, s.err
	}
	return model.Page{URL: rawURL, Title: s.name, Content: "text from " + s.name}, nil
}

type stubBoard struct {
	stubFetcher
	host string
}

func (b *stubBoard) Match(u *url.URL) bool { return u.Hostname() == b.host }

func TestRouter_DispatchesToMatchingBoard(t *testing.T) {
	generic := &stubFetcher{name: "generic"}
	board := &stubBoard{stubFetcher: stubFetcher{name: "board"}, host: "jobs.example.com"}
	r := NewRouter(generic, board)

	page, err := r.Fetch(context.Background(), "https://jobs.example.com/acme/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Title != "board" || generic.calls != 0 {
		t.Errorf("page = %+v, generic calls = %d", page, generic.calls)
	}

	page, err = r.Fetch(context.Background(), "https://careers.other.com/role")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Title != "generic" {
		t.Errorf("page = %+v, want generic", page)
	}
}

func TestRouter_FallsBackOnBoard404(t *testing.T) {
	generic := &stubFetcher{name: "generic"}
	board := &stubBoard{
		stubFetcher: stubFetcher{err: &model.HTTPError{StatusCode: 404}},
		host:        "jobs.example.com",
	}
	r := NewRouter(generic, board)

	page, err := r.Fetch(context.Background(), "https://jobs.example.com/acme/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Title != "generic" || board.calls != 1 {
		t.Errorf("page = %+v, board calls = %d", page, board.calls)
	}
}

func TestRouter_PropagatesOtherBoardErrors(t *testing.T) {
	generic := &stubFetcher{name: "generic"}
	board := &stubBoard{
		stubFetcher: stubFetcher{err: &model.HTTPError{StatusCode: 503}},
		host:        "jobs.example.com",
	}
	r := NewRouter(generic, board)

	_, err := r.Fetch(context.Background(), "https://jobs.example.com/acme/1")
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 503 {
		t.Fatalf("expected HTTP 503, got %v", err)
	}
	if generic.calls != 0 {
		t.Errorf("generic fetcher called %d times", generic.calls)
	}
}

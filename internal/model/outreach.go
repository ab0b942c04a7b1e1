package model

import "context"

// Entry is one row of the portfolio table.
type Entry struct {
	Techstack string // free-form tech stack description, e.g. "React, Node.js, MongoDB"
	Links     string // portfolio link showcasing that stack
}

// Page is the extracted text of a fetched job posting.
type Page struct {
	URL     string
	Title   string
	Content string // visible text, tags stripped
}

// Email is a drafted outreach email.
type Email struct {
	Body     string
	Fallback bool // true when Body is the generic message shown after a generation failure
}

// Result is the outcome of one outreach run for a job URL.
type Result struct {
	JobURL        string
	JobTitle      string
	Links         []string // portfolio links picked by the similarity query, at most n
	Email         Email
	GenerationErr error // set when the model call failed and Email is the fallback
}

// PageFetcher loads a job posting and returns its text.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Notifier delivers a drafted email somewhere the user will see it.
type Notifier interface {
	Notify(ctx context.Context, result Result) error
}

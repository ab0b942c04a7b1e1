package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/coldreach/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// Slack rejects section text longer than this.
const maxSectionText = 3000

// SlackNotifier posts drafted emails to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each result to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends the result as one Block Kit message. A 429 is retried once
// after the Retry-After delay.
func (s *SlackNotifier) Notify(ctx context.Context, r model.Result) error {
	body, err := json.Marshal(buildPayload(r))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	status, retryAfter, err := s.post(ctx, body)
	if err != nil {
		return err
	}

	retried := false
	if status == http.StatusTooManyRequests {
		s.logger.Warn("slack rate limited, retrying", "retry_after", retryAfter)
		select {
		case <-ctx.Done():
			return fmt.Errorf("slack retry cancelled: %w", ctx.Err())
		case <-time.After(retryAfter):
		}

		status, _, err = s.post(ctx, body)
		if err != nil {
			return fmt.Errorf("retry: %w", err)
		}
		retried = true
	}

	if status != http.StatusOK {
		return &model.HTTPError{URL: "slack webhook", StatusCode: status}
	}
	s.logger.Info("slack message sent", "url", r.JobURL, "retried", retried)
	return nil
}

func (s *SlackNotifier) post(ctx context.Context, body []byte) (int, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
	if secs <= 0 {
		secs = 1
	}
	return resp.StatusCode, time.Duration(secs) * time.Second, nil
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendTestMessage sends a sample draft to verify the integration works.
func SendTestMessage(ctx context.Context, n model.Notifier) error {
	return n.Notify(ctx, model.Result{
		JobURL:   "https://example.com/jobs/coldreach-test",
		JobTitle: "Test Notification: Integration Verified",
		Links:    []string{"https://example.com/portfolio"},
		Email: model.Email{
			Body: "Hi there,\n\nThis is a test message from coldreach. If you can read it, delivery works.\n\nBest,\ncoldreach",
		},
	})
}

func truncateText(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}

func buildPayload(r model.Result) slackPayload {
	title := r.JobTitle
	if title == "" {
		title = r.JobURL
	}

	status := "Drafted"
	if r.Email.Fallback {
		status = "Generation failed"
	}

	var links []string
	for _, l := range r.Links {
		if l != "" {
			links = append(links, "<"+l+">")
		}
	}
	linkText := "*Portfolio:* (none)"
	if len(links) > 0 {
		linkText = "*Portfolio:* " + strings.Join(links, ", ")
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: truncateText("✉️ "+title, 150)},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: fmt.Sprintf("*Job:* <%s>\n*Status:* %s", r.JobURL, status)},
		},
		{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: truncateText(r.Email.Body, maxSectionText)},
		},
		{
			Type:     "context",
			Elements: []slackText{{Type: "mrkdwn", Text: linkText}},
		},
		{Type: "divider"},
	}

	return slackPayload{
		Text:   "Cold email drafted for " + r.JobURL,
		Blocks: blocks,
	}
}

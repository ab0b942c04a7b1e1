package notifier

import (
	"context"
	"log/slog"

	"github.com/amishk599/coldreach/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes each drafted email to the given logger as a structured message.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each result via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the job URL, matched links and email body.
// Returns nil (logging does not fail).
func (n *LogNotifier) Notify(_ context.Context, r model.Result) error {
	args := []any{"url", r.JobURL, "title", r.JobTitle, "links", r.Links, "fallback", r.Email.Fallback, "email", r.Email.Body}
	if r.GenerationErr != nil {
		args = append(args, "generation_error", r.GenerationErr)
	}
	n.logger.Info("drafted email", args...)
	return nil
}

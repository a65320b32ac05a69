package aiproxy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/lyceum-academy/lyceum/internal/logging"
	"github.com/lyceum-academy/lyceum/internal/metrics"
)

const (
	SummarizeFailedText  = "Error: Could not summarize notes."
	DraftEmailFailedText = "Error: Could not draft email. Please try again."
	AnalyzeFailedText    = "Failed to analyze document."
)

// ErrAnalyzeFailed is the only error AnalyzeDocument surfaces. Backend
// details are logged, never returned.
var ErrAnalyzeFailed = errors.New("aiproxy: failed to analyze document")

// Helpers converts backend failures at the boundary: summaries and drafts
// degrade to placeholder text, analysis fails with ErrAnalyzeFailed.
type Helpers struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time
}

func NewHelpers(backend Backend, logger *slog.Logger) *Helpers {
	if backend == nil {
		backend = Simulated{}
	}
	return &Helpers{backend: backend, logger: logging.OrDefault(logger), now: time.Now}
}

func (h *Helpers) Summarize(ctx context.Context, text string) string {
	start := h.now()
	summary, err := h.backend.Summarize(ctx, text)
	h.observe("summarize", start, err)
	if err != nil {
		h.logger.Warn("summarize failed", "err", err)
		return SummarizeFailedText
	}
	return summary
}

func (h *Helpers) AnalyzeDocument(ctx context.Context, text string) (map[string]any, error) {
	start := h.now()
	analysis, err := h.backend.AnalyzeDocument(ctx, text)
	h.observe("analyze_document", start, err)
	if err != nil {
		h.logger.Warn("document analysis failed", "err", err)
		return nil, ErrAnalyzeFailed
	}
	return analysis, nil
}

func (h *Helpers) DraftEmail(ctx context.Context, prompt, subjectName string) string {
	start := h.now()
	draft, err := h.backend.DraftEmail(ctx, prompt, subjectName)
	h.observe("draft_email", start, err)
	if err != nil {
		h.logger.Warn("email draft failed", "err", err)
		return DraftEmailFailedText
	}
	return draft
}

func (h *Helpers) observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.AIRequestsTotal.WithLabelValues(operation, status).Inc()
	metrics.AIRequestDuration.WithLabelValues(operation).Observe(h.now().Sub(start).Seconds())
}

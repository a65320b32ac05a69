package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/lyceum-academy/lyceum/internal/logging"
	"github.com/lyceum-academy/lyceum/internal/metrics"
	"github.com/lyceum-academy/lyceum/internal/store"
)

const (
	maxVisitorIDLen = 128
	maxPathLen      = 2048
	maxReferrerLen  = 2048
	maxUserAgentLen = 512
)

var ErrInvalidVisit = errors.New("tracking: invalid visit")

type VisitWriter interface {
	InsertVisit(ctx context.Context, arg store.InsertVisitParams) (int64, error)
}

// Recorder validates incoming beacons and stores them.
type Recorder struct {
	writer VisitWriter
	logger *slog.Logger
}

func NewRecorder(w VisitWriter, logger *slog.Logger) *Recorder {
	return &Recorder{writer: w, logger: logging.OrDefault(logger)}
}

func (r *Recorder) Record(ctx context.Context, v Visit, ip string) error {
	params, err := normalizeVisit(v, ip)
	if err != nil {
		metrics.VisitsRecordedTotal.WithLabelValues("rejected").Inc()
		return err
	}
	if _, err := r.writer.InsertVisit(ctx, params); err != nil {
		metrics.VisitsRecordedTotal.WithLabelValues("error").Inc()
		r.logger.Error("record visit failed", "path", params.Path, "err", err)
		return err
	}
	metrics.VisitsRecordedTotal.WithLabelValues("recorded").Inc()
	return nil
}

func normalizeVisit(v Visit, ip string) (store.InsertVisitParams, error) {
	visitorID := strings.TrimSpace(v.VisitorID)
	if visitorID == "" || len(visitorID) > maxVisitorIDLen {
		return store.InsertVisitParams{}, fmt.Errorf("%w: visitorId", ErrInvalidVisit)
	}
	path := strings.TrimSpace(v.Path)
	if !strings.HasPrefix(path, "/") || len(path) > maxPathLen {
		return store.InsertVisitParams{}, fmt.Errorf("%w: path", ErrInvalidVisit)
	}
	return store.InsertVisitParams{
		VisitorID: visitorID,
		Path:      path,
		Referrer:  truncate(strings.TrimSpace(v.Referrer), maxReferrerLen),
		UserAgent: truncate(strings.TrimSpace(v.UserAgent), maxUserAgentLen),
		IP:        strings.TrimSpace(ip),
	}, nil
}

// truncate cuts s to at most n bytes without leaving a partial rune at the
// end. Invalid bytes earlier in s are kept as they are.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	start := len(s) - 1
	for start > 0 && len(s)-start < utf8.UTFMax && !utf8.RuneStart(s[start]) {
		start--
	}
	if start >= 0 && !utf8.FullRuneInString(s[start:]) {
		return s[:start]
	}
	return s
}

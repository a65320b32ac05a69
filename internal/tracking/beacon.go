package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lyceum-academy/lyceum/internal/logging"
	"github.com/lyceum-academy/lyceum/internal/metrics"
)

// TrackPath is the collector endpoint, relative to the base URL.
const TrackPath = "/public/track-visit"

const defaultBeaconTimeout = 5 * time.Second

// Visit is the beacon body.
type Visit struct {
	VisitorID string `json:"visitorId"`
	Path      string `json:"path"`
	Referrer  string `json:"referrer"`
	UserAgent string `json:"userAgent"`
}

// Beacon posts visits to a collector. TrackVisit returns immediately; the
// request runs in its own goroutine, detached from the caller's
// cancellation, and any failure is logged and dropped.
type Beacon struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger

	inflight sync.WaitGroup
}

func NewBeacon(baseURL string, hc *http.Client, logger *slog.Logger) *Beacon {
	if hc == nil {
		hc = &http.Client{Timeout: defaultBeaconTimeout}
	}
	return &Beacon{
		endpoint: strings.TrimRight(baseURL, "/") + TrackPath,
		http:     hc,
		logger:   logging.OrDefault(logger),
	}
}

func (b *Beacon) TrackVisit(ctx context.Context, v Visit) {
	ctx = context.WithoutCancel(ctx)
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		if err := b.send(ctx, v); err != nil {
			metrics.BeaconFailuresTotal.Inc()
			b.logger.Warn("visitor tracking failed", "path", v.Path, "err", err)
		}
	}()
}

// Wait blocks until every beacon started so far has finished. It is only
// used at shutdown and in tests.
func (b *Beacon) Wait() {
	b.inflight.Wait()
}

func (b *Beacon) send(ctx context.Context, v Visit) error {
	ctx, cancel := context.WithTimeout(ctx, defaultBeaconTimeout)
	defer cancel()

	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("collector returned %s", resp.Status)
	}
	return nil
}

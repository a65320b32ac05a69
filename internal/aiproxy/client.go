// Package aiproxy talks to the upstream text assistance backend used for
// note summaries, document analysis and email drafts.
package aiproxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRateLimit = rate.Limit(2)
	defaultBurst     = 4

	maxErrorBody = 4 << 10
)

// Backend is the set of round trips the helpers depend on.
type Backend interface {
	Summarize(ctx context.Context, text string) (string, error)
	AnalyzeDocument(ctx context.Context, text string) (map[string]any, error)
	DraftEmail(ctx context.Context, prompt, subjectName string) (string, error)
}

var ErrAPI = errors.New("ai backend error")

type APIError struct {
	StatusCode int
	Status     string
	Summary    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	status := strings.TrimSpace(e.Status)
	summary := strings.TrimSpace(e.Summary)
	if status != "" && summary != "" {
		return fmt.Sprintf("ai backend error: %s: %s", status, summary)
	}
	if status != "" {
		return fmt.Sprintf("ai backend error: %s", status)
	}
	if summary != "" {
		return fmt.Sprintf("ai backend error: %s", summary)
	}
	return "ai backend error"
}

func (e *APIError) Unwrap() error {
	return ErrAPI
}

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	RateLimit  float64
	HTTPClient *http.Client
}

// Client is an HTTP JSON Backend. Calls wait on a shared limiter before
// hitting the network.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("aiproxy: base URL is required")
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	limit := defaultRateLimit
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Client{
		baseURL: base,
		apiKey:  strings.TrimSpace(opts.APIKey),
		http:    hc,
		limiter: rate.NewLimiter(limit, defaultBurst),
	}, nil
}

type summarizeRequest struct {
	Text string `json:"text"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

type analyzeResponse struct {
	Analysis map[string]any `json:"analysis"`
}

type draftRequest struct {
	Prompt      string `json:"prompt"`
	StudentName string `json:"studentName"`
}

type draftResponse struct {
	Draft string `json:"draft"`
}

func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	var out summarizeResponse
	if err := c.post(ctx, "/summarize", summarizeRequest{Text: text}, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

func (c *Client) AnalyzeDocument(ctx context.Context, text string) (map[string]any, error) {
	var out analyzeResponse
	if err := c.post(ctx, "/analyze-document", summarizeRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	if out.Analysis == nil {
		return nil, &APIError{Summary: "response has no analysis"}
	}
	return out.Analysis, nil
}

func (c *Client) DraftEmail(ctx context.Context, prompt, subjectName string) (string, error) {
	var out draftResponse
	if err := c.post(ctx, "/draft-email", draftRequest{Prompt: prompt, StudentName: subjectName}, &out); err != nil {
		return "", err
	}
	return out.Draft, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Summary: errorSummary(snippet)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func errorSummary(body []byte) string {
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return strings.TrimSpace(string(body))
}

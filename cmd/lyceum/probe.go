package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/errgroup"
)

var defaultProbeEndpoints = []string{"/healthz", "/api/apps", "/api/sidebar"}

type probeOptions struct {
	BaseURL   string
	Token     string
	Email     string
	Password  string
	Endpoints []string
	Timeout   time.Duration
	Parallel  int
}

type probeResult struct {
	Endpoint string
	Status   int
	Err      error
	Elapsed  time.Duration
}

func (r probeResult) ok() bool {
	return r.Err == nil && r.Status >= 200 && r.Status < 300
}

var probeOpts = probeOptions{}

var probeCmd = structured(&cobra.Command{
	Use:   "probe",
	Short: "Check that a running server answers its API endpoints.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return runProbe(ctx, probeOpts, cmd.OutOrStdout())
	},
})

func init() {
	f := probeCmd.Flags()
	f.StringVar(&probeOpts.BaseURL, "base-url", "http://localhost:8080", "Server base URL")
	f.StringVar(&probeOpts.Token, "token", "", "Bearer token sent with every request")
	f.StringVar(&probeOpts.Email, "email", "", "Sign in with this email before probing")
	f.StringVar(&probeOpts.Password, "password", "", "Password for --email")
	f.StringSliceVar(&probeOpts.Endpoints, "endpoint", defaultProbeEndpoints, "Endpoint path to GET (repeatable)")
	f.DurationVar(&probeOpts.Timeout, "timeout", 10*time.Second, "Per-request timeout")
	f.IntVar(&probeOpts.Parallel, "parallel", 4, "Maximum concurrent requests")
}

// runProbe GETs every endpoint and prints one OK/FAIL line per endpoint in
// the order given. Any failure yields a silent exit code 1.
func runProbe(ctx context.Context, opts probeOptions, out io.Writer) error {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("invalid --base-url %q", opts.BaseURL)
	}
	if len(opts.Endpoints) == 0 {
		return errors.New("no endpoints to probe")
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return err
	}
	client := &http.Client{
		Jar:     jar,
		Timeout: opts.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	if opts.Email != "" {
		if err := probeLogin(ctx, client, base, opts.Email, opts.Password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	results := make([]probeResult, len(opts.Endpoints))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallel > 0 {
		g.SetLimit(opts.Parallel)
	}
	for i, endpoint := range opts.Endpoints {
		g.Go(func() error {
			results[i] = probeEndpoint(gctx, client, base, endpoint, opts.Token)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.ok() {
			fmt.Fprintf(out, "OK   %s %d %s\n", r.Endpoint, r.Status, r.Elapsed.Round(time.Millisecond))
			continue
		}
		failed++
		detail := http.StatusText(r.Status)
		if r.Err != nil {
			detail = r.Err.Error()
		}
		fmt.Fprintf(out, "FAIL %s %d %s\n", r.Endpoint, r.Status, detail)
	}
	slog.Info("probe finished", "endpoints", len(results), "failed", failed)
	if failed > 0 {
		return &exitError{code: 1, err: fmt.Errorf("%d of %d endpoints failed", failed, len(results)), silent: true}
	}
	return nil
}

func probeEndpoint(ctx context.Context, client *http.Client, base *url.URL, endpoint, token string) probeResult {
	res := probeResult{Endpoint: endpoint}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base.JoinPath(endpoint).String(), nil)
	if err != nil {
		res.Err = err
		return res
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	res.Status = resp.StatusCode
	return res
}

// probeLogin fetches the login form for its CSRF cookie and posts the
// credentials; the session cookie lands in the client's jar.
func probeLogin(ctx context.Context, client *http.Client, base *url.URL, email, password string) error {
	loginURL := base.JoinPath("/login")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loginURL.String(), nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	var token string
	for _, c := range client.Jar.Cookies(loginURL) {
		if c.Name == "_csrf" {
			token = c.Value
		}
	}

	form := url.Values{"email": {email}, "password": {password}, "csrf": {token}}
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, loginURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err = client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusSeeOther {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/pgxstore"
	"github.com/alexedwards/scs/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lyceum-academy/lyceum/internal/aiproxy"
	"github.com/lyceum-academy/lyceum/internal/config"
	"github.com/lyceum-academy/lyceum/internal/grid"
	httpapp "github.com/lyceum-academy/lyceum/internal/http"
	"github.com/lyceum-academy/lyceum/internal/layout"
	"github.com/lyceum-academy/lyceum/internal/maintenance"
	"github.com/lyceum-academy/lyceum/internal/metrics"
	"github.com/lyceum-academy/lyceum/internal/store"
	"github.com/lyceum-academy/lyceum/internal/tracking"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	sessionCookieName = "lyceum_session"
	sessionLifetime   = 12 * time.Hour
	shutdownTimeout   = 10 * time.Second
)

var serveCmd = structured(&cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
})

func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	queries := store.New(pool)

	ai, err := newAIBackend(cfg)
	if err != nil {
		return err
	}

	var beacon *tracking.Beacon
	if cfg.TrackingBaseURL != "" {
		beacon = tracking.NewBeacon(cfg.TrackingBaseURL, &http.Client{}, logger)
	}

	srv, err := httpapp.NewEchoServer(cfg, httpapp.Deps{
		Users:    queries,
		Layouts:  layout.NewService(queries, grid.RectStrategy{Columns: cfg.GridColumns}, logger).WithTx(layout.PoolTx(pool)),
		AI:       aiproxy.NewHelpers(ai, logger),
		Visits:   tracking.NewRecorder(queries, logger),
		DB:       pool,
		Sessions: newSessionManager(pool, cfg.AuthCookieSecure),
		Beacon:   beacon,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	metricsServer := metrics.NewServer(cfg.MetricsAddr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.HTTPAddr, "ai_backend", aiBackendName(cfg))
		return listen(httpServer)
	})
	if metricsServer != nil {
		g.Go(func() error {
			logger.Info("metrics listening", "addr", metricsServer.Addr)
			return listen(metricsServer)
		})
	}
	g.Go(func() error {
		pruner := &maintenance.Scheduler{
			Task: &maintenance.VisitPruner{
				Store:     queries,
				Retention: cfg.VisitRetention,
				Locker:    maintenance.AdvisoryLocker{Pool: pool},
				Logger:    logger,
			},
			Interval: cfg.VisitPruneInterval,
			Logger:   logger,
		}
		if cfg.VisitRetention > 0 {
			pruner.Run(gctx)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		return srv.Shutdown(shutdownCtx, httpServer)
	})
	return g.Wait()
}

func listen(s *http.Server) error {
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newAIBackend returns the HTTP backend when AI_BASE_URL is set and the
// canned simulator otherwise.
func newAIBackend(cfg config.Config) (aiproxy.Backend, error) {
	if !cfg.AIEnabled() {
		return aiproxy.Simulated{}, nil
	}
	return aiproxy.NewClient(aiproxy.Options{
		BaseURL:   cfg.AIBaseURL,
		APIKey:    cfg.AIAPIKey,
		Timeout:   cfg.AITimeout,
		RateLimit: cfg.AIRateLimit,
	})
}

func aiBackendName(cfg config.Config) string {
	if cfg.AIEnabled() {
		return "http"
	}
	return "simulated"
}

func newSessionManager(pool *pgxpool.Pool, secure bool) *scs.SessionManager {
	sessions := scs.New()
	sessions.Store = pgxstore.New(pool)
	sessions.Lifetime = sessionLifetime
	sessions.Cookie.Name = sessionCookieName
	sessions.Cookie.HttpOnly = true
	sessions.Cookie.SameSite = http.SameSiteLaxMode
	sessions.Cookie.Secure = secure
	return sessions
}

package httpapp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/lyceum-academy/lyceum/internal/config"
	"github.com/lyceum-academy/lyceum/internal/http/authn"
	"github.com/lyceum-academy/lyceum/internal/http/handlers"
	"github.com/lyceum-academy/lyceum/internal/layout"
	"github.com/lyceum-academy/lyceum/internal/logging"
	"github.com/lyceum-academy/lyceum/internal/tracking"
)

// Deps are the services the HTTP server routes to.
type Deps struct {
	Users    handlers.UserStore
	Layouts  *layout.Service
	AI       handlers.AIHelpers
	Visits   handlers.VisitRecorder
	DB       handlers.Pinger
	Sessions *scs.SessionManager
	Beacon   *tracking.Beacon
	Logger   *slog.Logger
}

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h        *handlers.Handlers
	e        *echo.Echo
	sessions *scs.SessionManager
	beacon   *tracking.Beacon
}

// NewEchoServer creates a new HTTP server.
func NewEchoServer(cfg config.Config, deps Deps) (*EchoServer, error) {
	if deps.Sessions == nil {
		return nil, errors.New("httpapp: session manager is required")
	}
	if deps.Users == nil || deps.Layouts == nil {
		return nil, errors.New("httpapp: user store and layout service are required")
	}
	h := &handlers.Handlers{
		Cfg:      cfg,
		Users:    deps.Users,
		Layouts:  deps.Layouts,
		AI:       deps.AI,
		Visits:   deps.Visits,
		DB:       deps.DB,
		Sessions: deps.Sessions,
	}
	e := echo.New()
	e.Logger = logging.OrDefault(deps.Logger)

	es := &EchoServer{h: h, e: e, sessions: deps.Sessions, beacon: deps.Beacon}
	e.HTTPErrorHandler = es.httpErrorHandler
	es.registerRoutes(cfg)
	return es, nil
}

func (es *EchoServer) registerRoutes(cfg config.Config) {
	es.e.Use(requestID(), middleware.Recover(), requestLogger())

	es.e.GET("/healthz", es.h.HandleHealthz)
	if es.h.Visits != nil {
		es.e.POST("/public/track-visit", es.h.HandleTrackVisit)
	}

	csrf := middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:" + echo.HeaderXCSRFToken + ",form:csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.AuthCookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
	})

	public := es.e.Group("", csrf, es.trackPageViews())
	public.GET("/login", es.h.HandleLoginGet)
	public.POST("/login", es.h.HandleLoginPost)

	authed := es.e.Group("", csrf, authn.RequireAuth(es.sessions, es.h.Users), es.trackPageViews())
	authed.POST("/logout", es.h.HandleLogoutPost)
	authed.GET("/", func(c *echo.Context) error { return c.Redirect(http.StatusSeeOther, "/apps") })
	authed.GET("/apps", es.h.HandleAppsPage)
	authed.GET("/api/apps", es.h.HandleAppsList)
	authed.POST("/api/apps/reorder", es.h.HandleAppsReorder)
	authed.POST("/api/apps/move", es.h.HandleAppsMove)
	authed.GET("/api/sidebar", es.h.HandleSidebar)
	authed.POST("/api/sidebar/drop", es.h.HandleSidebarDrop)
	authed.POST("/api/sidebar/reorder", es.h.HandleSidebarReorder)
	authed.DELETE("/api/sidebar/:name", es.h.HandleSidebarRemove)
	if es.h.AI != nil {
		authed.POST("/api/ai/summarize", es.h.HandleAISummarize)
		authed.POST("/api/ai/analyze", es.h.HandleAIAnalyze)
		authed.POST("/api/ai/draft-email", es.h.HandleAIDraftEmail)
	}

	es.e.Static("/static", "web/static")
}

// Handler returns the server's http.Handler with session loading applied.
func (es *EchoServer) Handler() http.Handler {
	return es.sessions.LoadAndSave(es.e)
}

// Shutdown waits for in-flight visit beacons once the listener is closed.
func (es *EchoServer) Shutdown(ctx context.Context, srv *http.Server) error {
	err := srv.Shutdown(ctx)
	if es.beacon != nil {
		done := make(chan struct{})
		go func() {
			es.beacon.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return err
}

func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(echo.HeaderXRequestID))
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			c.Set(handlers.ContextKeyRequestID, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			start := time.Now()
			err := next(c)
			requestID, _ := c.Get(handlers.ContextKeyRequestID).(string)
			c.Logger().Debug("http request",
				"request_id", requestID,
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"duration_ms", time.Since(start).Milliseconds(),
				"error", err,
			)
			return err
		}
	}
}

// trackPageViews sends a beacon for successful HTML page views when a
// collector is configured. API calls are not tracked.
func (es *EchoServer) trackPageViews() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			req := c.Request()
			if es.beacon == nil || req.Method != http.MethodGet || strings.HasPrefix(req.URL.Path, "/api/") {
				return next(c)
			}
			// Resolve before the handler writes so a new id reaches the session cookie.
			visitorID := tracking.VisitorID(req.Context(), sessionVisitors{es.sessions})
			if err := next(c); err != nil {
				return err
			}
			es.beacon.TrackVisit(req.Context(), tracking.Visit{
				VisitorID: visitorID,
				Path:      req.URL.Path,
				Referrer:  req.Referer(),
				UserAgent: req.UserAgent(),
			})
			return nil
		}
	}
}

const sessionKeyVisitorID = "visitor_id"

// sessionVisitors keeps the visitor id in the user's session.
type sessionVisitors struct {
	sessions *scs.SessionManager
}

func (s sessionVisitors) GetVisitorID(ctx context.Context) string {
	return s.sessions.GetString(ctx, sessionKeyVisitorID)
}

func (s sessionVisitors) PutVisitorID(ctx context.Context, id string) {
	s.sessions.Put(ctx, sessionKeyVisitorID, id)
}

type statusCoder interface {
	StatusCode() int
}

func httpStatusFromError(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}
	return http.StatusInternalServerError
}

func (es *EchoServer) httpErrorHandler(c *echo.Context, err error) {
	status := httpStatusFromError(err)
	isAPI := strings.HasPrefix(c.Request().URL.Path, "/api/")

	if status >= http.StatusInternalServerError {
		if isAPI {
			requestID, _ := c.Get(handlers.ContextKeyRequestID).(string)
			c.Logger().Error("http error", "request_id", requestID, "path", c.Request().URL.Path, "error", err)
			_ = c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Internal server error.", "reference": requestID, "code": handlers.InternalErrorCode,
			})
			return
		}
		_ = es.h.RenderError(c, err)
		return
	}

	switch {
	case isAPI:
		_ = c.JSON(status, map[string]string{"error": strings.ToLower(http.StatusText(status))})
	case status == http.StatusNotFound:
		_ = handlers.RenderNotFound(c)
	default:
		_ = c.String(status, http.StatusText(status))
	}
}

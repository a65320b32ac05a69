// Package handlers contains HTTP handler logic split by domain.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/alexedwards/scs/v2"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/lyceum-academy/lyceum/internal/auth"
	"github.com/lyceum-academy/lyceum/internal/catalog"
	"github.com/lyceum-academy/lyceum/internal/config"
	"github.com/lyceum-academy/lyceum/internal/http/authn"
	"github.com/lyceum-academy/lyceum/internal/http/viewmodels"
	"github.com/lyceum-academy/lyceum/internal/layout"
	"github.com/lyceum-academy/lyceum/internal/sidebar"
	"github.com/lyceum-academy/lyceum/internal/store"
	"github.com/lyceum-academy/lyceum/internal/tracking"
)

const (
	// ContextKeyRequestID stores the request id (X-Request-ID) for logging and client error references.
	ContextKeyRequestID = "request_id"

	// InternalErrorCode is a stable error code safe to return to clients.
	InternalErrorCode = "INTERNAL_ERROR"
)

// UserStore is the account persistence the handlers use.
type UserStore interface {
	authn.UserLoader
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateUserLoginMeta(ctx context.Context, arg store.UpdateUserLoginMetaParams) error
}

// AIHelpers is satisfied by *aiproxy.Helpers.
type AIHelpers interface {
	Summarize(ctx context.Context, text string) string
	AnalyzeDocument(ctx context.Context, text string) (map[string]any, error)
	DraftEmail(ctx context.Context, prompt, subjectName string) string
}

// VisitRecorder is satisfied by *tracking.Recorder.
type VisitRecorder interface {
	Record(ctx context.Context, v tracking.Visit, ip string) error
}

// Pinger reports database reachability. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Cfg      config.Config
	Users    UserStore
	Layouts  *layout.Service
	AI       AIHelpers
	Visits   VisitRecorder
	DB       Pinger
	Sessions *scs.SessionManager
}

// LayoutData builds the common layout data for page rendering.
func (h *Handlers) LayoutData(ctx context.Context, c *echo.Context, title string) (viewmodels.LayoutData, error) {
	principal, ok := authn.PrincipalFromContext(c)
	csrfToken, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)

	data := viewmodels.LayoutData{
		Title:      title,
		CSRFToken:  csrfToken,
		Toast:      popFlashToast(c),
		ActivePath: c.Request().URL.Path,
	}
	if !ok {
		return data, nil
	}
	data.UserName = principal.Name
	data.UserEmail = principal.Email
	data.UserRole = principal.Role
	data.IsAdmin = principal.IsAdmin()

	if h.Layouts != nil {
		sb, err := h.Layouts.Sidebar(ctx, layoutUser(principal))
		if err != nil {
			return data, err
		}
		data.Sidebar = sidebarItems(sb, data.ActivePath)
	}
	return data, nil
}

func layoutUser(p auth.Principal) layout.User {
	return layout.User{ID: p.UserID, Role: p.Role, Permissions: p.Permissions}
}

func sidebarItems(sb sidebar.Sidebar, activePath string) []viewmodels.SidebarItem {
	out := make([]viewmodels.SidebarItem, 0, len(sb.Items))
	for _, name := range sb.Items {
		item := viewmodels.SidebarItem{
			Name:      name,
			Icon:      "layout-grid",
			Href:      AppHref(name),
			Removable: !sidebar.IsProtected(name),
		}
		if entry, ok := catalog.Lookup(name); ok {
			item.Icon = entry.Icon
		}
		item.Active = item.Href == activePath
		out = append(out, item)
	}
	return out
}

// AppHref returns the navigation href for a grid or sidebar entry.
func AppHref(name string) string {
	switch name {
	case "Apps":
		return "/apps"
	case "dashboard", "student_dashboard":
		return "/"
	default:
		return "/apps/" + strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
	}
}

// RenderComponent renders a templ component as the response.
func (h *Handlers) RenderComponent(c *echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(c.Request().Context(), c.Response()); err != nil {
		return h.RenderError(c, err)
	}
	return nil
}

// RenderError returns a plain text error response.
func (h *Handlers) RenderError(c *echo.Context, err error) error {
	requestID, _ := c.Get(ContextKeyRequestID).(string)
	path := ""
	if req := c.Request(); req != nil && req.URL != nil {
		path = req.URL.Path
	}
	method := ""
	if req := c.Request(); req != nil {
		method = req.Method
	}
	c.Logger().Error("http error",
		"request_id", requestID,
		"method", method,
		"path", path,
		"ip", c.RealIP(),
		"error", err,
	)

	msg := "Internal server error."
	if requestID != "" {
		msg = fmt.Sprintf("%s Reference: %s.", msg, requestID)
	}
	msg = fmt.Sprintf("%s Code: %s.", msg, InternalErrorCode)
	return c.String(http.StatusInternalServerError, msg)
}

// RenderNotFound returns a 404 response.
func RenderNotFound(c *echo.Context) error {
	return c.String(http.StatusNotFound, "404 page not found")
}

// jsonError writes {"error": msg}.
func jsonError(c *echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}

// currentUser returns the layout owner for the signed-in principal. Routes
// behind RequireAuth always have one.
func currentUser(c *echo.Context) (layout.User, bool) {
	p, ok := authn.PrincipalFromContext(c)
	if !ok {
		return layout.User{}, false
	}
	return layoutUser(p), true
}

// HandleHealthz reports liveness, and database reachability when a pool is
// configured.
func (h *Handlers) HandleHealthz(c *echo.Context) error {
	if h.DB != nil {
		if err := h.DB.Ping(c.Request().Context()); err != nil {
			c.Logger().Warn("health check failed", "error", err)
			return c.String(http.StatusServiceUnavailable, "unavailable")
		}
	}
	return c.String(http.StatusOK, "ok")
}

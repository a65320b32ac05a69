package authn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v5"
	"github.com/lyceum-academy/lyceum/internal/auth"
	"github.com/lyceum-academy/lyceum/internal/store"
)

func TestSanitizeNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace", in: "   ", want: ""},
		{name: "root", in: "/", want: ""},
		{name: "ok_path", in: "/apps", want: "/apps"},
		{name: "ok_path_query", in: "/apps?view=grid", want: "/apps?view=grid"},
		{name: "ok_root_query", in: "/?tab=recent", want: "/?tab=recent"},
		{name: "absolute_url", in: "https://evil.example/", want: ""},
		{name: "protocol_relative", in: "//evil.example/", want: ""},
		{name: "triple_slash", in: "///evil.example/", want: ""},
		{name: "backslash", in: "/\\evil.example/", want: ""},
		{name: "encoded_slash", in: "/%2f%2fevil.example/", want: ""},
		{name: "encoded_backslash", in: "/%5cevil.example/", want: ""},
		{name: "login_path", in: "/login", want: ""},
		{name: "login_subpath", in: "/login/reset", want: ""},
		{name: "newline", in: "/\n/evil", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeNext(tt.in); got != tt.want {
				t.Fatalf("SanitizeNext(%q)=%q; want %q", tt.in, got, tt.want)
			}
		})
	}
}

type fakeUsers map[int64]store.User

func (f fakeUsers) GetUser(_ context.Context, id int64) (store.User, error) {
	u, ok := f[id]
	if !ok {
		return store.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func newSessionContext(t *testing.T, method, target string, userID int64) (*echo.Context, *httptest.ResponseRecorder, *scs.SessionManager) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	sessions := scs.New()
	ctx, err := sessions.Load(req.Context(), "")
	if err != nil {
		t.Fatalf("sessions.Load() error = %v", err)
	}
	if userID > 0 {
		sessions.Put(ctx, SessionKeyUserID, userID)
	}
	c.SetRequest(req.WithContext(ctx))
	return c, rec, sessions
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	t.Parallel()

	next := func(c *echo.Context) error {
		t.Fatal("next handler should not run")
		return nil
	}

	c, rec, sessions := newSessionContext(t, http.MethodGet, "/api/apps", 0)
	if err := RequireAuth(sessions, fakeUsers{})(next)(c); err != nil {
		t.Fatalf("RequireAuth() error = %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	c, rec, sessions = newSessionContext(t, http.MethodGet, "/apps?view=grid", 0)
	if err := RequireAuth(sessions, fakeUsers{})(next)(c); err != nil {
		t.Fatalf("RequireAuth() error = %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/login?next=%2Fapps%3Fview%3Dgrid" {
		t.Fatalf("Location = %q", got)
	}
}

func TestRequireAuthLoadsPrincipal(t *testing.T) {
	t.Parallel()

	users := fakeUsers{
		4: {ID: 4, Email: "tutor@lyceum.com", Role: "Staff", IsActive: true, IsVerified: true},
		5: {ID: 5, Email: "gone@lyceum.com", Role: "Staff"},
	}

	c, _, sessions := newSessionContext(t, http.MethodGet, "/api/apps", 4)
	var got auth.Principal
	err := RequireAuth(sessions, users)(func(c *echo.Context) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			t.Fatal("principal missing from context")
		}
		got = p
		return nil
	})(c)
	if err != nil {
		t.Fatalf("RequireAuth() error = %v", err)
	}
	if got.UserID != 4 || got.Role != auth.RoleStaff {
		t.Fatalf("principal = %+v", got)
	}

	c, rec, sessions := newSessionContext(t, http.MethodGet, "/api/apps", 5)
	if err := RequireAuth(sessions, users)(func(*echo.Context) error { return nil })(c); err != nil {
		t.Fatalf("RequireAuth() error = %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("inactive user status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	c, rec, _ := newSessionContext(t, http.MethodGet, "/api/admin", 0)
	c.Set(ContextKeyPrincipal, auth.Principal{UserID: 1, Role: auth.RoleStaff})
	if err := RequireRole("admin")(func(*echo.Context) error { return nil })(c); err != nil {
		t.Fatalf("RequireRole() error = %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}

	c, _, _ = newSessionContext(t, http.MethodGet, "/api/admin", 0)
	c.Set(ContextKeyPrincipal, auth.Principal{UserID: 1, Role: auth.RoleAdmin})
	called := false
	if err := RequireRole("admin")(func(*echo.Context) error { called = true; return nil })(c); err != nil {
		t.Fatalf("RequireRole() error = %v", err)
	}
	if !called {
		t.Fatal("admin should pass RequireRole(admin)")
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func decodeApps(t *testing.T, body string) []string {
	t.Helper()
	var resp appsResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		t.Fatalf("decode response: %v (%q)", err, body)
	}
	names := make([]string, 0, len(resp.Apps))
	for _, a := range resp.Apps {
		names = append(names, a.Name)
	}
	return names
}

func TestHandleAppsListRequiresPrincipal(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/apps")
	if err := newLayoutHandlers(newMemLayouts()).HandleAppsList(c); err != nil {
		t.Fatalf("HandleAppsList() error = %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandleAppsList(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/api/apps")
	withPrincipal(c, studentPrincipal)

	if err := newLayoutHandlers(newMemLayouts()).HandleAppsList(c); err != nil {
		t.Fatalf("HandleAppsList() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	got := decodeApps(t, rec.Body.String())
	if len(got) == 0 || got[0] != "LMS" {
		t.Fatalf("apps = %v", got)
	}
	if !strings.Contains(rec.Body.String(), `"columns":6`) {
		t.Fatalf("response missing default columns: %s", rec.Body.String())
	}
}

func TestHandleAppsReorderPersists(t *testing.T) {
	m := newMemLayouts()
	h := newLayoutHandlers(m)

	c, rec := newTestContextWithBody(http.MethodPost, "/api/apps/reorder", strings.NewReader(`{"source":"Discuss","target":"LMS"}`))
	withPrincipal(c, studentPrincipal)
	if err := h.HandleAppsReorder(c); err != nil {
		t.Fatalf("HandleAppsReorder() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	got := decodeApps(t, rec.Body.String())
	if got[0] != "Discuss" || got[1] != "LMS" {
		t.Fatalf("apps = %v, want Discuss first", got)
	}
	if saved := m.layouts[studentPrincipal.UserID].AppOrder; len(saved) != len(got) || saved[0] != "Discuss" {
		t.Fatalf("saved order = %v", saved)
	}
}

func TestHandleAppsReorderRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed", body: `{"source":`, want: http.StatusBadRequest},
		{name: "missing target", body: `{"source":"LMS"}`, want: http.StatusBadRequest},
		{name: "invisible app", body: `{"source":"Settings","target":"LMS"}`, want: http.StatusUnprocessableEntity},
		{name: "unknown target", body: `{"source":"LMS","target":"Payroll"}`, want: http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMemLayouts()
			c, rec := newTestContextWithBody(http.MethodPost, "/api/apps/reorder", strings.NewReader(tt.body))
			withPrincipal(c, studentPrincipal)
			if err := newLayoutHandlers(m).HandleAppsReorder(c); err != nil {
				t.Fatalf("HandleAppsReorder() error = %v", err)
			}
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if _, ok := m.layouts[studentPrincipal.UserID]; ok {
				t.Fatal("rejected reorder was persisted")
			}
		})
	}
}

func TestHandleAppsPageRendersGrid(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/apps")
	withPrincipal(c, staffPrincipal)

	h := newLayoutHandlers(newMemLayouts())
	h.Cfg.GridColumns = 4
	if err := h.HandleAppsPage(c); err != nil {
		t.Fatalf("HandleAppsPage() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{`id="apps-grid"`, `repeat(4, minmax(0, 1fr))`, `data-name="CRM"`, `data-drop-target="sidebar"`, `tia@lyceum.com`, `>TT<`} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if strings.Contains(body, `data-name="Settings"`) {
		t.Fatal("staff should not see Settings")
	}
	if vary := parseVaryHeader(rec.Header().Get("Vary")); vary["hx-request"] != 1 {
		t.Fatalf("Vary header missing hx-request: %v", vary)
	}
}

func TestHandleAppsPageStoreFailureIsGeneric(t *testing.T) {
	m := newMemLayouts()
	m.fail = errTestStore
	c, rec := newTestContext(http.MethodGet, "/apps")
	c.Set(ContextKeyRequestID, "req-9")
	withPrincipal(c, staffPrincipal)

	if err := newLayoutHandlers(m).HandleAppsPage(c); err != nil {
		t.Fatalf("HandleAppsPage() error = %v", err)
	}
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), errTestStore.Error()) {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}

func TestHandleAppsReorderRejectsOversizedBody(t *testing.T) {
	m := newMemLayouts()
	body := `{"source":"Discuss","target":"LMS","pad":"` + strings.Repeat("x", maxLayoutBody) + `"}`
	c, rec := newTestContextWithBody(http.MethodPost, "/api/apps/reorder", strings.NewReader(body))
	withPrincipal(c, studentPrincipal)
	if err := newLayoutHandlers(m).HandleAppsReorder(c); err != nil {
		t.Fatalf("HandleAppsReorder() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "too large") {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
	if _, ok := m.layouts[studentPrincipal.UserID]; ok {
		t.Fatal("oversized reorder was persisted")
	}
}

func TestHandleAppsMove(t *testing.T) {
	m := newMemLayouts()
	h := newLayoutHandlers(m)

	c, rec := newTestContextWithBody(http.MethodPost, "/api/apps/move", strings.NewReader(`{"name":"LMS","direction":"right"}`))
	withPrincipal(c, studentPrincipal)
	if err := h.HandleAppsMove(c); err != nil {
		t.Fatalf("HandleAppsMove() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	got := decodeApps(t, rec.Body.String())
	if got[0] != "Discuss" || got[1] != "LMS" {
		t.Fatalf("apps = %v, want Discuss then LMS", got)
	}
	if !strings.Contains(rec.Body.String(), `"moved":true`) {
		t.Fatalf("response missing moved=true: %s", rec.Body.String())
	}
	if saved := m.layouts[studentPrincipal.UserID].AppOrder; len(saved) == 0 || saved[0] != "Discuss" {
		t.Fatalf("saved order = %v", saved)
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "bad direction", body: `{"name":"LMS","direction":"sideways"}`, want: http.StatusBadRequest},
		{name: "malformed", body: `{"name":`, want: http.StatusBadRequest},
		{name: "hidden app", body: `{"name":"Settings","direction":"left"}`, want: http.StatusUnprocessableEntity},
		{name: "edge", body: `{"name":"Discuss","direction":"up"}`, want: http.StatusOK},
	}
	for _, tt := range tests {
		c, rec := newTestContextWithBody(http.MethodPost, "/api/apps/move", strings.NewReader(tt.body))
		withPrincipal(c, studentPrincipal)
		if err := h.HandleAppsMove(c); err != nil {
			t.Fatalf("%s: HandleAppsMove() error = %v", tt.name, err)
		}
		if rec.Code != tt.want {
			t.Fatalf("%s: status = %d, want %d", tt.name, rec.Code, tt.want)
		}
		if tt.name == "edge" && !strings.Contains(rec.Body.String(), `"moved":false`) {
			t.Fatalf("edge move reported a change: %s", rec.Body.String())
		}
	}
}

var errTestStore = errors.New("pg: connection reset")

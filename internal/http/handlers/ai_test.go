package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/lyceum-academy/lyceum/internal/aiproxy"
)

func TestHandleAISummarize(t *testing.T) {
	h := &Handlers{AI: fakeAI{}}

	c, rec := newTestContextWithBody(http.MethodPost, "/api/ai/summarize", strings.NewReader(`{"text":"meeting notes"}`))
	if err := h.HandleAISummarize(c); err != nil {
		t.Fatalf("HandleAISummarize() error = %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "summary of meeting notes") {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	c, rec = newTestContextWithBody(http.MethodPost, "/api/ai/summarize", strings.NewReader(`{"text":"   "}`))
	if err := h.HandleAISummarize(c); err != nil {
		t.Fatalf("HandleAISummarize() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleAIAnalyzeFailureIsGeneric(t *testing.T) {
	h := &Handlers{AI: fakeAI{analyzeErr: aiproxy.ErrAnalyzeFailed}}

	c, rec := newTestContextWithBody(http.MethodPost, "/api/ai/analyze", strings.NewReader(`{"text":"transcript"}`))
	if err := h.HandleAIAnalyze(c); err != nil {
		t.Fatalf("HandleAIAnalyze() error = %v", err)
	}
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
	if !strings.Contains(rec.Body.String(), aiproxy.AnalyzeFailedText) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestHandleAIAnalyze(t *testing.T) {
	h := &Handlers{AI: fakeAI{}}

	c, rec := newTestContextWithBody(http.MethodPost, "/api/ai/analyze", strings.NewReader(`{"text":"transcript"}`))
	if err := h.HandleAIAnalyze(c); err != nil {
		t.Fatalf("HandleAIAnalyze() error = %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"GPA":"3.9"`) {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleAIDraftEmail(t *testing.T) {
	h := &Handlers{AI: fakeAI{}}

	c, rec := newTestContextWithBody(http.MethodPost, "/api/ai/draft-email", strings.NewReader(`{"prompt":"fees due","studentName":"Alex"}`))
	if err := h.HandleAIDraftEmail(c); err != nil {
		t.Fatalf("HandleAIDraftEmail() error = %v", err)
	}
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Dear Alex: fees due") {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	c, rec = newTestContextWithBody(http.MethodPost, "/api/ai/draft-email", strings.NewReader(`{"prompt":"fees due"}`))
	if err := h.HandleAIDraftEmail(c); err != nil {
		t.Fatalf("HandleAIDraftEmail() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleAIRejectsOversizedBody(t *testing.T) {
	h := &Handlers{AI: fakeAI{}}
	body := `{"text":"` + strings.Repeat("a", maxAIInput) + `"}`

	c, rec := newTestContextWithBody(http.MethodPost, "/api/ai/summarize", strings.NewReader(body))
	if err := h.HandleAISummarize(c); err != nil {
		t.Fatalf("HandleAISummarize() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "too large") {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

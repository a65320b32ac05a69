package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v5"
	"github.com/lyceum-academy/lyceum/internal/aiproxy"
)

const maxAIInput = 64 << 10

type aiTextRequest struct {
	Text string `json:"text"`
}

type aiDraftRequest struct {
	Prompt      string `json:"prompt"`
	StudentName string `json:"studentName"`
}

// HandleAISummarize always answers 200; a failed summary carries the
// placeholder text.
func (h *Handlers) HandleAISummarize(c *echo.Context) error {
	var req aiTextRequest
	if err := decodeAIRequest(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Text) == "" {
		return jsonError(c, http.StatusBadRequest, "text is required")
	}
	return c.JSON(http.StatusOK, map[string]string{"summary": h.AI.Summarize(c.Request().Context(), req.Text)})
}

func (h *Handlers) HandleAIAnalyze(c *echo.Context) error {
	var req aiTextRequest
	if err := decodeAIRequest(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Text) == "" {
		return jsonError(c, http.StatusBadRequest, "text is required")
	}
	analysis, err := h.AI.AnalyzeDocument(c.Request().Context(), req.Text)
	if err != nil {
		if errors.Is(err, aiproxy.ErrAnalyzeFailed) {
			return jsonError(c, http.StatusBadGateway, aiproxy.AnalyzeFailedText)
		}
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"analysis": analysis})
}

// HandleAIDraftEmail always answers 200; a failed draft carries the
// placeholder text.
func (h *Handlers) HandleAIDraftEmail(c *echo.Context) error {
	var req aiDraftRequest
	if err := decodeAIRequest(c, &req); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if strings.TrimSpace(req.Prompt) == "" || strings.TrimSpace(req.StudentName) == "" {
		return jsonError(c, http.StatusBadRequest, "prompt and studentName are required")
	}
	return c.JSON(http.StatusOK, map[string]string{"draft": h.AI.DraftEmail(c.Request().Context(), req.Prompt, req.StudentName)})
}

func decodeAIRequest(c *echo.Context, dst any) error {
	if err := decodeJSON(c, dst, maxAIInput); err != nil {
		return err
	}
	switch v := dst.(type) {
	case *aiTextRequest:
		if !utf8.ValidString(v.Text) {
			return errInvalidBody
		}
	case *aiDraftRequest:
		if !utf8.ValidString(v.Prompt) || !utf8.ValidString(v.StudentName) {
			return errInvalidBody
		}
	}
	return nil
}

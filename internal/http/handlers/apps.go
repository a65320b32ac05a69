package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/lyceum-academy/lyceum/internal/grid"
	"github.com/lyceum-academy/lyceum/internal/http/viewmodels"
	"github.com/lyceum-academy/lyceum/internal/http/views"
)

type reorderRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type moveRequest struct {
	Name      string `json:"name"`
	Direction string `json:"direction"`
}

type appsMoveResponse struct {
	Apps    []grid.AppEntry `json:"apps"`
	Columns int             `json:"columns"`
	Moved   bool            `json:"moved"`
}

type appsResponse struct {
	Apps    []grid.AppEntry `json:"apps"`
	Columns int             `json:"columns"`
}

// HandleAppsPage renders the applications grid.
func (h *Handlers) HandleAppsPage(c *echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	ctx := c.Request().Context()

	entries, err := h.Layouts.Grid(ctx, u)
	if err != nil {
		return h.RenderError(c, err)
	}
	layoutData, err := h.LayoutData(ctx, c, "Apps")
	if err != nil {
		return h.RenderError(c, err)
	}

	cards := make([]viewmodels.AppCardItem, 0, len(entries))
	for i, e := range entries {
		cards = append(cards, viewmodels.AppCardItem{
			Name:      e.Name,
			Href:      AppHref(e.Name),
			Icon:      e.Icon,
			BgColor:   e.BgColor,
			IconColor: e.IconColor,
			Payload:   grid.EncodePayload(e.Name),
			Position:  i,
		})
	}
	addVary(c, "HX-Request")
	return h.RenderComponent(c, views.AppsPage(viewmodels.AppsViewData{
		Layout:  layoutData,
		Cards:   cards,
		Columns: h.columns(),
		HasApps: len(cards) > 0,
	}))
}

// HandleAppsList returns the user's grid as JSON.
func (h *Handlers) HandleAppsList(c *echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	entries, err := h.Layouts.Grid(c.Request().Context(), u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appsResponse{Apps: entries, Columns: h.columns()})
}

// HandleAppsReorder drops source onto target and returns the new grid.
func (h *Handlers) HandleAppsReorder(c *echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}

	var req reorderRequest
	if err := decodeJSON(c, &req, maxLayoutBody); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	req.Source = strings.TrimSpace(req.Source)
	req.Target = strings.TrimSpace(req.Target)
	if req.Source == "" || req.Target == "" {
		return jsonError(c, http.StatusBadRequest, "source and target are required")
	}

	entries, err := h.Layouts.Reorder(c.Request().Context(), u, req.Source, req.Target)
	if err != nil {
		if errors.Is(err, grid.ErrUnknownKey) {
			return jsonError(c, http.StatusUnprocessableEntity, "unknown app")
		}
		return err
	}
	return c.JSON(http.StatusOK, appsResponse{Apps: entries, Columns: h.columns()})
}

// HandleAppsMove moves one card to its neighbor in the grid, for keyboard
// reordering.
func (h *Handlers) HandleAppsMove(c *echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}

	var req moveRequest
	if err := decodeJSON(c, &req, maxLayoutBody); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	dir, err := grid.ParseDirection(strings.TrimSpace(req.Direction))
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "direction must be left, right, up or down")
	}

	entries, moved, err := h.Layouts.Nudge(c.Request().Context(), u, strings.TrimSpace(req.Name), dir)
	if err != nil {
		if errors.Is(err, grid.ErrUnknownKey) {
			return jsonError(c, http.StatusUnprocessableEntity, "unknown app")
		}
		return err
	}
	return c.JSON(http.StatusOK, appsMoveResponse{Apps: entries, Columns: h.columns(), Moved: moved})
}

func (h *Handlers) columns() int {
	if h.Cfg.GridColumns > 0 {
		return h.Cfg.GridColumns
	}
	return grid.DefaultColumns
}

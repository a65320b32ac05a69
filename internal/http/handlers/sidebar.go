package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/lyceum-academy/lyceum/internal/grid"
	"github.com/lyceum-academy/lyceum/internal/sidebar"
)

type sidebarResponse struct {
	Items []string `json:"items"`
}

type sidebarDropResponse struct {
	Items    []string `json:"items"`
	Accepted bool     `json:"accepted"`
}

type sidebarDropRequest struct {
	Payload       string `json:"payload"`
	EffectAllowed string `json:"effectAllowed"`
}

func (h *Handlers) HandleSidebar(c *echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	sb, err := h.Layouts.Sidebar(c.Request().Context(), u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sidebarResponse{Items: sb.Items})
}

// HandleSidebarDrop pins the app carried by a dropped grid card. Foreign
// payloads are not an error: the sidebar is returned unchanged with
// accepted=false.
func (h *Handlers) HandleSidebarDrop(c *echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	var req sidebarDropRequest
	if err := decodeJSON(c, &req, maxLayoutBody); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	effect, err := grid.ParseEffect(req.EffectAllowed)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid effectAllowed")
	}
	sb, accepted, err := h.Layouts.DropOnSidebar(c.Request().Context(), u, req.Payload, effect)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sidebarDropResponse{Items: sb.Items, Accepted: accepted})
}

func (h *Handlers) HandleSidebarReorder(c *echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	var req reorderRequest
	if err := decodeJSON(c, &req, maxLayoutBody); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	sb, err := h.Layouts.MoveInSidebar(c.Request().Context(), u, strings.TrimSpace(req.Source), strings.TrimSpace(req.Target))
	if err != nil {
		if errors.Is(err, grid.ErrUnknownKey) {
			return jsonError(c, http.StatusUnprocessableEntity, "unknown sidebar item")
		}
		return err
	}
	return c.JSON(http.StatusOK, sidebarResponse{Items: sb.Items})
}

func (h *Handlers) HandleSidebarRemove(c *echo.Context) error {
	u, ok := currentUser(c)
	if !ok {
		return jsonError(c, http.StatusUnauthorized, "unauthorized")
	}
	sb, err := h.Layouts.UnpinFromSidebar(c.Request().Context(), u, c.Param("name"))
	switch {
	case errors.Is(err, sidebar.ErrProtected):
		return jsonError(c, http.StatusConflict, "item cannot be removed")
	case errors.Is(err, sidebar.ErrNotPinned):
		return jsonError(c, http.StatusNotFound, "item is not pinned")
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, sidebarResponse{Items: sb.Items})
}

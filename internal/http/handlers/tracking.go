package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/lyceum-academy/lyceum/internal/tracking"
)

const maxVisitBody = 8 << 10

// HandleTrackVisit records an anonymous page visit. It is public and
// answers 204 on success so beacons never wait on a body.
func (h *Handlers) HandleTrackVisit(c *echo.Context) error {
	var v tracking.Visit
	if err := decodeJSON(c, &v, maxVisitBody); err != nil {
		return jsonError(c, http.StatusBadRequest, err.Error())
	}
	if v.UserAgent == "" {
		v.UserAgent = c.Request().UserAgent()
	}
	if err := h.Visits.Record(c.Request().Context(), v, c.RealIP()); err != nil {
		if errors.Is(err, tracking.ErrInvalidVisit) {
			return jsonError(c, http.StatusBadRequest, "invalid visit")
		}
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

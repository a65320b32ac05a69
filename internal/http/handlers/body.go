package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"
)

// maxLayoutBody caps reorder, move and sidebar requests.
const maxLayoutBody = 4 << 10

var (
	errInvalidBody  = errors.New("invalid request body")
	errBodyTooLarge = errors.New("request body too large")
)

// decodeJSON decodes at most limit bytes of the request body into dst.
// Errors are safe to show to the client.
func decodeJSON(c *echo.Context, dst any, limit int64) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, limit)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return errInvalidBody
	}
	return nil
}

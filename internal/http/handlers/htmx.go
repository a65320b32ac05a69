package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/labstack/echo/v5"
)

// isHX reports whether the request was issued by htmx.
func isHX(c *echo.Context) bool {
	return c != nil && c.Request() != nil &&
		strings.EqualFold(strings.TrimSpace(c.Request().Header.Get("HX-Request")), "true")
}

// redirect sends a 303, or an HX-Redirect header for htmx requests so the
// browser performs a full navigation.
func redirect(c *echo.Context, location string) error {
	addVary(c, "HX-Request")
	if isHX(c) {
		c.Response().Header().Set("HX-Redirect", location)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, location)
}

// addVary merges values into the Vary header, case-insensitively and
// without duplicates. A "*" anywhere wins.
func addVary(c *echo.Context, values ...string) {
	if c == nil || len(values) == 0 {
		return
	}
	header := c.Response().Header()

	var tokens []string
	for _, line := range append(header.Values(echo.HeaderVary), values...) {
		for _, tok := range strings.Split(line, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			if tok == "*" {
				header.Set(echo.HeaderVary, "*")
				return
			}
			tok = http.CanonicalHeaderKey(tok)
			if !slices.ContainsFunc(tokens, func(t string) bool { return strings.EqualFold(t, tok) }) {
				tokens = append(tokens, tok)
			}
		}
	}
	if len(tokens) > 0 {
		header.Set(echo.HeaderVary, strings.Join(tokens, ", "))
	}
}

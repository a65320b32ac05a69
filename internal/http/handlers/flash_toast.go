package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/lyceum-academy/lyceum/internal/http/viewmodels"
)

const (
	flashToastCookieName = "lyceum_toast"
	flashToastMaxText    = 200
)

// flash queues a toast for the next rendered page.
func flash(c *echo.Context, category, title string) {
	setFlashToast(c, viewmodels.ToastViewData{Category: category, Title: title})
}

func setFlashToast(c *echo.Context, toast viewmodels.ToastViewData) {
	toast, ok := cleanToast(toast)
	if !ok {
		return
	}
	payload, err := json.Marshal(toast)
	if err != nil {
		return
	}
	c.SetCookie(toastCookie(base64.RawURLEncoding.EncodeToString(payload), 30))
}

func popFlashToast(c *echo.Context) *viewmodels.ToastViewData {
	cookie, err := c.Cookie(flashToastCookieName)
	if err != nil || cookie == nil {
		return nil
	}
	c.SetCookie(toastCookie("", -1))

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var toast viewmodels.ToastViewData
	if err := json.Unmarshal(raw, &toast); err != nil {
		return nil
	}
	toast, ok := cleanToast(toast)
	if !ok {
		return nil
	}
	return &toast
}

func toastCookie(value string, maxAge int) *http.Cookie {
	cookie := &http.Cookie{
		Name:     flashToastCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		cookie.Expires = time.Unix(0, 0)
	}
	return cookie
}

func cleanToast(toast viewmodels.ToastViewData) (viewmodels.ToastViewData, bool) {
	switch category := strings.ToLower(strings.TrimSpace(toast.Category)); category {
	case "success", "error", "warning", "info":
		toast.Category = category
	default:
		toast.Category = "info"
	}
	toast.Title = clip(strings.TrimSpace(toast.Title), flashToastMaxText)
	toast.Description = clip(strings.TrimSpace(toast.Description), flashToastMaxText)
	return toast, toast.Title != "" || toast.Description != ""
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

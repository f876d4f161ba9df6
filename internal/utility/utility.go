package utility

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	rateMu      sync.Mutex
	rateWindows = map[string][]time.Time{}
)

// OK writes the standard success envelope: {"success":true,"data":...}.
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

// Fail writes the standard failure envelope: {"success":false,"error":...}.
// The error field carries the taxonomy code; details carries the
// human-readable cause and is omitted when empty.
func Fail(c echo.Context, status int, errCode, details string) error {
	body := map[string]interface{}{
		"success": false,
		"error":   errCode,
	}
	if details != "" {
		body["details"] = details
	}
	return c.JSON(status, body)
}

// GetRealIP is a helper function to get the user's real IP address.
// It checks proxy headers (like from ngrok) first.
func GetRealIP(c echo.Context) string {
	// X-Forwarded-For can be a list: "client, proxy1, proxy2"
	xForwardedFor := c.Request().Header.Get("X-Forwarded-For")
	if xForwardedFor != "" {
		ips := strings.Split(xForwardedFor, ",")
		return strings.TrimSpace(ips[0])
	}

	// X-Real-IP is often set by proxies like Nginx or ngrok
	xRealIP := c.Request().Header.Get("X-Real-IP")
	if xRealIP != "" {
		return xRealIP
	}

	return c.RealIP()
}

// CheckIPRateLimit enforces a sliding-window limit per client IP. The
// generation endpoints each cost a Gemini call, so the window is deliberately
// tight compared to plain CRUD traffic.
func CheckIPRateLimit(ip string) error {
	now := time.Now()
	window := 1 * time.Minute
	maxAttempts := 20

	// The read-prune-append cycle must be atomic per IP, or concurrent
	// requests slip past the limit between load and store.
	rateMu.Lock()
	defer rateMu.Unlock()

	// Remove old attempts
	var recent []time.Time
	for _, t := range rateWindows[ip] {
		if now.Sub(t) < window {
			recent = append(recent, t)
		}
	}

	if len(recent) >= maxAttempts {
		rateWindows[ip] = recent
		return fmt.Errorf("too many attempts, please try again later")
	}

	rateWindows[ip] = append(recent, now)
	return nil
}

// RequestLogger returns the per-request logger installed by the server's
// logger middleware, falling back to the global logger when absent (tests,
// background work).
func RequestLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get("logger").(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return &log.Logger
}

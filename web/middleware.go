package web

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/rweb"
)

// CorsMiddleware handles CORS headers for cross-origin requests
func CorsMiddleware(c rweb.Context) error {
	c.Response().SetHeader("Access-Control-Allow-Origin", "*")
	c.Response().SetHeader("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Response().SetHeader("Access-Control-Allow-Headers", "Content-Type, Accept, X-Requested-With")

	// Handle preflight OPTIONS requests
	if c.Request().Method() == "OPTIONS" {
		c.SetStatus(http.StatusOK)
		return nil
	}

	return c.Next()
}

// SecurityHeadersMiddleware adds security headers to responses
func SecurityHeadersMiddleware(c rweb.Context) error {
	c.Response().SetHeader("X-Content-Type-Options", "nosniff")
	c.Response().SetHeader("X-Frame-Options", "DENY")
	c.Response().SetHeader("Referrer-Policy", "strict-origin-when-cross-origin")

	// Collected page styles are inlined into the head, so inline styles must be allowed
	csp := []string{
		"default-src 'self'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data:",
		"font-src 'self' data:",
	}
	c.Response().SetHeader("Content-Security-Policy", strings.Join(csp, "; "))

	return c.Next()
}

// RateLimit wraps next with a per-client limit of requestsPerMinute.
// A limit of zero or less disables limiting.
// Clients are keyed by proxy headers; direct clients without them share the "unknown" bucket.
func RateLimit(requestsPerMinute int, next rweb.Handler) rweb.Handler {
	if requestsPerMinute <= 0 {
		return next
	}

	type visitor struct {
		windowStart time.Time
		count       int
	}

	var mu sync.Mutex
	visitors := make(map[string]*visitor)

	return func(c rweb.Context) error {
		ip := clientIP(c)
		now := time.Now()

		mu.Lock()
		// Drop idle entries so the map does not grow without bound
		for addr, v := range visitors {
			if now.Sub(v.windowStart) > time.Minute {
				delete(visitors, addr)
			}
		}

		v, exists := visitors[ip]
		if !exists {
			v = &visitor{windowStart: now}
			visitors[ip] = v
		}
		v.count++
		limited := v.count > requestsPerMinute
		mu.Unlock()

		if limited {
			logger.Info("Rate limit exceeded", "ip", ip, "path", c.Request().Path())
			c.SetStatus(http.StatusTooManyRequests)
			return c.WriteJSON(map[string]interface{}{
				"success": false,
				"error":   "too many requests",
			})
		}

		return next(c)
	}
}

// LoggingMiddleware provides detailed request logging
func LoggingMiddleware(c rweb.Context) error {
	start := time.Now()

	logger.Debug("Request started",
		"method", c.Request().Method(),
		"path", c.Request().Path(),
		"ip", clientIP(c),
	)

	err := c.Next()

	logger.Debug("Request completed",
		"method", c.Request().Method(),
		"path", c.Request().Path(),
		"duration", time.Since(start),
		"error", err,
	)

	return err
}

func clientIP(c rweb.Context) string {
	if ip := c.Request().Header("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	if ip := c.Request().Header("X-Real-IP"); ip != "" {
		return ip
	}
	return "unknown"
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanctumfront/internal/session"
	"github.com/sanctumfront/internal/visitor"
)

const visitorContextKey = "visitor"

// securityHeadersMiddleware adds security-related HTTP headers to rendered pages
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Prevent MIME type sniffing
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		// Prevent clickjacking
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		// Referrer policy
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// HSTS (only if using HTTPS)
		if c.Request.TLS != nil {
			c.Writer.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// cacheControlMiddleware disables caching; pages embed per-visitor auth state
func cacheControlMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Writer.Header().Set("Pragma", "no-cache")
		c.Writer.Header().Set("Expires", "0")
		c.Next()
	}
}

// loggerMiddleware logs HTTP requests once they complete
func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.Request.RemoteAddr,
		)
	}
}

// visitorMiddleware resolves the signed visitor cookie, issuing a fresh one when it is
// missing or invalid, and attaches the visitor's session state to the context
func (s *Server) visitorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := s.visitors.FromRequest(c.Request)
		if err != nil {
			var token string
			id, token, err = s.visitors.Issue()
			if err != nil {
				slog.ErrorContext(ctx, "failed to issue visitor token", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to start session"})
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(visitor.CookieName, token, int(s.visitors.TTL().Seconds()), "/", "", s.config.Session.SecureCookie, true)
			slog.DebugContext(ctx, "issued visitor token", "visitor_id", id)
		}

		v, err := s.sessions.Get(id)
		if err != nil {
			slog.ErrorContext(ctx, "failed to load visitor session", "visitor_id", id, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to start session"})
			return
		}

		c.Set(visitorContextKey, v)
		c.Next()
	}
}

// getVisitorFromContext extracts the visitor set by visitorMiddleware
func getVisitorFromContext(c *gin.Context) (*session.Visitor, bool) {
	if v, exists := c.Get(visitorContextKey); exists {
		if state, ok := v.(*session.Visitor); ok {
			return state, true
		}
	}
	return nil, false
}

package httpserver

import (
	"context"
	"strconv"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type ctxKey string

const identityCtxKey ctxKey = "identity"

// requestLogger writes one access log line per request and records its latency.
func requestLogger(logger zerolog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.ObserveHTTP(c.Request.Method, route, strconv.Itoa(status), elapsed)

		evt := logger.Info()
		if status >= 500 {
			evt = logger.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int64("duration_ms", elapsed.Milliseconds()).
			Msg("http: request")
	}
}

// authenticate resolves the bearer token, if any, into the caller's identity.
// Requests without a token continue as anonymous; a bad token is rejected.
func authenticate(auth AuthService, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			c.Next()
			return
		}
		token := raw
		if strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = strings.TrimSpace(token[7:])
		}
		if token == "" {
			writeError(c, logger, domain.ErrAuthRequired)
			c.Abort()
			return
		}

		id, err := auth.Verify(c.Request.Context(), token)
		if err != nil {
			writeError(c, logger, err)
			c.Abort()
			return
		}
		c.Set(string(identityCtxKey), id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), identityCtxKey, id))
		c.Next()
	}
}

func requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).Authenticated() {
			writeError(c, zerolog.Nop(), domain.ErrAuthRequired)
			c.Abort()
			return
		}
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identityFrom(c).IsAdmin {
			writeError(c, zerolog.Nop(), domain.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// identityFrom returns the caller's identity, or the anonymous zero value.
func identityFrom(c *gin.Context) domain.Identity {
	if v, ok := c.Get(string(identityCtxKey)); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Identity{}
}

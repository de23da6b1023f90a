package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// CORSMiddleware handles CORS for the widget origins. Origins matched only by
// a bare "*" entry get a wildcard answer without credentials.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		switch {
		case isCredentialedOrigin(origin, allowedOrigins):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
			setCORSHeaders(c)
		case isAllowedOrigin(origin, allowedOrigins):
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			setCORSHeaders(c)
		}

		// Handle preflight requests
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func setCORSHeaders(c *gin.Context) {
	c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With, X-Request-ID")
	c.Writer.Header().Set("Access-Control-Max-Age", "3600")
}

// isAllowedOrigin checks if the origin is in the allowed list.
// Entries ending in "*" match by prefix.
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	return lo.ContainsBy(allowedOrigins, func(allowed string) bool {
		return originMatches(origin, allowed)
	})
}

// isCredentialedOrigin reports whether the origin is allowed by an entry other
// than the bare "*"
func isCredentialedOrigin(origin string, allowedOrigins []string) bool {
	return lo.ContainsBy(allowedOrigins, func(allowed string) bool {
		return allowed != "*" && originMatches(origin, allowed)
	})
}

func originMatches(origin, allowed string) bool {
	if origin == "" {
		return false
	}
	if strings.HasSuffix(allowed, "*") {
		return strings.HasPrefix(origin, strings.TrimSuffix(allowed, "*"))
	}
	return origin == allowed
}

// RequestIDMiddleware propagates the caller's X-Request-ID or assigns a new one
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware writes one structured log line per request
func LoggerMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case status >= http.StatusBadRequest:
			event = logger.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str(requestIDKey, c.GetString(requestIDKey)).
			Msg("request handled")
	}
}

// RecoveryMiddleware recovers from panics and answers with a 500
func RecoveryMiddleware(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Str(requestIDKey, c.GetString(requestIDKey)).
			Msg("recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

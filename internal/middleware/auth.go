package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openfill/fillgate/internal/config"
)

const (
	HeaderAPIKey     = "X-Api-Key"
	ContextCallerKey = "caller_key"
)

// AuthMiddleware checks the request's API key against config. With
// auth.require_api_key unset the gateway is open and the caller identity
// falls back to the client IP, which downstream rate limiting keys on.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(HeaderAPIKey)
		if apiKey == "" {
			if cfg != nil && !cfg.Auth.RequireAPIKey {
				c.Set(ContextCallerKey, c.ClientIP())
				c.Next()
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			c.Abort()
			return
		}

		if cfg == nil || subtle.ConstantTimeCompare([]byte(apiKey), []byte(cfg.Auth.APIKey)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			c.Abort()
			return
		}

		c.Set(ContextCallerKey, apiKey)
		c.Next()
	}
}

// CallerKey returns the identity set by AuthMiddleware, falling back to the
// client IP for routes mounted without it.
func CallerKey(c *gin.Context) string {
	if v, ok := c.Get(ContextCallerKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return c.ClientIP()
}

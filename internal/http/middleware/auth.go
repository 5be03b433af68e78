// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. Tokens are verified by a
// TokenVerifier (the auth package's TokenService in production) and the
// resulting user id is stored in the Gin context under "userID", where the
// logging and rate-limit middleware also pick it up.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// userIDKey is the Gin context key under which the authenticated user id is
// stored. Shared with Logger() and KeyByUserOrIP().
const userIDKey = "userID"

// TokenVerifier validates a raw bearer token and returns the user id it was
// issued to.
type TokenVerifier interface {
	Parse(raw string) (userID string, err error)
}

// UserID returns the authenticated user id from the Gin context, or "" for
// anonymous requests.
func UserID(c *gin.Context) string {
	v, _ := c.Get(userIDKey)
	s, _ := v.(string)
	return s
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header, or "" when the header is absent or malformed.
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate verifies the bearer token when one is present and stores the
// user id in the context. Requests without a token pass through anonymously;
// requests with an invalid or expired token are rejected with 401 so a client
// holding a broken token notices instead of being silently downgraded.
func Authenticate(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.Next()
			return
		}
		userID, err := v.Parse(raw)
		if err != nil {
			unauthorized(c)
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401. Install it on route groups
// after Authenticate(); it relies on the user id already being in the context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			unauthorized(c)
			return
		}
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    "authentication required",
	})
}

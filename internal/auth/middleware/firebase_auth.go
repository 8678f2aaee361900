package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

// RequireIdentity validates Firebase ID tokens and stores the
// requesting user's identity for the publish pipeline.
func RequireIdentity(authClient *auth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		decodedToken, err := authClient.VerifyIDToken(context.Background(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("owner_id", decodedToken.UID)

		if email, ok := decodedToken.Claims["email"].(string); ok {
			c.Set("owner_email", email)
		}

		c.Next()
	}
}

// DevIdentity reads the identity from request headers without
// verification. Use this ONLY for development/testing.
func DevIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = "demo-user"
		}

		c.Set("owner_id", uid)
		c.Set("owner_email", strings.TrimSpace(c.GetHeader("X-User-Email")))

		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}

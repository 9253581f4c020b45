package middleware

import (
	"net/http"
	"strings"

	"bacheliers/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	ctxIdentity = "identity"
	ctxEmail    = "email"
)

// AuthRequired verifies the bearer token and sets identity and email in context.
func AuthRequired(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		principal, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(ctxIdentity, principal.Identity)
		c.Set(ctxEmail, principal.Email)
		c.Next()
	}
}

// GetIdentity returns the authenticated identity (must be used after AuthRequired).
func GetIdentity(c *gin.Context) string {
	return c.GetString(ctxIdentity)
}

// GetEmail returns the verified e-mail of the caller, empty when the provider has none.
func GetEmail(c *gin.Context) string {
	return c.GetString(ctxEmail)
}

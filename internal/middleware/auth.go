package middleware

import (
	"net/http"
	"strings"

	"marketplace/internal/services"

	"github.com/gin-gonic/gin"
)

const contextKeyAccountID = "account_id"

// TokenValidator resolves a bearer token to an account id.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// BearerAuth rejects requests without a valid "Authorization: Bearer"
// token and stores the caller's account id in the gin context.
func BearerAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := tokens.Validate(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": services.Message(err, "Authentication failed. Invalid token."),
			})
			return
		}

		c.Set(contextKeyAccountID, accountID)
		c.Next()
	}
}

// AccountID returns the id set by BearerAuth, or "" when absent.
func AccountID(c *gin.Context) string {
	return c.GetString(contextKeyAccountID)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

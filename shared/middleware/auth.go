package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/cqrs"
	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
)

const (
	userIDKey = "userId"
	emailKey  = "email"
)

// TokenVerifier resolves a bearer token to the user it was issued for.
type TokenVerifier interface {
	Verify(ctx context.Context, q cqrs.VerifyTokenQuery) (*models.UserView, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header is missing or uses another scheme.
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			RespondWithError(c, http.StatusUnauthorized, "No token provided")
			c.Abort()
			return
		}

		tokenString := BearerToken(c)
		if tokenString == "" {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		user, err := verifier.Verify(c.Request.Context(), cqrs.VerifyTokenQuery{Token: tokenString})
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		SetIdentity(c, user.ID, user.Email)
		c.Next()
	}
}

// SetIdentity attaches the authenticated user to the request.
func SetIdentity(c *gin.Context, userID, email string) {
	c.Set(userIDKey, userID)
	c.Set(emailKey, email)
}

func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

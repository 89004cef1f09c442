package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "fittrack/internal/errors"
	"fittrack/internal/token"
)

// CSRFHeader carries the CSRF value paired with the session token.
const CSRFHeader = "X-CSRF-Token"

// Context keys set by AuthMiddleware.
const (
	UserIDKey    = "userID"
	EmailKey     = "email"
	SessionKey   = "sessionExpiresAt"
	bearerPrefix = "Bearer"
)

// TokenValidator checks a session token and its CSRF value.
type TokenValidator interface {
	ValidateToken(ctx context.Context, tokenString, csrf string) (*token.Identity, error)
}

// AuthMiddleware verifies the bearer token together with the X-CSRF-Token
// header and sets the user in the context.
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, err)
			return
		}

		identity, err := validator.ValidateToken(c.Request.Context(), tokenString, c.GetHeader(CSRFHeader))
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(UserIDKey, identity.UserID)
		c.Set(EmailKey, identity.Email)
		c.Set(SessionKey, identity.ExpiresAt)
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", apperrors.ErrTokenMissing
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != bearerPrefix || parts[1] == "" {
		return "", apperrors.WithMessage(apperrors.ErrTokenMalformed, "Invalid authorization header format")
	}
	return parts[1], nil
}

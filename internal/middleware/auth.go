package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/drfrankproulx-cmd/OProom/pkg/errors"
	"github.com/drfrankproulx-cmd/OProom/pkg/httputil"
)

// ContextUserEmail holds the authenticated user's email.
const ContextUserEmail = "user_email"

// TokenValidator resolves a bearer token to the email it was issued to.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the bearer token and stores the caller's email in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, errors.UnauthorizedMsg("missing authorization header"))
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			httputil.RespondWithError(c, errors.UnauthorizedMsg("invalid authorization format"))
			return
		}

		email, err := m.tokens.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			httputil.RespondWithError(c, errors.UnauthorizedMsg("Could not validate credentials"))
			return
		}

		c.Set(ContextUserEmail, email)
		c.Next()
	}
}

// UserEmail returns the authenticated caller, or "" outside Authenticate.
func UserEmail(c *gin.Context) string {
	return c.GetString(ContextUserEmail)
}

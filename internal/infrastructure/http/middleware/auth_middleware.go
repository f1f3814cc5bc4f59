package middleware

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-notes/errors"
	"github.com/johnquangdev/meeting-notes/pkg/jwt"
)

// Echo context keys set by EchoAuth
const (
	ContextKeyUserID = "user_id"
	ContextKeyClaims = "claims"
)

// TokenVerifier validates a bearer token and returns its claims
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// EchoAuth returns an Echo middleware that validates the bearer JWT and sets
// "user_id" (uuid.UUID) and "claims" (*jwt.Claims) into the Echo context.
// Requests without a valid token never reach next.
func EchoAuth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractBearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				return errors.ErrUnauthenticated()
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				return err
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return errors.ErrInvalidToken(err)
			}

			// set into echo context: claims and user_id
			c.Set(ContextKeyClaims, claims)
			c.Set(ContextKeyUserID, userID)

			return next(c)
		}
	}
}

// extractBearer returns the token of an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func extractBearer(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

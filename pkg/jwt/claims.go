package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the single identity payload issued by /token and /users and
// accepted by the auth middleware.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

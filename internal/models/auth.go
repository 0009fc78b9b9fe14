package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims identifies the authenticated caller. Tokens are issued by
// the external auth service; this API only verifies them.
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

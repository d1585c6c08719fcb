package types

import "github.com/golang-jwt/jwt/v5"

// Claims are the access token claims issued by the identity provider.
// UserID falls back to the registered subject when empty.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

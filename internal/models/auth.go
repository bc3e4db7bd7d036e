package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access-token payload issued by the auth collaborator.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	jwt.RegisteredClaims
}

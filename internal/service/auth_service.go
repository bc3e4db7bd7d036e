package service

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scribeconnect/scribe-portal-api/internal/models"
	appErrors "github.com/scribeconnect/scribe-portal-api/pkg/errors"
)

// AuthService validates access tokens issued by the auth collaborator.
// Login, registration and refresh live outside this service.
type AuthService struct {
	secret []byte
}

// NewAuthService constructs AuthService.
func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: []byte(secret)}
}

// ValidateToken parses and verifies a bearer token, returning its claims.
func (s *AuthService) ValidateToken(raw string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if claims.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token missing subject")
	}
	return claims, nil
}

package service

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/classtrack/approval-api/internal/models"
	"github.com/classtrack/approval-api/pkg/config"
	appErrors "github.com/classtrack/approval-api/pkg/errors"
)

// AuthService validates access tokens issued by the external auth system.
// Login, refresh and password flows live there; this service only turns a
// bearer token into workflow claims (user, role, department).
type AuthService struct {
	secret []byte
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.JWTConfig) *AuthService {
	return &AuthService{secret: []byte(cfg.Secret)}
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(token string) (*models.JWTClaims, error) {
	claims := &models.JWTClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if claims.UserID == "" || claims.Role == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token missing workflow claims")
	}
	return claims, nil
}

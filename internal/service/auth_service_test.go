package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/approval-api/internal/models"
	"github.com/classtrack/approval-api/pkg/config"
	appErrors "github.com/classtrack/approval-api/pkg/errors"
)

func signToken(t *testing.T, secret string, claims *models.JWTClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "test-secret"})
	token := signToken(t, "test-secret", &models.JWTClaims{
		UserID:       "chair-1",
		Role:         models.RoleChairperson,
		DepartmentID: "dept-cs",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "chair-1", claims.UserID)
	require.Equal(t, models.RoleChairperson, claims.Role)

	actor := claims.Actor()
	require.Equal(t, "dept-cs", actor.DepartmentID)
}

func TestAuthServiceRejectsWrongSecret(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "test-secret"})
	token := signToken(t, "other-secret", &models.JWTClaims{UserID: "u1", Role: models.RolePrincipal})

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

func TestAuthServiceRejectsExpiredToken(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "test-secret"})
	token := signToken(t, "test-secret", &models.JWTClaims{
		UserID: "u1",
		Role:   models.RolePrincipal,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
}

func TestAuthServiceRejectsMissingWorkflowClaims(t *testing.T) {
	svc := NewAuthService(config.JWTConfig{Secret: "test-secret"})
	token := signToken(t, "test-secret", &models.JWTClaims{UserID: "u1"})

	_, err := svc.ValidateToken(token)
	require.Error(t, err)
	require.True(t, appErrors.Is(err, appErrors.ErrUnauthorized))
}

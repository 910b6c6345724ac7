package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/permit-service/internal/auth"
	"github.com/spec-kit/permit-service/internal/config"
	"github.com/spec-kit/permit-service/internal/domain"
	"github.com/spec-kit/permit-service/internal/service"
)

func newAuthService(t *testing.T, secret string) *service.AuthService {
	t.Helper()
	hash, err := auth.HashPassword(secret, 4)
	require.NoError(t, err)
	return service.NewAuthService(config.AuthConfig{
		JWTSecret:             "test-jwt-secret",
		AccessTokenTTLMinutes: 15,
		BootstrapSecretHash:   hash,
	})
}

func TestAuthService_IssueToken(t *testing.T) {
	svc := newAuthService(t, "operator-secret")

	token, _, err := svc.IssueToken("actor-1", domain.RoleInspector, "operator-secret")
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "actor-1", claims.ActorID)
	require.Equal(t, domain.RoleInspector, claims.Role)
}

func TestAuthService_RejectsWrongSecret(t *testing.T) {
	svc := newAuthService(t, "operator-secret")

	_, _, err := svc.IssueToken("actor-1", domain.RoleAdmin, "guess")
	var forbidden *domain.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
}

func TestAuthService_ValidatesInput(t *testing.T) {
	svc := newAuthService(t, "operator-secret")

	var validationErr *domain.ValidationError

	_, _, err := svc.IssueToken("", domain.RoleAdmin, "operator-secret")
	require.ErrorAs(t, err, &validationErr)

	_, _, err = svc.IssueToken("actor-1", "SUPERVISOR", "operator-secret")
	require.ErrorAs(t, err, &validationErr)
}

func TestAuthService_NotConfigured(t *testing.T) {
	svc := service.NewAuthService(config.AuthConfig{JWTSecret: "test-jwt-secret"})

	_, _, err := svc.IssueToken("actor-1", domain.RoleAdmin, "anything")
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

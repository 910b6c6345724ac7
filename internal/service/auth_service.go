package service

import (
	"time"

	"github.com/spec-kit/permit-service/internal/auth"
	"github.com/spec-kit/permit-service/internal/config"
	"github.com/spec-kit/permit-service/internal/domain"
)

// AuthService issues access tokens for callers that present the shared
// operator secret. Real identity management lives in the surrounding
// platform; this endpoint exists so the role-gated surface is usable on its
// own.
type AuthService struct {
	tokens     *auth.TokenManager
	secretHash string
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		tokens:     auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		secretHash: cfg.BootstrapSecretHash,
	}
}

// TokenManager exposes the underlying manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// IssueToken validates the shared secret and mints a token bound to the
// actor id and role.
func (s *AuthService) IssueToken(actorID string, role domain.Role, secret string) (string, time.Time, error) {
	if s.secretHash == "" {
		return "", time.Time{}, domain.NewValidationError("token issuance is not configured")
	}
	if actorID == "" {
		return "", time.Time{}, domain.NewValidationError("actor_id is required")
	}
	if !domain.ValidRole(role) {
		return "", time.Time{}, domain.NewValidationError("unknown role %q", role)
	}
	if err := auth.ComparePassword(s.secretHash, secret); err != nil {
		return "", time.Time{}, &domain.ForbiddenError{Role: role, Operation: "issue_token"}
	}
	return s.tokens.GenerateToken(actorID, role)
}

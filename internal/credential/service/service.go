// Package service provides the credential rotation state machine.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	credentialModel "github.com/reviewflow/reviewbot/internal/credential/model"
	"github.com/reviewflow/reviewbot/internal/credential/repository"
	"github.com/reviewflow/reviewbot/internal/platform"
	"github.com/reviewflow/reviewbot/internal/tenant"
)

// TokenRefresher is the platform API surface the rotator depends on.
type TokenRefresher interface {
	RefreshOAuthToken(ctx context.Context, refreshToken string) (*platform.OAuthResponse, error)
}

// Service defines the interface for credential business logic operations.
type Service interface {
	// RotateIfNeeded refreshes the tenant's tokens when they are within the
	// rotation margin of expiry. It reports whether the app is installed for
	// the tenant at all; a failed refresh is not an error, the previous token
	// stays in place and the next platform call surfaces the consequence.
	RotateIfNeeded(ctx context.Context, id tenant.Identity) (bool, error)

	// Get returns the stored credential for a tenant.
	Get(ctx context.Context, id tenant.Identity) (*credentialModel.Credential, error)

	// SaveInstall persists the credential produced by an OAuth install.
	SaveInstall(ctx context.Context, credential *credentialModel.Credential) error
}

type service struct {
	repo   repository.Repository
	api    TokenRefresher
	margin time.Duration
	now    func() time.Time
	logger *zap.SugaredLogger
}

// New creates a new credential service instance.
func New(repo repository.Repository, api TokenRefresher, margin time.Duration, logger *zap.SugaredLogger) Service {
	return &service{
		repo:   repo,
		api:    api,
		margin: margin,
		now:    time.Now,
		logger: logger,
	}
}

// RotateIfNeeded refreshes the tenant's tokens when they are due.
func (s *service) RotateIfNeeded(ctx context.Context, id tenant.Identity) (bool, error) {
	credential, err := s.repo.Find(ctx, id.Key())
	if err != nil {
		if errors.Is(err, credentialModel.ErrNotInstalled) {
			return false, nil
		}
		return false, err
	}

	rotated := false
	if s.rotateBotToken(ctx, credential) {
		rotated = true
	}
	if s.rotateUserToken(ctx, credential) {
		rotated = true
	}

	if rotated {
		if saveErr := s.repo.Save(ctx, credential); saveErr != nil {
			return true, saveErr
		}
	}

	return true, nil
}

// rotateBotToken refreshes the bot token in place and reports whether the
// credential changed. A failed or mismatched refresh leaves it untouched.
func (s *service) rotateBotToken(ctx context.Context, credential *credentialModel.Credential) bool {
	if !s.due(credential.BotTokenExpiresAt) {
		return false
	}

	resp, err := s.api.RefreshOAuthToken(ctx, credential.BotRefreshToken)
	if err != nil {
		s.logger.Warnw("bot token refresh failed, keeping previous token",
			"tenant", credential.TenantKey,
			"error", err,
		)
		return false
	}
	if resp.TokenType != "bot" {
		s.logger.Warnw("bot token refresh returned wrong token kind, keeping previous token",
			"tenant", credential.TenantKey,
			"token_type", resp.TokenType,
		)
		return false
	}

	expiresAt := s.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	credential.BotToken = resp.AccessToken
	credential.BotRefreshToken = resp.RefreshToken
	credential.BotTokenExpiresAt = &expiresAt
	return true
}

// rotateUserToken refreshes the user token in place and reports whether the
// credential changed.
func (s *service) rotateUserToken(ctx context.Context, credential *credentialModel.Credential) bool {
	if !s.due(credential.UserTokenExpiresAt) {
		return false
	}

	resp, err := s.api.RefreshOAuthToken(ctx, credential.UserRefreshToken)
	if err != nil {
		s.logger.Warnw("user token refresh failed, keeping previous token",
			"tenant", credential.TenantKey,
			"error", err,
		)
		return false
	}
	if resp.TokenType != "user" {
		s.logger.Warnw("user token refresh returned wrong token kind, keeping previous token",
			"tenant", credential.TenantKey,
			"token_type", resp.TokenType,
		)
		return false
	}

	expiresAt := s.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	credential.UserToken = resp.AccessToken
	credential.UserRefreshToken = resp.RefreshToken
	credential.UserTokenExpiresAt = &expiresAt
	return true
}

// due reports whether a token must be refreshed now. An unset expiry means
// the token does not rotate.
func (s *service) due(expiresAt *time.Time) bool {
	if expiresAt == nil {
		return false
	}
	return expiresAt.Sub(s.now()) <= s.margin
}

// Get returns the stored credential for a tenant.
func (s *service) Get(ctx context.Context, id tenant.Identity) (*credentialModel.Credential, error) {
	return s.repo.Find(ctx, id.Key())
}

// SaveInstall persists the credential produced by an OAuth install.
func (s *service) SaveInstall(ctx context.Context, credential *credentialModel.Credential) error {
	return s.repo.Save(ctx, credential)
}

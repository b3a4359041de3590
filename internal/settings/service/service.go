// Package service provides tenant settings with config defaults.
package service

import (
	"context"
	"errors"
	"fmt"

	settingsModel "github.com/reviewflow/reviewbot/internal/settings/model"
	"github.com/reviewflow/reviewbot/internal/settings/repository"
	"github.com/reviewflow/reviewbot/internal/tenant"
)

// Service defines the interface for tenant settings operations.
type Service interface {
	// Branches returns the tenant's configured branch list, falling back to
	// the application default for tenants without stored settings.
	Branches(ctx context.Context, id tenant.Identity) ([]string, error)

	// Channel returns the tenant's review channel id, empty when unset.
	Channel(ctx context.Context, id tenant.Identity) (string, error)

	// Save stores the full settings snapshot for a tenant.
	Save(ctx context.Context, id tenant.Identity, channelID string, branches []string) error
}

type service struct {
	repo            repository.Repository
	defaultBranches []string
}

// New creates a new settings service instance.
func New(repo repository.Repository, defaultBranches []string) Service {
	return &service{
		repo:            repo,
		defaultBranches: defaultBranches,
	}
}

// Branches returns the tenant's configured branch list.
func (s *service) Branches(ctx context.Context, id tenant.Identity) ([]string, error) {
	settings, err := s.repo.Find(ctx, id.Key())
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			return append([]string(nil), s.defaultBranches...), nil
		}
		return nil, err
	}

	branches, err := settings.BranchList()
	if err != nil {
		return nil, fmt.Errorf("tenant %s: %w", id.Key(), err)
	}
	if len(branches) == 0 {
		return append([]string(nil), s.defaultBranches...), nil
	}
	return branches, nil
}

// Channel returns the tenant's review channel id.
func (s *service) Channel(ctx context.Context, id tenant.Identity) (string, error) {
	settings, err := s.repo.Find(ctx, id.Key())
	if err != nil {
		if errors.Is(err, repository.ErrSettingsNotFound) {
			return "", nil
		}
		return "", err
	}
	return settings.ChannelID, nil
}

// Save stores the full settings snapshot for a tenant.
func (s *service) Save(ctx context.Context, id tenant.Identity, channelID string, branches []string) error {
	settings := &settingsModel.TenantSettings{
		TenantKey: id.Key(),
		ChannelID: channelID,
	}
	if err := settings.SetBranchList(branches); err != nil {
		return err
	}
	return s.repo.Save(ctx, settings)
}

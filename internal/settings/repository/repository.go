// Package repository provides data access layer for tenant settings.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	settingsModel "github.com/reviewflow/reviewbot/internal/settings/model"
)

// ErrSettingsNotFound indicates that no settings exist for the tenant.
var ErrSettingsNotFound = errors.New("tenant settings not found")

// Repository defines the interface for tenant settings access operations.
type Repository interface {
	// Find returns the settings stored for a tenant key.
	Find(ctx context.Context, tenantKey string) (*settingsModel.TenantSettings, error)

	// Save writes the full settings snapshot (insert or overwrite).
	Save(ctx context.Context, settings *settingsModel.TenantSettings) error

	// FindAll returns every stored settings record.
	FindAll(ctx context.Context) ([]settingsModel.TenantSettings, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new settings repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Find returns the settings stored for a tenant key.
func (r *repository) Find(ctx context.Context, tenantKey string) (*settingsModel.TenantSettings, error) {
	var settings settingsModel.TenantSettings
	err := r.db.WithContext(ctx).
		Where("tenant_key = ?", tenantKey).
		First(&settings).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}

	return &settings, nil
}

// Save writes the full settings snapshot (insert or overwrite).
func (r *repository) Save(ctx context.Context, settings *settingsModel.TenantSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"channel_id", "branches", "updated_at"}),
		}).
		Create(settings).Error
}

// FindAll returns every stored settings record.
func (r *repository) FindAll(ctx context.Context) ([]settingsModel.TenantSettings, error) {
	var settings []settingsModel.TenantSettings
	err := r.db.WithContext(ctx).
		Order("tenant_key ASC").
		Find(&settings).Error

	if err != nil {
		return nil, err
	}

	if settings == nil {
		return []settingsModel.TenantSettings{}, nil
	}

	return settings, nil
}

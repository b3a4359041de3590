// Package repository provides data access layer for credential records.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	credentialModel "github.com/reviewflow/reviewbot/internal/credential/model"
)

// Repository defines the interface for credential data access operations.
type Repository interface {
	// Find returns the credential stored for a tenant key.
	Find(ctx context.Context, tenantKey string) (*credentialModel.Credential, error)

	// Save writes the full credential snapshot (insert or overwrite).
	Save(ctx context.Context, credential *credentialModel.Credential) error

	// FindAll returns every stored credential.
	FindAll(ctx context.Context) ([]credentialModel.Credential, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new credential repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Find returns the credential stored for a tenant key.
func (r *repository) Find(ctx context.Context, tenantKey string) (*credentialModel.Credential, error) {
	var credential credentialModel.Credential
	err := r.db.WithContext(ctx).
		Where("tenant_key = ?", tenantKey).
		First(&credential).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, credentialModel.ErrNotInstalled
		}
		return nil, err
	}

	return &credential, nil
}

// Save writes the full credential snapshot (insert or overwrite).
func (r *repository) Save(ctx context.Context, credential *credentialModel.Credential) error {
	return r.db.WithContext(ctx).Save(credential).Error
}

// FindAll returns every stored credential.
func (r *repository) FindAll(ctx context.Context) ([]credentialModel.Credential, error) {
	var credentials []credentialModel.Credential
	err := r.db.WithContext(ctx).
		Order("tenant_key ASC").
		Find(&credentials).Error

	if err != nil {
		return nil, err
	}

	if credentials == nil {
		return []credentialModel.Credential{}, nil
	}

	return credentials, nil
}

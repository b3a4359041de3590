// Package repository provides data access layer for queue snapshots.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	queueModel "github.com/reviewflow/reviewbot/internal/queue/model"
)

// Repository defines the interface for queue snapshot access operations.
type Repository interface {
	// Find returns the queue state stored for a tenant key.
	Find(ctx context.Context, tenantKey string) (*queueModel.QueueState, error)

	// Save writes the full queue snapshot (insert or overwrite).
	Save(ctx context.Context, tenantKey string, state *queueModel.QueueState) error

	// FindAll returns every stored snapshot keyed by tenant.
	FindAll(ctx context.Context) (map[string]*queueModel.QueueState, error)
}

type repository struct {
	db *gorm.DB
}

// New creates a new queue repository instance.
func New(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Find returns the queue state stored for a tenant key.
func (r *repository) Find(ctx context.Context, tenantKey string) (*queueModel.QueueState, error) {
	var record queueModel.QueueRecord
	err := r.db.WithContext(ctx).
		Where("tenant_key = ?", tenantKey).
		First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, queueModel.ErrStateNotFound
		}
		return nil, err
	}

	return decodeState(record.State)
}

// Save writes the full queue snapshot (insert or overwrite).
func (r *repository) Save(ctx context.Context, tenantKey string, state *queueModel.QueueState) error {
	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode queue state: %w", err)
	}

	record := queueModel.QueueRecord{
		TenantKey: tenantKey,
		State:     string(encoded),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
		}).
		Create(&record).Error
}

// FindAll returns every stored snapshot keyed by tenant.
func (r *repository) FindAll(ctx context.Context) (map[string]*queueModel.QueueState, error) {
	var records []queueModel.QueueRecord
	err := r.db.WithContext(ctx).
		Order("tenant_key ASC").
		Find(&records).Error

	if err != nil {
		return nil, err
	}

	states := make(map[string]*queueModel.QueueState, len(records))
	for _, record := range records {
		state, decodeErr := decodeState(record.State)
		if decodeErr != nil {
			return nil, fmt.Errorf("tenant %s: %w", record.TenantKey, decodeErr)
		}
		states[record.TenantKey] = state
	}
	return states, nil
}

// decodeState unmarshals a snapshot and backfills the queue map so callers
// never see a nil map.
func decodeState(encoded string) (*queueModel.QueueState, error) {
	var state queueModel.QueueState
	if err := json.Unmarshal([]byte(encoded), &state); err != nil {
		return nil, fmt.Errorf("failed to decode queue state: %w", err)
	}
	if state.ReviewQueue == nil {
		state.ReviewQueue = map[string][]queueModel.PullRequestReview{}
	}
	return &state, nil
}

// Package model defines the per-tenant settings record.
package model

import (
	"encoding/json"
	"time"
)

// TenantSettings holds a tenant's review channel and branch configuration.
// Matches the tenant_settings table schema.
type TenantSettings struct {
	TenantKey string    `gorm:"primaryKey;column:tenant_key;type:varchar(255)" json:"tenant_key"`
	ChannelID string    `gorm:"column:channel_id;type:varchar(255)"            json:"channel_id"`
	Branches  string    `gorm:"column:branches;type:text"                      json:"branches"`
	CreatedAt time.Time `gorm:"column:created_at;not null"    json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"    json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (TenantSettings) TableName() string {
	return "tenant_settings"
}

// BranchList decodes the stored branch list; empty storage yields nil.
func (s *TenantSettings) BranchList() ([]string, error) {
	if s.Branches == "" {
		return nil, nil
	}
	var branches []string
	if err := json.Unmarshal([]byte(s.Branches), &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

// SetBranchList encodes a branch list into the record.
func (s *TenantSettings) SetBranchList(branches []string) error {
	encoded, err := json.Marshal(branches)
	if err != nil {
		return err
	}
	s.Branches = string(encoded)
	return nil
}

// Package model defines the per-tenant OAuth credential record.
package model

import (
	"time"
)

// Credential holds the bot and user tokens for one installed workspace.
// Matches the credentials table schema. One row per tenant key; rows are
// superseded by newer writes, never deleted.
type Credential struct {
	TenantKey           string     `gorm:"primaryKey;column:tenant_key;type:varchar(255)"          json:"tenant_key"`
	EnterpriseID        string     `gorm:"column:enterprise_id;type:varchar(255)"                  json:"enterprise_id"`
	TeamID              string     `gorm:"column:team_id;type:varchar(255)"                        json:"team_id"`
	IsEnterpriseInstall bool       `gorm:"column:is_enterprise_install;not null;default:false"     json:"is_enterprise_install"`
	BotUserID           string     `gorm:"column:bot_user_id;type:varchar(255)"                    json:"bot_user_id"`
	BotToken            string     `gorm:"column:bot_token;type:varchar(255)"                      json:"bot_token"`
	BotRefreshToken     string     `gorm:"column:bot_refresh_token;type:varchar(255)"              json:"bot_refresh_token"`
	BotTokenExpiresAt   *time.Time `gorm:"column:bot_token_expires_at"            json:"bot_token_expires_at,omitempty"`
	UserID              string     `gorm:"column:user_id;type:varchar(255)"                        json:"user_id"`
	UserToken           string     `gorm:"column:user_token;type:varchar(255)"                     json:"user_token"`
	UserRefreshToken    string     `gorm:"column:user_refresh_token;type:varchar(255)"             json:"user_refresh_token"`
	UserTokenExpiresAt  *time.Time `gorm:"column:user_token_expires_at"           json:"user_token_expires_at,omitempty"`
	CreatedAt           time.Time  `gorm:"column:created_at;not null"             json:"created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;not null"             json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Credential) TableName() string {
	return "credentials"
}

package models

import "time"

// User represents the canonical identity entity. The primary key is the
// stable subject identifier minted by the identity provider, so rows are
// created lazily on first login rather than through a registration flow.
type User struct {
	ID        string    `gorm:"type:text;primaryKey"`
	Email     string    `gorm:"type:text;not null;uniqueIndex"`
	IsAdmin   bool      `gorm:"column:is_admin;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

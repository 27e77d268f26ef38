package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/leadfolio/leadfolio-backend/pkg/enums"
)

// Buyer represents a lead record moving through the sales pipeline.
// UpdatedAt doubles as the optimistic-concurrency token: clients echo the
// value they last observed and mismatching writes are rejected.
type Buyer struct {
	ID           uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FullName     string             `gorm:"column:full_name;not null"`
	Email        *string            `gorm:"column:email"`
	Phone        string             `gorm:"column:phone;not null"`
	City         enums.City         `gorm:"column:city;type:text;not null"`
	PropertyType enums.PropertyType `gorm:"column:property_type;type:text;not null"`
	BHK          *enums.BHK         `gorm:"column:bhk;type:text"`
	Purpose      enums.Purpose      `gorm:"column:purpose;type:text;not null"`
	BudgetMin    *decimal.Decimal   `gorm:"column:budget_min;type:numeric"`
	BudgetMax    *decimal.Decimal   `gorm:"column:budget_max;type:numeric"`
	Timeline     *enums.Timeline    `gorm:"column:timeline;type:text"`
	Source       *enums.Source      `gorm:"column:source;type:text"`
	Status       enums.BuyerStatus  `gorm:"column:status;type:text;not null;default:'New'"`
	Notes        *string            `gorm:"column:notes"`
	Tags         pq.StringArray     `gorm:"column:tags;type:text[]"`
	OwnerID      string             `gorm:"column:owner_id;type:text;not null"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

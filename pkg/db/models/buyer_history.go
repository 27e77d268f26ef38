package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/leadfolio/leadfolio-backend/pkg/db/types"
)

// BuyerHistory is an append-only audit entry recording one successful write
// to a Buyer. BuyerID is a plain back-reference, not an owning foreign key:
// history survives deletion of the buyer it describes.
type BuyerHistory struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID     uuid.UUID       `gorm:"column:buyer_id;type:uuid;not null;index"`
	ChangedByID string          `gorm:"column:changed_by_id;type:text;not null"`
	ChangedAt   time.Time       `gorm:"column:changed_at;autoCreateTime"`
	Diff        dbtypes.JSONMap `gorm:"column:diff;type:jsonb;not null"`
}

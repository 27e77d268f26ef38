package buyers

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leadfolio/leadfolio-backend/pkg/db/models"
	dbtypes "github.com/leadfolio/leadfolio-backend/pkg/db/types"
	"github.com/leadfolio/leadfolio-backend/pkg/enums"
)

// Repository exposes buyer persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a buyers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a buyer by UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Buyer, error) {
	var buyer models.Buyer
	if err := r.db.WithContext(ctx).First(&buyer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &buyer, nil
}

// List returns one page of buyers matching the filters, newest change first,
// along with the total row count for the filter set.
func (r *Repository) List(ctx context.Context, f Filters, offset, limit int) ([]models.Buyer, int64, error) {
	base := applyFilters(r.db.WithContext(ctx).Model(&models.Buyer{}), f)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Buyer
	err := applyFilters(r.db.WithContext(ctx).Model(&models.Buyer{}), f).
		Order("updated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListAll returns every buyer matching the filters, newest change first.
// Export uses this; it is deliberately unpaginated.
func (r *Repository) ListAll(ctx context.Context, f Filters) ([]models.Buyer, error) {
	var rows []models.Buyer
	err := applyFilters(r.db.WithContext(ctx).Model(&models.Buyer{}), f).
		Order("updated_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateWithHistory inserts the buyer and its creation history entry as one
// transaction.
func (r *Repository) CreateWithHistory(ctx context.Context, buyer *models.Buyer, diff dbtypes.JSONMap, changedByID string) (*models.Buyer, error) {
	if buyer.ID == uuid.Nil {
		buyer.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(buyer).Error; err != nil {
			return err
		}
		return tx.Create(&models.BuyerHistory{
			ID:          uuid.New(),
			BuyerID:     buyer.ID,
			ChangedByID: changedByID,
			Diff:        diff,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return buyer, nil
}

// UpdateWithHistory writes the mutated buyer and appends one history entry
// carrying the diff, atomically. The buyer's UpdatedAt advances as part of
// the write.
func (r *Repository) UpdateWithHistory(ctx context.Context, buyer *models.Buyer, diff dbtypes.JSONMap, changedByID string) (*models.Buyer, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(buyer).Error; err != nil {
			return err
		}
		return tx.Create(&models.BuyerHistory{
			ID:          uuid.New(),
			BuyerID:     buyer.ID,
			ChangedByID: changedByID,
			Diff:        diff,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return buyer, nil
}

// UpdateStatus writes the status column directly. No history entry.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BuyerStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Buyer{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Delete removes the buyer row. History rows stay behind.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Buyer{}, "id = ?", id).Error
}

// InsertBatch creates every buyer in a single transaction. Buyers never
// partially import: one failed insert rolls back the whole batch.
func (r *Repository) InsertBatch(ctx context.Context, buyers []*models.Buyer) error {
	if len(buyers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, buyer := range buyers {
			if buyer.ID == uuid.Nil {
				buyer.ID = uuid.New()
			}
			if err := tx.Create(buyer).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListHistory returns the most recent history entries for a buyer, newest
// first.
func (r *Repository) ListHistory(ctx context.Context, buyerID uuid.UUID, limit int) ([]models.BuyerHistory, error) {
	var rows []models.BuyerHistory
	q := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("changed_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func applyFilters(q *gorm.DB, f Filters) *gorm.DB {
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.PropertyType != "" {
		q = q.Where("property_type = ?", f.PropertyType)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Timeline != "" {
		q = q.Where("timeline = ?", f.Timeline)
	}
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		q = q.Where(
			"LOWER(full_name) LIKE ? ESCAPE '\\' OR LOWER(phone) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'",
			pattern, pattern, pattern,
		)
	}
	return q
}

// escapeLike neutralizes LIKE metacharacters so a search for "100%" matches
// the literal text instead of every row.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

package buyers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/leadfolio/leadfolio-backend/pkg/db/models"
	dbtypes "github.com/leadfolio/leadfolio-backend/pkg/db/types"
	"github.com/leadfolio/leadfolio-backend/pkg/enums"
)

// BuyerDTO is the transport shape for a lead record. UpdatedAt doubles as
// the concurrency token clients must echo on update.
type BuyerDTO struct {
	ID           uuid.UUID           `json:"id"`
	FullName     string              `json:"fullName"`
	Email        *string             `json:"email"`
	Phone        string              `json:"phone"`
	City         enums.City          `json:"city"`
	PropertyType enums.PropertyType  `json:"propertyType"`
	BHK          *enums.BHK          `json:"bhk"`
	Purpose      enums.Purpose       `json:"purpose"`
	BudgetMin    *decimal.Decimal    `json:"budgetMin"`
	BudgetMax    *decimal.Decimal    `json:"budgetMax"`
	Timeline     *enums.Timeline     `json:"timeline"`
	Source       *enums.Source       `json:"source"`
	Status       enums.BuyerStatus   `json:"status"`
	Notes        *string             `json:"notes"`
	Tags         []string            `json:"tags"`
	OwnerID      string              `json:"ownerId"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// HistoryDTO is one audit entry for a buyer.
type HistoryDTO struct {
	ID          uuid.UUID       `json:"id"`
	BuyerID     uuid.UUID       `json:"buyerId"`
	ChangedByID string          `json:"changedById"`
	ChangedAt   time.Time       `json:"changedAt"`
	Diff        dbtypes.JSONMap `json:"diff"`
}

// BuyerDetail pairs a buyer with its most recent history entries.
type BuyerDetail struct {
	Buyer   *BuyerDTO    `json:"buyer"`
	History []HistoryDTO `json:"history"`
}

// Filters narrows list and export queries. Zero values mean "no filter".
type Filters struct {
	City         string
	PropertyType string
	Status       string
	Timeline     string
	Search       string
}

// ListResult is one page of buyers plus pagination metadata.
type ListResult struct {
	Items      []BuyerDTO `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

// RowError describes why one CSV row was rejected. Row numbers are
// 1-indexed over the file including the header row.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes a bulk import: rows inserted plus per-row errors.
type ImportResult struct {
	Inserted int        `json:"inserted"`
	Errors   []RowError `json:"errors"`
}

func FromModel(b *models.Buyer) *BuyerDTO {
	if b == nil {
		return nil
	}
	tags := append([]string(nil), []string(b.Tags)...)
	if tags == nil {
		tags = []string{}
	}
	return &BuyerDTO{
		ID:           b.ID,
		FullName:     b.FullName,
		Email:        b.Email,
		Phone:        b.Phone,
		City:         b.City,
		PropertyType: b.PropertyType,
		BHK:          b.BHK,
		Purpose:      b.Purpose,
		BudgetMin:    b.BudgetMin,
		BudgetMax:    b.BudgetMax,
		Timeline:     b.Timeline,
		Source:       b.Source,
		Status:       b.Status,
		Notes:        b.Notes,
		Tags:         tags,
		OwnerID:      b.OwnerID,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func historyFromModel(h models.BuyerHistory) HistoryDTO {
	return HistoryDTO{
		ID:          h.ID,
		BuyerID:     h.BuyerID,
		ChangedByID: h.ChangedByID,
		ChangedAt:   h.ChangedAt,
		Diff:        h.Diff,
	}
}

func (r *Record) toModel() *models.Buyer {
	return &models.Buyer{
		FullName:     r.FullName,
		Email:        r.Email,
		Phone:        r.Phone,
		City:         r.City,
		PropertyType: r.PropertyType,
		BHK:          r.BHK,
		Purpose:      r.Purpose,
		BudgetMin:    r.BudgetMin,
		BudgetMax:    r.BudgetMax,
		Timeline:     r.Timeline,
		Source:       r.Source,
		Notes:        r.Notes,
		Tags:         append([]string{}, r.Tags...),
		Status:       r.Status,
	}
}

// applyTo copies the record onto an existing row. Email, notes, and status
// are skipped when the payload omitted them so the stored values survive.
func (r *Record) applyTo(b *models.Buyer) {
	b.FullName = r.FullName
	if r.emailSet {
		b.Email = r.Email
	}
	b.Phone = r.Phone
	b.City = r.City
	b.PropertyType = r.PropertyType
	b.BHK = r.BHK
	b.Purpose = r.Purpose
	b.BudgetMin = r.BudgetMin
	b.BudgetMax = r.BudgetMax
	b.Timeline = r.Timeline
	b.Source = r.Source
	if r.notesSet {
		b.Notes = r.Notes
	}
	b.Tags = append([]string{}, r.Tags...)
	if r.statusSet {
		b.Status = r.Status
	}
}

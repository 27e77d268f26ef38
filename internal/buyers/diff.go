package buyers

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/leadfolio/leadfolio-backend/pkg/db/models"
	dbtypes "github.com/leadfolio/leadfolio-backend/pkg/db/types"
)

// BuildDiff compares the normalized update payload against the stored record
// and reports each changed field as {old, new}. Unchanged fields and fields
// the payload omitted are left out. The diff is audit material only; it never
// gates the write.
func BuildDiff(existing *models.Buyer, rec *Record) dbtypes.JSONMap {
	diff := dbtypes.JSONMap{}

	compare := func(field string, changed bool, oldVal, newVal any) {
		if changed {
			diff[field] = map[string]any{"old": oldVal, "new": newVal}
		}
	}

	compare("fullName", existing.FullName != rec.FullName, existing.FullName, rec.FullName)
	compare("email", rec.emailSet && !stringPtrEqual(existing.Email, rec.Email), strPtrValue(existing.Email), strPtrValue(rec.Email))
	compare("phone", existing.Phone != rec.Phone, existing.Phone, rec.Phone)
	compare("city", existing.City != rec.City, existing.City.String(), rec.City.String())
	compare("propertyType", existing.PropertyType != rec.PropertyType, existing.PropertyType.String(), rec.PropertyType.String())
	compare("bhk", !enumPtrEqual(existing.BHK, rec.BHK), enumValue(existing.BHK), enumValue(rec.BHK))
	compare("purpose", existing.Purpose != rec.Purpose, existing.Purpose.String(), rec.Purpose.String())
	compare("budgetMin", !decimalPtrEqual(existing.BudgetMin, rec.BudgetMin), decimalValue(existing.BudgetMin), decimalValue(rec.BudgetMin))
	compare("budgetMax", !decimalPtrEqual(existing.BudgetMax, rec.BudgetMax), decimalValue(existing.BudgetMax), decimalValue(rec.BudgetMax))
	compare("timeline", !enumPtrEqual(existing.Timeline, rec.Timeline), enumValue(existing.Timeline), enumValue(rec.Timeline))
	compare("source", !enumPtrEqual(existing.Source, rec.Source), enumValue(existing.Source), enumValue(rec.Source))
	compare("notes", rec.notesSet && !stringPtrEqual(existing.Notes, rec.Notes), strPtrValue(existing.Notes), strPtrValue(rec.Notes))
	compare("tags", !tagsEqual(existing.Tags, rec.Tags), tagsValue(existing.Tags), tagsValue(rec.Tags))
	compare("status", rec.statusSet && existing.Status != rec.Status, existing.Status.String(), rec.Status.String())

	return diff
}

// CreationDiff records the full initial field set under a creation marker.
func CreationDiff(buyer *models.Buyer) dbtypes.JSONMap {
	return dbtypes.JSONMap{
		"action": "Created",
		"details": map[string]any{
			"fullName":     buyer.FullName,
			"email":        strPtrValue(buyer.Email),
			"phone":        buyer.Phone,
			"city":         buyer.City.String(),
			"propertyType": buyer.PropertyType.String(),
			"bhk":          enumValue(buyer.BHK),
			"purpose":      buyer.Purpose.String(),
			"budgetMin":    decimalValue(buyer.BudgetMin),
			"budgetMax":    decimalValue(buyer.BudgetMax),
			"timeline":     enumValue(buyer.Timeline),
			"source":       enumValue(buyer.Source),
			"notes":        strPtrValue(buyer.Notes),
			"tags":         tagsValue(buyer.Tags),
			"status":       buyer.Status.String(),
			"ownerId":      buyer.OwnerID,
		},
	}
}

func enumPtrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func enumValue[T fmt.Stringer](p *T) any {
	if p == nil {
		return nil
	}
	return (*p).String()
}

func stringPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func decimalPtrEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func tagsEqual(a []string, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func strPtrValue(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// Budgets are serialized as strings so the audit trail keeps the exact
// decimal value instead of a float approximation.
func decimalValue(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func tagsValue(tags []string) any {
	if tags == nil {
		return []string{}
	}
	return []string(tags)
}

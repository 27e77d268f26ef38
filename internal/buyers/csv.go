package buyers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/leadfolio/leadfolio-backend/pkg/db/models"
)

// csvHeader is the canonical column order for both import and export.
var csvHeader = []string{
	"fullName", "email", "phone", "city", "propertyType", "bhk", "purpose",
	"budgetMin", "budgetMax", "timeline", "source", "notes", "tags", "status",
}

// WriteCSV streams the buyers as an RFC 4180 CSV document.
func WriteCSV(w io.Writer, buyers []models.Buyer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range buyers {
		if err := cw.Write(csvRow(&buyers[i])); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(b *models.Buyer) []string {
	return []string{
		b.FullName,
		strOrBlank(b.Email),
		b.Phone,
		b.City.String(),
		b.PropertyType.String(),
		enumOrBlank(b.BHK),
		b.Purpose.String(),
		decimalOrBlank(b.BudgetMin),
		decimalOrBlank(b.BudgetMax),
		enumOrBlank(b.Timeline),
		enumOrBlank(b.Source),
		strOrBlank(b.Notes),
		strings.Join(b.Tags, ", "),
		b.Status.String(),
	}
}

// ReadCSV parses an import file into one Input per data row. Column order
// is free; unknown columns are ignored. Blank lines are skipped.
func ReadCSV(r io.Reader) ([]Input, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}

	var inputs []Input
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		if isBlankRow(row) {
			continue
		}

		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		inputs = append(inputs, Input{
			FullName:     cell("fullName"),
			Email:        optString(cell("email")),
			Phone:        cell("phone"),
			City:         cell("city"),
			PropertyType: cell("propertyType"),
			BHK:          cell("bhk"),
			Purpose:      cell("purpose"),
			BudgetMin:    parseFlexNumber(cell("budgetMin")),
			BudgetMax:    parseFlexNumber(cell("budgetMax")),
			Timeline:     cell("timeline"),
			Source:       cell("source"),
			Notes:        optString(cell("notes")),
			Tags:         TagList(splitTags(cell("tags"))),
			Status:       optString(cell("status")),
		})
	}
	return inputs, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func strOrBlank(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func enumOrBlank[T fmt.Stringer](p *T) string {
	if p == nil {
		return ""
	}
	return (*p).String()
}

func decimalOrBlank(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

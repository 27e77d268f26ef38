package enums

import "fmt"

// BuyerStatus is the sales-pipeline stage of a lead.
type BuyerStatus string

const (
	BuyerStatusNew         BuyerStatus = "New"
	BuyerStatusQualified   BuyerStatus = "Qualified"
	BuyerStatusContacted   BuyerStatus = "Contacted"
	BuyerStatusVisited     BuyerStatus = "Visited"
	BuyerStatusNegotiation BuyerStatus = "Negotiation"
	BuyerStatusConverted   BuyerStatus = "Converted"
	BuyerStatusDropped     BuyerStatus = "Dropped"
)

var validBuyerStatuses = []BuyerStatus{
	BuyerStatusNew,
	BuyerStatusQualified,
	BuyerStatusContacted,
	BuyerStatusVisited,
	BuyerStatusNegotiation,
	BuyerStatusConverted,
	BuyerStatusDropped,
}

// String implements fmt.Stringer.
func (s BuyerStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BuyerStatus.
func (s BuyerStatus) IsValid() bool {
	for _, candidate := range validBuyerStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBuyerStatus converts raw input into a BuyerStatus.
func ParseBuyerStatus(value string) (BuyerStatus, error) {
	for _, candidate := range validBuyerStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid buyer status %q", value)
}

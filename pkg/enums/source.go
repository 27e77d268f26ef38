package enums

import "fmt"

// Source records which channel produced the lead.
type Source string

const (
	SourceWebsite  Source = "Website"
	SourceReferral Source = "Referral"
	SourceWalkIn   Source = "WalkIn"
	SourceCall     Source = "Call"
	SourceOther    Source = "Other"
)

var validSources = []Source{
	SourceWebsite,
	SourceReferral,
	SourceWalkIn,
	SourceCall,
	SourceOther,
}

// sourceLabels maps the historical display labels onto canonical tokens.
var sourceLabels = map[string]Source{
	"Walk-in": SourceWalkIn,
}

// String implements fmt.Stringer.
func (s Source) String() string {
	return string(s)
}

// IsValid reports whether the value is a known Source.
func (s Source) IsValid() bool {
	for _, candidate := range validSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSource converts raw input into a Source, accepting both canonical
// tokens and the legacy "Walk-in" display label.
func ParseSource(value string) (Source, error) {
	for _, candidate := range validSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	if mapped, ok := sourceLabels[value]; ok {
		return mapped, nil
	}
	return "", fmt.Errorf("invalid source %q", value)
}

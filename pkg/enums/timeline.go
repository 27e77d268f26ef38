package enums

import "fmt"

// Timeline captures how soon the lead intends to transact.
type Timeline string

const (
	TimelineZeroToThreeMonths Timeline = "ZeroToThreeMonths"
	TimelineThreeToSixMonths  Timeline = "ThreeToSixMonths"
	TimelineOverSixMonths     Timeline = "OverSixMonths"
	TimelineExploring         Timeline = "Exploring"
)

var validTimelines = []Timeline{
	TimelineZeroToThreeMonths,
	TimelineThreeToSixMonths,
	TimelineOverSixMonths,
	TimelineExploring,
}

// timelineLabels maps the historical display labels onto canonical tokens.
var timelineLabels = map[string]Timeline{
	"0-3m": TimelineZeroToThreeMonths,
	"3-6m": TimelineThreeToSixMonths,
	">6m":  TimelineOverSixMonths,
}

// String implements fmt.Stringer.
func (t Timeline) String() string {
	return string(t)
}

// IsValid reports whether the value is a known Timeline.
func (t Timeline) IsValid() bool {
	for _, candidate := range validTimelines {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTimeline converts raw input into a Timeline, accepting both canonical
// tokens and legacy display labels such as "0-3m".
func ParseTimeline(value string) (Timeline, error) {
	for _, candidate := range validTimelines {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	if mapped, ok := timelineLabels[value]; ok {
		return mapped, nil
	}
	return "", fmt.Errorf("invalid timeline %q", value)
}

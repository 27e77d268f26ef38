package enums

import "fmt"

// BHK is the bedroom-count category for residential property types.
type BHK string

const (
	BHKOne    BHK = "One"
	BHKTwo    BHK = "Two"
	BHKThree  BHK = "Three"
	BHKFour   BHK = "Four"
	BHKStudio BHK = "Studio"
)

var validBHKs = []BHK{
	BHKOne,
	BHKTwo,
	BHKThree,
	BHKFour,
	BHKStudio,
}

// bhkLabels maps the historical display labels onto canonical tokens.
var bhkLabels = map[string]BHK{
	"1":     BHKOne,
	"2":     BHKTwo,
	"3":     BHKThree,
	"4":     BHKFour,
	"1 BHK": BHKOne,
	"2 BHK": BHKTwo,
	"3 BHK": BHKThree,
	"4 BHK": BHKFour,
}

// String implements fmt.Stringer.
func (b BHK) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BHK.
func (b BHK) IsValid() bool {
	for _, candidate := range validBHKs {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBHK converts raw input into a BHK, accepting both canonical tokens
// and legacy display labels such as "1" or "2 BHK".
func ParseBHK(value string) (BHK, error) {
	for _, candidate := range validBHKs {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	if mapped, ok := bhkLabels[value]; ok {
		return mapped, nil
	}
	return "", fmt.Errorf("invalid bhk %q", value)
}

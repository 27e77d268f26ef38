package buyers

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/leadfolio/leadfolio-backend/pkg/enums"
)

var validate = validator.New()

// Input is the loosely-typed payload accepted by create, update, and CSV
// import. Enum fields arrive as free text (canonical tokens or legacy labels
// such as "1 BHK" or "Walk-in"); tags arrive as an array or a comma-joined
// string; budgets arrive as numbers or numeric strings.
type Input struct {
	FullName     string     `json:"fullName"`
	Email        OptString  `json:"email"`
	Phone        string     `json:"phone"`
	City         string     `json:"city"`
	PropertyType string     `json:"propertyType"`
	BHK          string     `json:"bhk"`
	Purpose      string     `json:"purpose"`
	BudgetMin    FlexNumber `json:"budgetMin"`
	BudgetMax    FlexNumber `json:"budgetMax"`
	Timeline     string     `json:"timeline"`
	Source       string     `json:"source"`
	Notes        OptString  `json:"notes"`
	Tags         TagList    `json:"tags"`
	Status       OptString  `json:"status"`

	// UpdatedAt echoes the concurrency token the client last observed.
	UpdatedAt string `json:"updatedAt"`
}

// TagList accepts either a JSON array of strings or a single comma-joined
// string. Entries are trimmed and blanks dropped either way.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}
	if data[0] == '"' {
		var joined string
		if err := json.Unmarshal(data, &joined); err != nil {
			return err
		}
		*t = splitTags(joined)
		return nil
	}
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = cleanTags(raw)
	return nil
}

func splitTags(joined string) []string {
	return cleanTags(strings.Split(joined, ","))
}

func cleanTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// OptString distinguishes a key the payload omitted from one sent blank.
// Updates leave omitted fields untouched; an explicit blank clears them.
// Null counts as omitted.
type OptString struct {
	value string
	set   bool
}

func (s *OptString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = OptString{}
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = OptString{value: v, set: true}
	return nil
}

func optString(v string) OptString {
	return OptString{value: v, set: true}
}

// FlexNumber is a budget field that tolerates JSON numbers, numeric strings,
// blanks, and null. A non-blank value that fails to parse is remembered so
// validation can report it instead of silently dropping it.
type FlexNumber struct {
	value   decimal.Decimal
	set     bool
	invalid bool
}

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = FlexNumber{}
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = s
	}
	*n = parseFlexNumber(raw)
	return nil
}

func parseFlexNumber(raw string) FlexNumber {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FlexNumber{}
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return FlexNumber{set: true, invalid: true}
	}
	return FlexNumber{value: value, set: true}
}

// Decimal returns the parsed value, or nil when unset or invalid.
func (n FlexNumber) Decimal() *decimal.Decimal {
	if !n.set || n.invalid {
		return nil
	}
	v := n.value
	return &v
}

// FieldIssue is one validation failure attached to a named field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Record is the fully normalized, storage-ready shape produced by a
// successful validation pass.
type Record struct {
	FullName     string
	Email        *string
	Phone        string
	City         enums.City
	PropertyType enums.PropertyType
	BHK          *enums.BHK
	Purpose      enums.Purpose
	BudgetMin    *decimal.Decimal
	BudgetMax    *decimal.Decimal
	Timeline     *enums.Timeline
	Source       *enums.Source
	Notes        *string
	Tags         []string
	Status       enums.BuyerStatus

	// Presence markers for fields an update may omit. Unset fields keep
	// their stored values when the record is applied to an existing row.
	emailSet  bool
	notesSet  bool
	statusSet bool
}

// Validate normalizes the input and checks every rule, reporting all issues
// rather than stopping at the first. On success the returned Record carries
// canonical enum tokens and null for absent optional fields.
func Validate(in Input) (*Record, []FieldIssue) {
	var issues []FieldIssue
	rec := &Record{}

	rec.FullName = strings.TrimSpace(in.FullName)
	if utf8.RuneCountInString(rec.FullName) < 2 {
		issues = append(issues, FieldIssue{"fullName", "Full name must be at least 2 characters."})
	} else if utf8.RuneCountInString(rec.FullName) > 80 {
		issues = append(issues, FieldIssue{"fullName", "Full name cannot exceed 80 characters."})
	}

	if in.Email.set {
		rec.emailSet = true
		if email := strings.TrimSpace(in.Email.value); email != "" {
			if err := validate.Var(email, "email"); err != nil {
				issues = append(issues, FieldIssue{"email", "Please enter a valid email address."})
			} else {
				rec.Email = &email
			}
		}
	}

	rec.Phone = strings.TrimSpace(in.Phone)
	switch {
	case !isDigits(rec.Phone):
		issues = append(issues, FieldIssue{"phone", "Phone number must only contain digits."})
	case len(rec.Phone) < 10:
		issues = append(issues, FieldIssue{"phone", "Phone number must be at least 10 digits."})
	case len(rec.Phone) > 15:
		issues = append(issues, FieldIssue{"phone", "Phone number cannot exceed 15 digits."})
	}

	if city, err := enums.ParseCity(strings.TrimSpace(in.City)); err != nil {
		issues = append(issues, FieldIssue{"city", "Please select a valid city."})
	} else {
		rec.City = city
	}

	propertyTypeKnown := false
	if propertyType, err := enums.ParsePropertyType(strings.TrimSpace(in.PropertyType)); err != nil {
		issues = append(issues, FieldIssue{"propertyType", "Please select a valid property type."})
	} else {
		rec.PropertyType = propertyType
		propertyTypeKnown = true
	}

	if raw := strings.TrimSpace(in.BHK); raw != "" {
		if bhk, err := enums.ParseBHK(raw); err != nil {
			issues = append(issues, FieldIssue{"bhk", "Please select a valid BHK."})
		} else {
			rec.BHK = &bhk
		}
	}
	if propertyTypeKnown && rec.PropertyType.RequiresBHK() && rec.BHK == nil {
		issues = append(issues, FieldIssue{"bhk", "BHK is required for Apartments and Villas."})
	}

	if purpose, err := enums.ParsePurpose(strings.TrimSpace(in.Purpose)); err != nil {
		issues = append(issues, FieldIssue{"purpose", "Please select a valid purpose."})
	} else {
		rec.Purpose = purpose
	}

	rec.BudgetMin = checkBudget(in.BudgetMin, "budgetMin", &issues)
	rec.BudgetMax = checkBudget(in.BudgetMax, "budgetMax", &issues)
	if rec.BudgetMin != nil && rec.BudgetMax != nil && rec.BudgetMax.LessThan(*rec.BudgetMin) {
		issues = append(issues, FieldIssue{"budgetMax", "Maximum budget must be greater than or equal to minimum budget."})
	}

	if timeline, err := enums.ParseTimeline(strings.TrimSpace(in.Timeline)); err != nil {
		issues = append(issues, FieldIssue{"timeline", "Please select a valid timeline."})
	} else {
		rec.Timeline = &timeline
	}

	if source, err := enums.ParseSource(strings.TrimSpace(in.Source)); err != nil {
		issues = append(issues, FieldIssue{"source", "Please select a valid source."})
	} else {
		rec.Source = &source
	}

	if in.Notes.set {
		rec.notesSet = true
		if notes := strings.TrimSpace(in.Notes.value); notes != "" {
			if utf8.RuneCountInString(notes) > 1000 {
				issues = append(issues, FieldIssue{"notes", "Notes cannot exceed 1000 characters."})
			} else {
				rec.Notes = &notes
			}
		}
	}

	rec.Tags = cleanTags(in.Tags)

	rec.Status = enums.BuyerStatusNew
	if raw := strings.TrimSpace(in.Status.value); in.Status.set && raw != "" {
		if status, err := enums.ParseBuyerStatus(raw); err != nil {
			issues = append(issues, FieldIssue{"status", "Please select a valid status."})
		} else {
			rec.Status = status
			rec.statusSet = true
		}
	}

	if len(issues) > 0 {
		return nil, issues
	}
	return rec, nil
}

func checkBudget(n FlexNumber, field string, issues *[]FieldIssue) *decimal.Decimal {
	if !n.set {
		return nil
	}
	if n.invalid {
		*issues = append(*issues, FieldIssue{field, "Budget must be a number."})
		return nil
	}
	if !n.value.IsPositive() {
		*issues = append(*issues, FieldIssue{field, "Budget must be positive."})
		return nil
	}
	return n.Decimal()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

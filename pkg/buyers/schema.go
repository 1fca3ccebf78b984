package buyers

import (
	"regexp"
	"unicode/utf8"
)

// BuyerForm is the display-vocabulary representation of a lead, as a human
// enters it in a form or a CSV row: enum fields hold display strings, budgets
// are optional. It is the shape validation, diffing and history all operate
// on.
type BuyerForm struct {
	FullName     string   `json:"fullName"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	City         string   `json:"city"`
	PropertyType string   `json:"propertyType"`
	BHK          string   `json:"bhk,omitempty"`
	Purpose      string   `json:"purpose"`
	BudgetMin    *int64   `json:"budgetMin,omitempty"`
	BudgetMax    *int64   `json:"budgetMax,omitempty"`
	Timeline     string   `json:"timeline"`
	Source       string   `json:"source"`
	Status       string   `json:"status,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Tags         []string `json:"tags"`
}

// FieldErrors collects validation messages keyed by the field they are scoped
// to. An empty map means the input is valid.
type FieldErrors map[string][]string

func (fe FieldErrors) add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// merge folds other's messages into fe.
func (fe FieldErrors) merge(other FieldErrors) {
	for field, msgs := range other {
		fe[field] = append(fe[field], msgs...)
	}
}

var (
	phoneRegexp = regexp.MustCompile(`^\d{10,15}$`)
	emailRegexp = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// Validate checks shape, enum membership and the cross-field rules, collecting
// every violation rather than stopping at the first so the caller can report
// them together. Pure function of the input.
func Validate(f BuyerForm) FieldErrors {
	fieldErrs := FieldErrors{}

	if n := utf8.RuneCountInString(f.FullName); n < 2 || n > 80 {
		fieldErrs.add("fullName", "must be between 2 and 80 characters")
	}
	if f.Email != "" && !emailRegexp.MatchString(f.Email) {
		fieldErrs.add("email", "invalid email address")
	}
	if !phoneRegexp.MatchString(f.Phone) {
		fieldErrs.add("phone", "must be 10 to 15 digits")
	}
	if !Cities.Contains(f.City) {
		fieldErrs.add("city", "unknown city")
	}
	if !PropertyTypes.Contains(f.PropertyType) {
		fieldErrs.add("propertyType", "unknown property type")
	}
	if f.BHK != "" && !BHKs.Contains(f.BHK) {
		fieldErrs.add("bhk", "unknown bhk value")
	}
	if !Purposes.Contains(f.Purpose) {
		fieldErrs.add("purpose", "must be Buy or Rent")
	}
	if f.BudgetMin != nil && *f.BudgetMin < 0 {
		fieldErrs.add("budgetMin", "must be non-negative")
	}
	if f.BudgetMax != nil && *f.BudgetMax < 0 {
		fieldErrs.add("budgetMax", "must be non-negative")
	}
	if !Timelines.Contains(f.Timeline) {
		fieldErrs.add("timeline", "unknown timeline")
	}
	if !Sources.Contains(f.Source) {
		fieldErrs.add("source", "unknown source")
	}
	if f.Status != "" && !Statuses.Contains(f.Status) {
		fieldErrs.add("status", "unknown status")
	}
	if utf8.RuneCountInString(f.Notes) > 1000 {
		fieldErrs.add("notes", "must be at most 1000 characters")
	}

	if f.BudgetMin != nil && f.BudgetMax != nil && *f.BudgetMax < *f.BudgetMin {
		fieldErrs.add("budgetMax", "budgetMax must be greater than or equal to budgetMin")
	}
	if residentialTypes[f.PropertyType] && f.BHK == "" {
		fieldErrs.add("bhk", "bhk is required for Apartment and Villa")
	}

	return fieldErrs
}

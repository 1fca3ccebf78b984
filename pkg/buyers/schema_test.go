package buyers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func validForm() BuyerForm {
	return BuyerForm{
		FullName:     "Ravi Kumar",
		Email:        "ravi@example.com",
		Phone:        "9876543210",
		City:         "Chandigarh",
		PropertyType: "Apartment",
		BHK:          "2",
		Purpose:      "Buy",
		BudgetMin:    int64Ptr(5000000),
		BudgetMax:    int64Ptr(7500000),
		Timeline:     "0-3m",
		Source:       "Website",
		Status:       "New",
		Tags:         []string{"hot"},
	}
}

func TestValidateAcceptsValidForm(t *testing.T) {
	assert.True(t, Validate(validForm()).Empty())
}

func TestValidateMinimalForm(t *testing.T) {
	form := BuyerForm{
		FullName:     "An",
		Phone:        "1234567890",
		City:         "Other",
		PropertyType: "Plot",
		Purpose:      "Rent",
		Timeline:     "Exploring",
		Source:       "Other",
	}
	assert.True(t, Validate(form).Empty())
}

func TestValidateFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BuyerForm)
		field  string
	}{
		{"short name", func(f *BuyerForm) { f.FullName = "A" }, "fullName"},
		{"long name", func(f *BuyerForm) { f.FullName = strings.Repeat("a", 81) }, "fullName"},
		{"bad email", func(f *BuyerForm) { f.Email = "not-an-email" }, "email"},
		{"short phone", func(f *BuyerForm) { f.Phone = "12345" }, "phone"},
		{"alpha phone", func(f *BuyerForm) { f.Phone = "98765x3210" }, "phone"},
		{"unknown city", func(f *BuyerForm) { f.City = "Atlantis" }, "city"},
		{"unknown property type", func(f *BuyerForm) { f.PropertyType = "Castle" }, "propertyType"},
		{"unknown bhk", func(f *BuyerForm) { f.BHK = "5" }, "bhk"},
		{"unknown purpose", func(f *BuyerForm) { f.Purpose = "Lease" }, "purpose"},
		{"negative budget min", func(f *BuyerForm) { f.BudgetMin = int64Ptr(-1) }, "budgetMin"},
		{"negative budget max", func(f *BuyerForm) { f.BudgetMax = int64Ptr(-1) }, "budgetMax"},
		{"unknown timeline", func(f *BuyerForm) { f.Timeline = "soon" }, "timeline"},
		{"unknown source", func(f *BuyerForm) { f.Source = "Carrier pigeon" }, "source"},
		{"unknown status", func(f *BuyerForm) { f.Status = "Pending" }, "status"},
		{"long notes", func(f *BuyerForm) { f.Notes = strings.Repeat("n", 1001) }, "notes"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			tc.mutate(&form)
			fieldErrs := Validate(form)
			assert.Contains(t, fieldErrs, tc.field)
		})
	}
}

func TestValidateBudgetOrdering(t *testing.T) {
	form := validForm()
	form.BudgetMin = int64Ptr(100)
	form.BudgetMax = int64Ptr(50)
	fieldErrs := Validate(form)
	assert.Contains(t, fieldErrs, "budgetMax")

	// Only one bound set: no ordering to check.
	form.BudgetMax = nil
	assert.True(t, Validate(form).Empty())
}

func TestValidateBHKRequiredForResidential(t *testing.T) {
	for _, propertyType := range []string{"Apartment", "Villa"} {
		form := validForm()
		form.PropertyType = propertyType
		form.BHK = ""
		assert.Contains(t, Validate(form), "bhk", propertyType)
	}

	for _, propertyType := range []string{"Plot", "Office", "Retail"} {
		form := validForm()
		form.PropertyType = propertyType
		form.BHK = ""
		assert.True(t, Validate(form).Empty(), propertyType)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	form := validForm()
	form.FullName = "A"
	form.Phone = "12"
	form.City = "Atlantis"
	fieldErrs := Validate(form)
	assert.Len(t, fieldErrs, 3)
}

func TestValidateOptionalEmailAndStatus(t *testing.T) {
	form := validForm()
	form.Email = ""
	form.Status = ""
	assert.True(t, Validate(form).Empty())
}

package buyers

import "encoding/json"

// OptionalInt distinguishes "field absent" (Present false) from "field set to
// null" (Present true, Value nil) in a JSON patch body. A plain pointer can
// not tell the two apart, and budgets must be clearable.
type OptionalInt struct {
	Present bool
	Value   *int64
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Present = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// BuyerPatch is a typed partial update in display vocabulary: nil fields keep
// the existing value. Empty strings clear optional text fields (email, bhk,
// notes); tags replace the whole set when supplied.
type BuyerPatch struct {
	FullName     *string     `json:"fullName,omitempty"`
	Email        *string     `json:"email,omitempty"`
	Phone        *string     `json:"phone,omitempty"`
	City         *string     `json:"city,omitempty"`
	PropertyType *string     `json:"propertyType,omitempty"`
	BHK          *string     `json:"bhk,omitempty"`
	Purpose      *string     `json:"purpose,omitempty"`
	BudgetMin    OptionalInt `json:"budgetMin,omitempty"`
	BudgetMax    OptionalInt `json:"budgetMax,omitempty"`
	Timeline     *string     `json:"timeline,omitempty"`
	Source       *string     `json:"source,omitempty"`
	Status       *string     `json:"status,omitempty"`
	Notes        *string     `json:"notes,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
}

// Apply overlays the supplied fields on top of base and returns the merged
// view. Base is not modified.
func (p BuyerPatch) Apply(base BuyerForm) BuyerForm {
	merged := base
	merged.Tags = append([]string{}, base.Tags...)

	if p.FullName != nil {
		merged.FullName = *p.FullName
	}
	if p.Email != nil {
		merged.Email = *p.Email
	}
	if p.Phone != nil {
		merged.Phone = *p.Phone
	}
	if p.City != nil {
		merged.City = *p.City
	}
	if p.PropertyType != nil {
		merged.PropertyType = *p.PropertyType
	}
	if p.BHK != nil {
		merged.BHK = *p.BHK
	}
	if p.Purpose != nil {
		merged.Purpose = *p.Purpose
	}
	if p.BudgetMin.Present {
		merged.BudgetMin = copyInt(p.BudgetMin.Value)
	}
	if p.BudgetMax.Present {
		merged.BudgetMax = copyInt(p.BudgetMax.Value)
	}
	if p.Timeline != nil {
		merged.Timeline = *p.Timeline
	}
	if p.Source != nil {
		merged.Source = *p.Source
	}
	if p.Status != nil {
		merged.Status = *p.Status
	}
	if p.Notes != nil {
		merged.Notes = *p.Notes
	}
	if p.Tags != nil {
		merged.Tags = append([]string{}, p.Tags...)
	}
	return merged
}

func copyInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

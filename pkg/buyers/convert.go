package buyers

import (
	"strings"

	"github.com/vipul69-eng/leadbook/pkg/db/models"
)

// ToModel maps a validated form into storage vocabulary. Inputs must have
// passed Validate first; an unknown enum value surfacing here is an internal
// consistency fault and returned as an error rather than a field error.
func (f BuyerForm) ToModel() (*models.Buyer, error) {
	b := &models.Buyer{
		FullName: f.FullName,
		Phone:    f.Phone,
	}

	var err error
	if b.City, err = Cities.ToStorage(f.City); err != nil {
		return nil, err
	}
	if b.PropertyType, err = PropertyTypes.ToStorage(f.PropertyType); err != nil {
		return nil, err
	}
	if b.Purpose, err = Purposes.ToStorage(f.Purpose); err != nil {
		return nil, err
	}
	if b.Timeline, err = Timelines.ToStorage(f.Timeline); err != nil {
		return nil, err
	}
	if b.Source, err = Sources.ToStorage(f.Source); err != nil {
		return nil, err
	}

	status := f.Status
	if status == "" {
		status = StatusDefault
	}
	if b.Status, err = Statuses.ToStorage(status); err != nil {
		return nil, err
	}

	if f.BHK != "" {
		bhk, err := BHKs.ToStorage(f.BHK)
		if err != nil {
			return nil, err
		}
		b.BHK = &bhk
	}

	// Empty-string email means "not provided" and is stored as NULL.
	if email := strings.TrimSpace(f.Email); email != "" {
		b.Email = &email
	}
	if f.Notes != "" {
		notes := f.Notes
		b.Notes = &notes
	}
	if f.BudgetMin != nil {
		v := *f.BudgetMin
		b.BudgetMin = &v
	}
	if f.BudgetMax != nil {
		v := *f.BudgetMax
		b.BudgetMax = &v
	}

	b.Tags = append(b.Tags, f.Tags...)
	return b, nil
}

// FormFromModel renders a stored buyer in display vocabulary. This is the
// before-view the update protocol merges partial input over, and the shape the
// audit diff records.
func FormFromModel(b *models.Buyer) BuyerForm {
	f := BuyerForm{
		FullName:     b.FullName,
		Phone:        b.Phone,
		City:         Cities.FromStorage(b.City),
		PropertyType: PropertyTypes.FromStorage(b.PropertyType),
		Purpose:      Purposes.FromStorage(b.Purpose),
		Timeline:     Timelines.FromStorage(b.Timeline),
		Source:       Sources.FromStorage(b.Source),
		Status:       Statuses.FromStorage(b.Status),
		Tags:         []string{},
	}
	if b.Email != nil {
		f.Email = *b.Email
	}
	if b.BHK != nil {
		f.BHK = BHKs.FromStorage(*b.BHK)
	}
	if b.Notes != nil {
		f.Notes = *b.Notes
	}
	if b.BudgetMin != nil {
		v := *b.BudgetMin
		f.BudgetMin = &v
	}
	if b.BudgetMax != nil {
		v := *b.BudgetMax
		f.BudgetMax = &v
	}
	f.Tags = append(f.Tags, b.Tags...)
	return f
}

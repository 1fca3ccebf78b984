package buyers

// FieldChange records one field's before and after values in display
// vocabulary, so history entries read the way the user typed them.
type FieldChange struct {
	From interface{} `json:"from"`
	To   interface{} `json:"to"`
}

// ChangeSet maps changed field names to their before/after values. An empty
// set means the update is a no-op: no write, no history entry.
type ChangeSet map[string]FieldChange

// Diff compares two display-vocabulary views of the same lead field by field.
// Scalars compare by value, tags element-wise in order. Absent budgets are
// recorded as "" so the history payload never contains JSON nulls.
func Diff(before, after BuyerForm) ChangeSet {
	changes := ChangeSet{}

	diffString := func(field, from, to string) {
		if from != to {
			changes[field] = FieldChange{From: from, To: to}
		}
	}
	diffString("fullName", before.FullName, after.FullName)
	diffString("email", before.Email, after.Email)
	diffString("phone", before.Phone, after.Phone)
	diffString("city", before.City, after.City)
	diffString("propertyType", before.PropertyType, after.PropertyType)
	diffString("bhk", before.BHK, after.BHK)
	diffString("purpose", before.Purpose, after.Purpose)
	diffString("timeline", before.Timeline, after.Timeline)
	diffString("source", before.Source, after.Source)
	diffString("status", before.Status, after.Status)
	diffString("notes", before.Notes, after.Notes)

	if !intPtrEqual(before.BudgetMin, after.BudgetMin) {
		changes["budgetMin"] = FieldChange{From: intPtrDisplay(before.BudgetMin), To: intPtrDisplay(after.BudgetMin)}
	}
	if !intPtrEqual(before.BudgetMax, after.BudgetMax) {
		changes["budgetMax"] = FieldChange{From: intPtrDisplay(before.BudgetMax), To: intPtrDisplay(after.BudgetMax)}
	}
	if !stringsEqual(before.Tags, after.Tags) {
		changes["tags"] = FieldChange{From: before.Tags, To: after.Tags}
	}

	return changes
}

func intPtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func intPtrDisplay(v *int64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

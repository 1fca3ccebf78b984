package buyers

import (
	"fmt"

	"github.com/pkg/errors"
)

// EnumTable is a bidirectional mapping between the display vocabulary users
// see in forms and CSV files, and the identifiers persisted in the database.
// Both directions are built from a single pair list so the round-trip property
// holds structurally instead of depending on two hand-maintained switches.
type EnumTable struct {
	name      string
	toStorage map[string]string
	toDisplay map[string]string
	display   []string
}

func NewEnumTable(name string, pairs [][2]string) *EnumTable {
	t := &EnumTable{
		name:      name,
		toStorage: make(map[string]string, len(pairs)),
		toDisplay: make(map[string]string, len(pairs)),
		display:   make([]string, 0, len(pairs)),
	}
	for _, p := range pairs {
		if _, dup := t.toStorage[p[0]]; dup {
			panic(fmt.Sprintf("%s: duplicate display value %q", name, p[0]))
		}
		if _, dup := t.toDisplay[p[1]]; dup {
			panic(fmt.Sprintf("%s: duplicate storage value %q", name, p[1]))
		}
		t.toStorage[p[0]] = p[1]
		t.toDisplay[p[1]] = p[0]
		t.display = append(t.display, p[0])
	}
	return t
}

// identityEnum builds a table whose display and storage vocabularies are the
// same strings.
func identityEnum(name string, values ...string) *EnumTable {
	pairs := make([][2]string, 0, len(values))
	for _, v := range values {
		pairs = append(pairs, [2]string{v, v})
	}
	return NewEnumTable(name, pairs)
}

// ToStorage maps a display value to its storage identifier. Callers are
// expected to have validated the input already; an unknown value here is an
// internal consistency fault, not a user error.
func (t *EnumTable) ToStorage(display string) (string, error) {
	s, ok := t.toStorage[display]
	if !ok {
		return "", errors.Errorf("%s: unknown display value %q", t.name, display)
	}
	return s, nil
}

// FromStorage maps a storage identifier back to its display value. Total over
// the storage vocabulary by construction; anything else (e.g. a row written
// before a vocabulary change) is passed through unchanged so it still renders.
func (t *EnumTable) FromStorage(storage string) string {
	if d, ok := t.toDisplay[storage]; ok {
		return d
	}
	return storage
}

// Contains reports whether display is a known display value.
func (t *EnumTable) Contains(display string) bool {
	_, ok := t.toStorage[display]
	return ok
}

// Values returns the display vocabulary in table order.
func (t *EnumTable) Values() []string {
	out := make([]string, len(t.display))
	copy(out, t.display)
	return out
}

var (
	Cities        = identityEnum("city", "Chandigarh", "Mohali", "Zirakpur", "Panchkula", "Other")
	PropertyTypes = identityEnum("propertyType", "Apartment", "Villa", "Plot", "Office", "Retail")
	Purposes      = identityEnum("purpose", "Buy", "Rent")

	BHKs = NewEnumTable("bhk", [][2]string{
		{"1", "ONE"},
		{"2", "TWO"},
		{"3", "THREE"},
		{"4", "FOUR"},
		{"Studio", "STUDIO"},
	})

	Timelines = NewEnumTable("timeline", [][2]string{
		{"0-3m", "T0_3M"},
		{"3-6m", "T3_6M"},
		{">6m", "GT_6M"},
		{"Exploring", "EXPLORING"},
	})

	Sources = NewEnumTable("source", [][2]string{
		{"Website", "WEBSITE"},
		{"Referral", "REFERRAL"},
		{"Walk-in", "WALK_IN"},
		{"Call", "CALL"},
		{"Other", "OTHER"},
	})

	Statuses = NewEnumTable("status", [][2]string{
		{"New", "NEW"},
		{"Qualified", "QUALIFIED"},
		{"Contacted", "CONTACTED"},
		{"Visited", "VISITED"},
		{"Negotiation", "NEGOTIATION"},
		{"Converted", "CONVERTED"},
		{"Dropped", "DROPPED"},
	})
)

// StatusDefault is assigned when a new lead arrives without a status.
const StatusDefault = "New"

// residentialTypes are the property types that require a bhk value.
var residentialTypes = map[string]bool{
	"Apartment": true,
	"Villa":     true,
}

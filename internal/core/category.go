package core

import "strings"

// Category is one of the fixed spending classifications. The same definition
// backs request validation, the query builder and the storage schema checks.
type Category string

const (
	FoodDining    Category = "Food & Dining"
	Transport     Category = "Transport"
	Shopping      Category = "Shopping"
	Entertainment Category = "Entertainment"
	Health        Category = "Health"
	Housing       Category = "Housing"
	Utilities     Category = "Utilities"
	Travel        Category = "Travel"
	Education     Category = "Education"
	Other         Category = "Other"
)

// Categories lists every category in canonical order. The order is also used
// as the tie-break when two categories have the same total.
var Categories = []Category{
	FoodDining,
	Transport,
	Shopping,
	Entertainment,
	Health,
	Housing,
	Utilities,
	Travel,
	Education,
	Other,
}

var categoryColors = map[Category]string{
	FoodDining:    "#D4A853",
	Transport:     "#6B9ED4",
	Shopping:      "#C17FC7",
	Entertainment: "#E07070",
	Health:        "#6BC9A0",
	Housing:       "#70C4C4",
	Utilities:     "#f39c12",
	Travel:        "#7EB8D4",
	Education:     "#A07EC9",
	Other:         "#9A9A9A",
}

// AllCategories is the sentinel accepted by list filters meaning "no filter".
const AllCategories = "all"

// ParseCategory returns the category matching s exactly (after trimming).
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// Valid reports whether c belongs to the enumeration.
func (c Category) Valid() bool {
	_, ok := categoryColors[c]
	return ok
}

// Color returns the display colour used by chart view models.
func (c Category) Color() string {
	if col, ok := categoryColors[c]; ok {
		return col
	}
	return categoryColors[Other]
}

// Rank returns the canonical position of c, or len(Categories) if unknown.
func (c Category) Rank() int {
	for i, v := range Categories {
		if v == c {
			return i
		}
	}
	return len(Categories)
}

func (c Category) String() string {
	return string(c)
}

// Recurrence marks an expense as repeating. It is informational only.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Recurrences lists the accepted recurrence values.
var Recurrences = []Recurrence{RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly}

// ParseRecurrence parses s; an empty value defaults to RecurrenceNone.
func ParseRecurrence(s string) (Recurrence, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RecurrenceNone, nil
	}
	r := Recurrence(s)
	if !r.Valid() {
		return "", ErrInvalidRecurrence
	}
	return r, nil
}

// Valid reports whether r is one of the known values.
func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly:
		return true
	default:
		return false
	}
}

// Recurring reports whether r is set to anything other than none.
func (r Recurrence) Recurring() bool {
	return r != "" && r != RecurrenceNone
}

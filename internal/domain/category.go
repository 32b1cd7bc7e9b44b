package domain

import "strings"

// Category is the task classification label assigned to a user command.
type Category string

// Dispatch categories, one per handler.
const (
	CategoryEmail    Category = "email"
	CategoryResearch Category = "research"
	CategoryReport   Category = "report"
	CategoryCalendar Category = "calendar"
	CategoryNotion   Category = "notion"
	CategorySlack    Category = "slack"
	CategoryGeneral  Category = "general"
)

// Reward tiers that are not dispatch categories of their own.
const (
	CategorySimple  Category = "simple"
	CategoryComplex Category = "complex"
)

var knownCategories = []Category{
	CategoryEmail,
	CategoryResearch,
	CategoryReport,
	CategoryCalendar,
	CategoryNotion,
	CategorySlack,
	CategoryGeneral,
}

// KnownCategories returns the dispatch categories in their fixed order.
func KnownCategories() []Category {
	out := make([]Category, len(knownCategories))
	copy(out, knownCategories)
	return out
}

// IsKnownCategory reports whether c is one of the dispatch categories.
func IsKnownCategory(c Category) bool {
	for _, k := range knownCategories {
		if k == c {
			return true
		}
	}
	return false
}

// ParseCategory normalizes s into a dispatch category. Anything unparseable
// or unknown collapses to general.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if IsKnownCategory(c) {
		return c
	}
	return CategoryGeneral
}

func (c Category) String() string { return string(c) }

package model

import "strings"

type Category string

const (
	CategoryComplaint      Category = "complaint"
	CategoryInquiry        Category = "inquiry"
	CategoryFeedback       Category = "feedback"
	CategorySupportRequest Category = "support_request"
	CategoryOther          Category = "other"
)

var categories = []Category{
	CategoryComplaint,
	CategoryInquiry,
	CategoryFeedback,
	CategorySupportRequest,
	CategoryOther,
}

// Categories returns the closed category set in a stable order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory maps a model label onto the category set. Surrounding
// whitespace and case are ignored; anything else unknown becomes other.
func ParseCategory(label string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(label)))
	if c.Valid() {
		return c
	}
	return CategoryOther
}

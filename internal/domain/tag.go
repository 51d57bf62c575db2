package domain

import "github.com/rosterapp/roster/internal/color"

// TagCategory groups tags on the member form.
type TagCategory string

// Tag categories.
const (
	TagCategoryPosition TagCategory = "position"
	TagCategoryHobby    TagCategory = "hobby"
	TagCategoryOther    TagCategory = "other"
)

// TagCategories lists every category in display order.
var TagCategories = []TagCategory{TagCategoryPosition, TagCategoryHobby, TagCategoryOther}

// Valid reports whether c is a known category.
func (c TagCategory) Valid() bool {
	switch c {
	case TagCategoryPosition, TagCategoryHobby, TagCategoryOther:
		return true
	default:
		return false
	}
}

// Tag is a categorized label that can be attached to members.
// Members embed tags by value, so a Tag held by a Member is a snapshot taken
// when it was assigned and is not affected by later edits or deletion.
type Tag struct {
	ID       string      `json:"id" validate:"required"`
	Name     string      `json:"name" validate:"required,max=50"`
	Category TagCategory `json:"category" validate:"oneof=position hobby other"`
	Color    string      `json:"color,omitempty" validate:"omitempty,hexcolor"` // Optional; see DisplayColor
}

// DisplayColor returns the tag color, falling back to a color derived from the ID.
func (t Tag) DisplayColor() string {
	if t.Color != "" {
		return t.Color
	}
	return color.ForKey(t.ID)
}

// TagInput carries the mutable fields of a tag for add and update.
type TagInput struct {
	Name     string      `json:"name" validate:"required,max=50"`
	Category TagCategory `json:"category" validate:"required,oneof=position hobby other"`
	Color    string      `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

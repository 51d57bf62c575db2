package domain

import (
	"slices"
	"time"
)

// Member is a roster entry. Slice position in the roster is display order.
type Member struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ImageURL      string    `json:"image_url"`                 // Remote URL or uploaded data URL
	ImageBlurHash string    `json:"image_blurhash,omitempty"` // Placeholder for uploaded images
	Introduction  string    `json:"introduction"`
	Tags          []Tag     `json:"tags"`
	IsEditable    bool      `json:"is_editable"`
}

// Clone returns a copy that shares no slices with m.
func (m *Member) Clone() *Member {
	c := *m
	c.Tags = slices.Clone(m.Tags)
	return &c
}

// HasTag reports whether the member carries a tag with the given ID.
func (m *Member) HasTag(tagID string) bool {
	return slices.ContainsFunc(m.Tags, func(t Tag) bool { return t.ID == tagID })
}

// MemberInput is the payload for creating a member.
// ImageData holds an uploaded image as a data URL and wins over ImageURL.
type MemberInput struct {
	Name         string `json:"name" validate:"required,max=100"`
	ImageURL     string `json:"image_url" validate:"omitempty,max=2048"`
	ImageData    string `json:"image_data,omitempty" validate:"omitempty,datauri"`
	Introduction string `json:"introduction" validate:"max=2000"`
	Tags         []Tag  `json:"tags" validate:"dive"`
}

// MemberUpdate is a partial update. Nil fields keep their current value.
type MemberUpdate struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,max=2048"`
	ImageData    *string `json:"image_data,omitempty" validate:"omitempty,datauri"`
	Introduction *string `json:"introduction,omitempty" validate:"omitempty,max=2000"`
	Tags         *[]Tag  `json:"tags,omitempty" validate:"omitempty,dive"`
}

// ResolveImage picks the uploaded image payload when present, else the URL.
func ResolveImage(imageData, imageURL string) string {
	if imageData != "" {
		return imageData
	}
	return imageURL
}

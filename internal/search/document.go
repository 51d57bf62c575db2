// Package search provides full-text search over the member directory using Bleve.
package search

import (
	"github.com/rosterapp/roster/internal/domain"
)

// MemberDocument is the indexed form of a member.
// Tag names and categories are denormalized from the member's tag snapshots.
type MemberDocument struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Introduction string   `json:"introduction,omitempty"`
	TagNames     []string `json:"tag_names,omitempty"`
	TagIDs       []string `json:"tag_ids,omitempty"`
	Categories   []string `json:"categories,omitempty"`
}

// NewMemberDocument builds the index document for a member.
func NewMemberDocument(m *domain.Member) *MemberDocument {
	doc := &MemberDocument{
		ID:           m.ID,
		Name:         m.Name,
		Introduction: m.Introduction,
	}
	for _, t := range m.Tags {
		doc.TagNames = append(doc.TagNames, t.Name)
		doc.TagIDs = append(doc.TagIDs, t.ID)
		doc.Categories = append(doc.Categories, string(t.Category))
	}
	return doc
}

// ToMap converts the document to the field names used by the mapping.
func (d *MemberDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":   d.ID,
		"name": d.Name,
	}
	if d.Introduction != "" {
		m["introduction"] = d.Introduction
	}
	if len(d.TagNames) > 0 {
		m["tag_names"] = d.TagNames
		m["tag_ids"] = d.TagIDs
		m["categories"] = d.Categories
	}
	return m
}

// Package id generates collision-free identifiers for roster records.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the record types that carry a NanoID.
const (
	PrefixTag    = "tag"
	PrefixMember = "mem"
	PrefixChat   = "chat"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "mem-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	generated, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return generated
}

// NewMessageID returns a random UUIDv4 string for a chat message.
// Messages are the highest-volume record, so they use the unprefixed UUID form.
func NewMessageID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate message id: %w", err)
	}
	return u.String(), nil
}

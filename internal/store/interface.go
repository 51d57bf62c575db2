package store

import (
	"context"
	"io"
	"log/slog"
)

// Persisted keys. Values are JSON documents written whole on every mutation.
const (
	KeyMembers      = "members"       // []domain.Member in display order
	KeyTags         = "tags"          // []domain.Tag
	KeyChats        = "chats"         // []domain.Chat
	KeyChatMessages = "chat_messages" // map[chatID][]domain.Message
)

// Adapter is the persistence boundary used by every roster store.
// All methods take a context and may block on I/O; callers must not assume
// synchronous completion.
type Adapter interface {
	// GetItem decodes the value at key into dest. It reports found=false with a
	// nil error when the key is absent or its value cannot be decoded.
	GetItem(ctx context.Context, key string, dest any) (bool, error)
	// SetItem encodes and stores value at key.
	SetItem(ctx context.Context, key string, value any) error
	// SetItems stores several keys atomically: either all are written or none.
	SetItems(ctx context.Context, items map[string]any) error
	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
	// Clear removes every key owned by this adapter.
	Clear(ctx context.Context) error
	// Keys lists the stored keys in lexical order.
	Keys(ctx context.Context) ([]string, error)
}

// Backend is an Adapter that holds resources until closed.
type Backend interface {
	Adapter
	io.Closer
}

// EventEmitter is the interface for broadcasting store changes.
// Stores use it without depending on the SSE implementation.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// discardLogger is used when a backend is constructed without a logger.
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

package store

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

// Memory is an Adapter that keeps encoded values in a process-local map.
// Values still pass through the Codec, so callers never share memory with
// what is stored.
type Memory struct {
	mu     sync.RWMutex
	items  map[string][]byte
	codec  Codec
	logger *slog.Logger
	closed bool
}

// NewMemory creates an empty in-memory adapter.
func NewMemory(logger *slog.Logger) *Memory {
	if logger == nil {
		logger = discardLogger()
	}
	return &Memory{
		items:  make(map[string][]byte),
		codec:  JSONCodec{},
		logger: logger,
	}
}

// GetItem implements Adapter.
func (m *Memory) GetItem(ctx context.Context, key string, dest any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if key == "" {
		return false, ErrEmptyKey
	}

	m.mu.RLock()
	data, ok := m.items[key]
	closed := m.closed
	m.mu.RUnlock()

	if closed {
		return false, ErrClosed
	}
	if !ok {
		return false, nil
	}
	if err := m.codec.Unmarshal(data, dest); err != nil {
		m.logger.Warn("Discarding undecodable value", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// SetItem implements Adapter.
func (m *Memory) SetItem(ctx context.Context, key string, value any) error {
	return m.SetItems(ctx, map[string]any{key: value})
}

// SetItems implements Adapter.
func (m *Memory) SetItems(ctx context.Context, items map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for key := range items {
		if key == "" {
			return ErrEmptyKey
		}
	}

	encoded, err := encodeAll(m.codec, items)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	maps.Copy(m.items, encoded)
	return nil
}

// SetRaw stores bytes verbatim, bypassing the codec.
// Used to simulate foreign or corrupted data.
func (m *Memory) SetRaw(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = slices.Clone(data)
}

// RemoveItem implements Adapter.
func (m *Memory) RemoveItem(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.items, key)
	return nil
}

// Clear implements Adapter.
func (m *Memory) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	clear(m.items)
	return nil
}

// Keys implements Adapter.
func (m *Memory) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	return slices.Sorted(maps.Keys(m.items)), nil
}

// Close implements io.Closer.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

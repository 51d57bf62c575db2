package store

import (
	"encoding/json"
	"fmt"
)

// Codec converts values to and from their stored byte form.
// Every backend goes through a Codec so a versioned envelope can be introduced
// later without touching the stores that call the Adapter.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSONCodec stores values as plain JSON documents.
type JSONCodec struct{}

// Marshal implements Codec.
func (JSONCodec) Marshal(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	return data, nil
}

// Unmarshal implements Codec.
func (JSONCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return nil
}

// encodeAll marshals a batch before any backend write starts, so an encoding
// failure never leaves a batch half written.
func encodeAll(c Codec, items map[string]any) (map[string][]byte, error) {
	encoded := make(map[string][]byte, len(items))
	for key, value := range items {
		data, err := c.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", key, err)
		}
		encoded[key] = data
	}
	return encoded, nil
}

package api

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalEnvelope(t *testing.T, result any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeTransformer_AlwaysIncludesVersion(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
	}{
		{"success response", "200", map[string]string{"key": "value"}},
		{"created response", "201", map[string]string{"id": "123"}},
		{"no content response", "204", nil},
		{"plain error", "400", errors.New("invalid input")},
		{"coded error", "404", &APIError{Code: "NOT_FOUND", Message: "member not found"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			out := marshalEnvelope(t, result)
			require.Contains(t, out, "v")
			assert.InDelta(t, float64(EnvelopeVersion), out["v"], 0)
			assert.NotContains(t, out, "version")
		})
	}
}

func TestEnvelopeTransformer_Success(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", map[string]string{"name": "Taro"})
	require.NoError(t, err)

	out := marshalEnvelope(t, result)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"name": "Taro"}, out["data"])
	assert.NotContains(t, out, "error")
}

func TestEnvelopeTransformer_CodedError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "400", &APIError{
		Code:    "VALIDATION",
		Message: "validation failed",
		Details: map[string]string{"name": "is required"},
	})
	require.NoError(t, err)

	out := marshalEnvelope(t, result)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "VALIDATION", out["code"])
	assert.Equal(t, "validation failed", out["message"])
	assert.Equal(t, map[string]any{"name": "is required"}, out["details"])
}

func TestEnvelopeTransformer_UncodedErrorIsSimple(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "404", &APIError{Message: "Resource not found"})
	require.NoError(t, err)

	out := marshalEnvelope(t, result)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "Resource not found", out["error"])
	assert.NotContains(t, out, "code")
}

func TestEnvelopeTransformer_UnparsableStatusIsSuccess(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "default", "ok")
	require.NoError(t, err)

	out := marshalEnvelope(t, result)
	assert.Equal(t, true, out["success"])
}

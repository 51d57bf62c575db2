package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		generated, err := Generate(PrefixMember)
		require.NoError(t, err)
		assert.False(t, ids[generated], "ID should be unique: %s", generated)
		ids[generated] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"tag", PrefixTag},
		{"member", PrefixMember},
		{"chat", PrefixChat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generated, err := Generate(tt.prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(generated, tt.prefix+"-"))

			// NanoID default is 21 characters.
			nanoidPart := strings.TrimPrefix(generated, tt.prefix+"-")
			assert.Len(t, nanoidPart, 21)

			for _, char := range nanoidPart {
				assert.True(t,
					(char >= 'A' && char <= 'Z') ||
						(char >= 'a' && char <= 'z') ||
						(char >= '0' && char <= '9') ||
						char == '_' || char == '-',
					"Character %c should be URL-safe", char)
			}
		})
	}
}

func TestMustGenerate_Format(t *testing.T) {
	generated := MustGenerate(PrefixChat)

	assert.True(t, strings.HasPrefix(generated, "chat-"))
	assert.Equal(t, len("chat")+1+21, len(generated))
}

func TestNewMessageID(t *testing.T) {
	a, err := NewMessageID()
	require.NoError(t, err)
	b, err := NewMessageID()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

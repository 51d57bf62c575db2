// Package storetest holds shared checks every store.Adapter backend must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterapp/roster/internal/store"
)

// Factory returns a fresh, empty backend. The test owns closing it.
type Factory func(t *testing.T) store.Backend

type record struct {
	ID    string   `json:"id"`
	Names []string `json:"names"`
}

// RunAdapterContract exercises the Adapter contract against backends built by newBackend.
func RunAdapterContract(t *testing.T, newBackend Factory) {
	t.Helper()

	t.Run("GetMissingKey", func(t *testing.T) {
		a := newBackend(t)
		var got record
		found, err := a.GetItem(context.Background(), "missing", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("SetThenGet", func(t *testing.T) {
		ctx := context.Background()
		a := newBackend(t)

		want := record{ID: "r1", Names: []string{"a", "b"}}
		require.NoError(t, a.SetItem(ctx, "k", want))

		var got record
		found, err := a.GetItem(ctx, "k", &got)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, want, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		ctx := context.Background()
		a := newBackend(t)

		require.NoError(t, a.SetItem(ctx, "k", record{ID: "old"}))
		require.NoError(t, a.SetItem(ctx, "k", record{ID: "new"}))

		var got record
		_, err := a.GetItem(ctx, "k", &got)
		require.NoError(t, err)
		assert.Equal(t, "new", got.ID)
	})

	t.Run("UndecodableIsNotFound", func(t *testing.T) {
		ctx := context.Background()
		a := newBackend(t)

		require.NoError(t, a.SetItem(ctx, "k", "just a string"))

		var got record
		found, err := a.GetItem(ctx, "k", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("SetItemsWritesAll", func(t *testing.T) {
		ctx := context.Background()
		a := newBackend(t)

		require.NoError(t, a.SetItems(ctx, map[string]any{
			"chats":         []record{{ID: "c1"}},
			"chat_messages": map[string][]string{"c1": {}},
		}))

		keys, err := a.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"chat_messages", "chats"}, keys)
	})

	t.Run("SetItemsEncodeFailureWritesNothing", func(t *testing.T) {
		ctx := context.Background()
		a := newBackend(t)

		err := a.SetItems(ctx, map[string]any{
			"good": record{ID: "ok"},
			"bad":  make(chan int),
		})
		require.Error(t, err)

		keys, err := a.Keys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("RemoveItem", func(t *testing.T) {
		ctx := context.Background()
		a := newBackend(t)

		require.NoError(t, a.SetItem(ctx, "k", record{ID: "x"}))
		require.NoError(t, a.RemoveItem(ctx, "k"))
		require.NoError(t, a.RemoveItem(ctx, "k"), "removing an absent key is not an error")

		var got record
		found, err := a.GetItem(ctx, "k", &got)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("Clear", func(t *testing.T) {
		ctx := context.Background()
		a := newBackend(t)

		require.NoError(t, a.SetItem(ctx, "a", 1))
		require.NoError(t, a.SetItem(ctx, "b", 2))
		require.NoError(t, a.Clear(ctx))

		keys, err := a.Keys(ctx)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("EmptyKey", func(t *testing.T) {
		a := newBackend(t)
		err := a.SetItem(context.Background(), "", 1)
		assert.ErrorIs(t, err, store.ErrEmptyKey)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		a := newBackend(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := a.SetItem(ctx, "k", 1)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("ClosedBackend", func(t *testing.T) {
		a := newBackend(t)
		require.NoError(t, a.Close())

		err := a.SetItem(context.Background(), "k", 1)
		assert.ErrorIs(t, err, store.ErrClosed)
	})
}

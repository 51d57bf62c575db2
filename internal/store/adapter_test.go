package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterapp/roster/internal/store"
	"github.com/rosterapp/roster/internal/store/storetest"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "roster.db")
	s, err := store.New(dbPath, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestStore_AdapterContract(t *testing.T) {
	storetest.RunAdapterContract(t, func(t *testing.T) store.Backend {
		return setupTestStore(t)
	})
}

func TestMemory_AdapterContract(t *testing.T) {
	storetest.RunAdapterContract(t, func(t *testing.T) store.Backend {
		return store.NewMemory(nil)
	})
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "roster.db")

	s, err := store.New(dbPath, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetItem(ctx, store.KeyTags, []string{"t1", "t2"}))
	require.NoError(t, s.Close())

	reopened, err := store.New(dbPath, nil)
	require.NoError(t, err)
	defer reopened.Close()

	var got []string
	found, err := reopened.GetItem(ctx, store.KeyTags, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"t1", "t2"}, got)
}

func TestStore_InMemory(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewWithOptions("", nil, store.Options{InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SetItem(ctx, store.KeyMembers, []int{1}))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{store.KeyMembers}, keys)
}

func TestMemory_SetRawCorruptValue(t *testing.T) {
	m := store.NewMemory(nil)
	m.SetRaw(store.KeyMembers, []byte("{not json"))

	var got []int
	found, err := m.GetItem(context.Background(), store.KeyMembers, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory(nil)

	names := []string{"a"}
	require.NoError(t, m.SetItem(ctx, "k", names))
	names[0] = "mutated"

	var got []string
	_, err := m.GetItem(ctx, "k", &got)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

package service

import (
	"context"
	"testing"

	"github.com/rosterapp/roster/internal/domain"
	domainerrors "github.com/rosterapp/roster/internal/errors"
	"github.com/rosterapp/roster/internal/sse"
	"github.com/rosterapp/roster/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTagService(t *testing.T, env *testEnv) *TagService {
	t.Helper()
	svc := NewTagService(env.deps())
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func TestTagService_LoadSeedsOnFirstRun(t *testing.T) {
	env := newTestEnv(t)
	svc := setupTagService(t, env)

	tags := svc.Tags()
	require.Len(t, tags, 4)
	assert.Equal(t, seedTagEngineer, tags[0].ID)
	assert.False(t, svc.Loading())

	var persisted []domain.Tag
	found, err := env.mem.GetItem(context.Background(), store.KeyTags, &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, tags, persisted)
}

func TestTagService_LoadKeepsPersistedTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	saved := []domain.Tag{{ID: "tag-1", Name: "Go", Category: domain.TagCategoryOther}}
	require.NoError(t, env.mem.SetItem(ctx, store.KeyTags, saved))

	svc := setupTagService(t, env)

	assert.Equal(t, saved, svc.Tags())
}

func TestTagService_LoadSeedsOverCorruptData(t *testing.T) {
	env := newTestEnv(t)
	env.mem.SetRaw(store.KeyTags, []byte("{not json"))

	svc := setupTagService(t, env)

	assert.Len(t, svc.Tags(), 4)
}

func TestTagService_MutatorsRequireLoad(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTagService(env.deps())
	ctx := context.Background()

	assert.True(t, svc.Loading())

	_, err := svc.AddTag(ctx, domain.TagInput{Name: "Go", Category: domain.TagCategoryHobby})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotReady))

	_, err = svc.DeleteTag(ctx, seedTagEngineer)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotReady))
}

func TestTagService_AddTag(t *testing.T) {
	env := newTestEnv(t)
	svc := setupTagService(t, env)

	tag, err := svc.AddTag(context.Background(), domain.TagInput{
		Name:     "  Board   games ",
		Category: domain.TagCategoryHobby,
		Color:    "#FF9800",
	})
	require.NoError(t, err)

	assert.Contains(t, tag.ID, "tag-")
	assert.Equal(t, "Board games", tag.Name)
	assert.Equal(t, "#ff9800", tag.Color)

	got, ok := svc.Tag(tag.ID)
	require.True(t, ok)
	assert.Equal(t, *tag, got)

	events := env.emitter.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, sse.EventTagCreated, events[len(events)-1].(sse.Event).Type)
}

func TestTagService_AddTagValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := setupTagService(t, env)

	_, err := svc.AddTag(context.Background(), domain.TagInput{Name: "  ", Category: "mood"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	var de *domainerrors.Error
	require.True(t, domainerrors.As(err, &de))
	details, ok := de.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "name")
	assert.Contains(t, details, "category")
	assert.Len(t, svc.Tags(), 4)
}

func TestTagService_UpdateTag(t *testing.T) {
	env := newTestEnv(t)
	svc := setupTagService(t, env)
	ctx := context.Background()

	tag, found, err := svc.UpdateTag(ctx, seedTagPhotography, domain.TagInput{
		Name:     "Film photography",
		Category: domain.TagCategoryHobby,
	})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Film photography", tag.Name)

	_, found, err = svc.UpdateTag(ctx, "tag-missing", domain.TagInput{Name: "x", Category: domain.TagCategoryOther})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTagService_DeleteTagKeepsMemberSnapshots(t *testing.T) {
	env := newTestEnv(t)
	tags := setupTagService(t, env)
	members := NewMemberService(env.deps(), nil)
	ctx := context.Background()
	require.NoError(t, members.Load(ctx))

	found, err := tags.DeleteTag(ctx, seedTagEngineer)
	require.NoError(t, err)
	assert.True(t, found)
	_, ok := tags.Tag(seedTagEngineer)
	assert.False(t, ok)

	taro, ok := members.Member(SeedMemberTaro)
	require.True(t, ok)
	assert.True(t, taro.HasTag(seedTagEngineer))

	found, err = tags.DeleteTag(ctx, seedTagEngineer)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTagService_PersistFailureLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t)
	svc := setupTagService(t, env)
	ctx := context.Background()
	before := svc.Tags()

	env.store.failWrites.Store(true)

	_, err := svc.AddTag(ctx, domain.TagInput{Name: "Go", Category: domain.TagCategoryHobby})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrStorage))
	assert.ErrorIs(t, err, errDiskFull)

	_, err = svc.DeleteTag(ctx, seedTagDesigner)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrStorage))

	assert.Equal(t, before, svc.Tags())
}

func TestTagService_ListByCategory(t *testing.T) {
	env := newTestEnv(t)
	svc := setupTagService(t, env)

	positions := svc.ListByCategory(domain.TagCategoryPosition)
	require.Len(t, positions, 2)
	for _, tag := range positions {
		assert.Equal(t, domain.TagCategoryPosition, tag.Category)
	}
	assert.Empty(t, svc.ListByCategory(domain.TagCategoryOther))
}

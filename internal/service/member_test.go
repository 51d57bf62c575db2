package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/rosterapp/roster/internal/domain"
	domainerrors "github.com/rosterapp/roster/internal/errors"
	"github.com/rosterapp/roster/internal/search"
	"github.com/rosterapp/roster/internal/sse"
	"github.com/rosterapp/roster/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMemberService(t *testing.T, env *testEnv) *MemberService {
	t.Helper()
	svc := NewMemberService(env.deps(), nil)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func setupIndexedMemberService(t *testing.T, env *testEnv) *MemberService {
	t.Helper()
	index, err := search.NewMemberIndex(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	svc := NewMemberService(env.deps(), index)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func memberIDs(members []domain.Member) []string {
	ids := make([]string, len(members))
	for i := range members {
		ids[i] = members[i].ID
	}
	return ids
}

func TestMemberService_LoadSeedsOnFirstRun(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)

	assert.Equal(t, []string{SeedMemberTaro, SeedMemberHanako}, memberIDs(svc.Members()))

	var persisted []domain.Member
	found, err := env.mem.GetItem(context.Background(), store.KeyMembers, &persisted)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, persisted, 2)
}

func TestMemberService_AddToEmptyStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.mem.SetItem(ctx, store.KeyMembers, []domain.Member{}))

	svc := setupMemberService(t, env)
	require.Empty(t, svc.Members())

	m, err := svc.AddMember(ctx, domain.MemberInput{Name: "Ken"})
	require.NoError(t, err)

	members := svc.Members()
	require.Len(t, members, 1)
	assert.Equal(t, m.ID, members[0].ID)
	assert.Equal(t, "Ken", members[0].Name)
	assert.True(t, members[0].IsEditable)
	assert.Equal(t, env.clock.Now(), members[0].CreatedAt)
	assert.NotNil(t, members[0].Tags)
}

func TestMemberService_RoundTripThroughFreshStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := setupMemberService(t, env)

	_, err := svc.AddMember(ctx, domain.MemberInput{
		Name:         "Mika",
		Introduction: "Likes trains.",
		Tags:         []domain.Tag{{ID: seedTagPhotography, Name: "Photography", Category: domain.TagCategoryHobby}},
	})
	require.NoError(t, err)
	require.NoError(t, svc.ReorderMembers(ctx, 2, 0))

	reloaded := NewMemberService(Deps{Store: env.mem}, nil)
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, svc.Members(), reloaded.Members())
}

func TestMemberService_AddMemberSnapshotsTags(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)

	tags := []domain.Tag{{ID: "tag-1", Name: "Go", Category: domain.TagCategoryOther}}
	m, err := svc.AddMember(context.Background(), domain.MemberInput{Name: "Ken", Tags: tags})
	require.NoError(t, err)

	tags[0].Name = "Rust"

	got, ok := svc.Member(m.ID)
	require.True(t, ok)
	assert.Equal(t, "Go", got.Tags[0].Name)
}

func TestMemberService_AddMemberImage(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)
	ctx := context.Background()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	uploaded, err := svc.AddMember(ctx, domain.MemberInput{
		Name:      "Aoi",
		ImageURL:  "https://example.com/a.png",
		ImageData: data,
	})
	require.NoError(t, err)
	assert.Equal(t, data, uploaded.ImageURL)
	assert.NotEmpty(t, uploaded.ImageBlurHash)

	remote, err := svc.AddMember(ctx, domain.MemberInput{Name: "Sora", ImageURL: "https://example.com/s.png"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/s.png", remote.ImageURL)
	assert.Empty(t, remote.ImageBlurHash)
}

func TestMemberService_AddMemberValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)

	_, err := svc.AddMember(context.Background(), domain.MemberInput{Name: " \t "})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Len(t, svc.Members(), 2)
}

func TestMemberService_UpdateMember(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)
	ctx := context.Background()

	name := "Taro  Y."
	tags := []domain.Tag{}
	m, found, err := svc.UpdateMember(ctx, SeedMemberTaro, domain.MemberUpdate{Name: &name, Tags: &tags})
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, "Taro Y.", m.Name)
	assert.Empty(t, m.Tags)
	assert.NotEmpty(t, m.Introduction, "fields left nil are kept")

	_, found, err = svc.UpdateMember(ctx, "mem-missing", domain.MemberUpdate{Name: &name})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemberService_DeleteMemberKeepsSelection(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)
	ctx := context.Background()

	require.True(t, svc.Select(SeedMemberHanako))
	require.NotNil(t, svc.Selected())

	found, err := svc.DeleteMember(ctx, SeedMemberHanako)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, svc.Selected())
	assert.Equal(t, []string{SeedMemberTaro}, memberIDs(svc.Members()))

	found, err = svc.DeleteMember(ctx, SeedMemberHanako)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemberService_Selection(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)

	assert.Nil(t, svc.Selected())
	assert.False(t, svc.Select("mem-missing"))

	require.True(t, svc.Select(SeedMemberTaro))
	assert.Equal(t, SeedMemberTaro, svc.Selected().ID)

	svc.ClearSelection()
	assert.Nil(t, svc.Selected())
}

func TestMemberService_ReorderMembers(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)
	ctx := context.Background()

	for _, name := range []string{"C", "D", "E"} {
		_, err := svc.AddMember(ctx, domain.MemberInput{Name: name})
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		from, to int
	}{
		{"forward", 0, 3},
		{"backward", 4, 1},
		{"adjacent", 2, 3},
		{"same index", 2, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := memberIDs(svc.Members())
			moved := before[tt.from]

			require.NoError(t, svc.ReorderMembers(ctx, tt.from, tt.to))

			after := memberIDs(svc.Members())
			assert.Len(t, after, len(before))
			assert.Equal(t, moved, after[tt.to])
			assert.ElementsMatch(t, before, after)

			var persisted []domain.Member
			_, err := env.mem.GetItem(ctx, store.KeyMembers, &persisted)
			require.NoError(t, err)
			assert.Equal(t, after, memberIDs(persisted))
		})
	}
}

func TestMemberService_ReorderOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)
	before := svc.Members()

	for _, idx := range [][2]int{{-1, 0}, {0, 2}, {2, 0}, {0, -1}} {
		err := svc.ReorderMembers(context.Background(), idx[0], idx[1])
		assert.True(t, domainerrors.Is(err, domainerrors.ErrOutOfRange), "from=%d to=%d", idx[0], idx[1])
	}
	assert.Equal(t, before, svc.Members())
}

func TestMemberService_ReorderEmitsOrder(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)

	require.NoError(t, svc.ReorderMembers(context.Background(), 1, 0))

	events := env.emitter.Events()
	require.NotEmpty(t, events)
	ev := events[len(events)-1].(sse.Event)
	assert.Equal(t, sse.EventMembersReordered, ev.Type)
	data := ev.Data.(sse.MembersReorderedEventData)
	assert.Equal(t, []string{SeedMemberHanako, SeedMemberTaro}, data.MemberIDs)
}

func TestMemberService_PersistFailureLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)
	ctx := context.Background()
	before := svc.Members()

	env.store.failWrites.Store(true)

	_, err := svc.AddMember(ctx, domain.MemberInput{Name: "Ken"})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrStorage))

	name := "Renamed"
	_, _, err = svc.UpdateMember(ctx, SeedMemberTaro, domain.MemberUpdate{Name: &name})
	assert.True(t, domainerrors.Is(err, domainerrors.ErrStorage))

	_, err = svc.DeleteMember(ctx, SeedMemberTaro)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrStorage))

	err = svc.ReorderMembers(ctx, 0, 1)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrStorage))

	assert.Equal(t, before, svc.Members())
}

func TestMemberService_LoadPersistFailureStillServesSeed(t *testing.T) {
	env := newTestEnv(t)
	env.store.failWrites.Store(true)
	svc := NewMemberService(env.deps(), nil)

	err := svc.Load(context.Background())
	assert.True(t, domainerrors.Is(err, domainerrors.ErrStorage))
	assert.False(t, svc.Loading())
	assert.Len(t, svc.Members(), 2)
}

func TestMemberService_Search(t *testing.T) {
	env := newTestEnv(t)
	svc := setupIndexedMemberService(t, env)
	ctx := context.Background()

	added, err := svc.AddMember(ctx, domain.MemberInput{Name: "Kenji Sato", Introduction: "Backend developer."})
	require.NoError(t, err)

	got, err := svc.Search(ctx, "kenji", 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, added.ID, got[0].ID)

	got, err = svc.Search(ctx, "animation", 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, SeedMemberHanako, got[0].ID)

	_, err = svc.DeleteMember(ctx, added.ID)
	require.NoError(t, err)
	got, err = svc.Search(ctx, "kenji", 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := svc.Search(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestMemberService_SearchWithoutIndex(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)

	got, err := svc.Search(context.Background(), "PHOTO", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{SeedMemberTaro}, memberIDs(got))
}

func TestMemberService_CreatedAtUsesClock(t *testing.T) {
	env := newTestEnv(t)
	svc := setupMemberService(t, env)

	env.clock.Advance(time.Hour)
	m, err := svc.AddMember(context.Background(), domain.MemberInput{Name: "Ken"})
	require.NoError(t, err)
	assert.Equal(t, env.clock.Now(), m.CreatedAt)
}

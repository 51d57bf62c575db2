package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterapp/roster/internal/domain"
	"github.com/rosterapp/roster/internal/service"
	"github.com/rosterapp/roster/internal/store"
)

func memberIDs(members []MemberResponse) []string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	return ids
}

func TestListMembers_Seeded(t *testing.T) {
	ts := setupTestServer(t)

	body := decodeData[MembersResponse](t, ts.api.Get("/api/v1/members"))
	assert.Equal(t, []string{service.SeedMemberTaro, service.SeedMemberHanako}, memberIDs(body.Members))
	assert.Empty(t, body.SelectedID)
	require.Len(t, body.Members[0].Tags, 2)
	assert.Equal(t, "Engineer", body.Members[0].Tags[0].Name)
}

func TestListMembers_Search(t *testing.T) {
	ts := setupTestServer(t)

	body := decodeData[MembersResponse](t, ts.api.Get("/api/v1/members?q=animation"))
	assert.Equal(t, []string{service.SeedMemberHanako}, memberIDs(body.Members))

	body = decodeData[MembersResponse](t, ts.api.Get("/api/v1/members?q=nobody-matches-this"))
	assert.Empty(t, body.Members)
}

func TestListMembers_Limit(t *testing.T) {
	ts := setupTestServer(t)

	body := decodeData[MembersResponse](t, ts.api.Get("/api/v1/members?limit=1"))
	assert.Len(t, body.Members, 1)

	resp := ts.api.Get("/api/v1/members?limit=-1")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateMember(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/members", map[string]any{
		"name":         "Jiro  Sato",
		"introduction": "Backend and infrastructure.",
		"tags": []map[string]any{
			{"id": "tag-seed-engineer", "name": "Engineer", "category": "position"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	m := decodeData[MemberResponse](t, resp)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Jiro Sato", m.Name)
	assert.True(t, m.IsEditable)
	require.Len(t, m.Tags, 1)

	list := decodeData[MembersResponse](t, ts.api.Get("/api/v1/members"))
	require.Len(t, list.Members, 3)
	assert.Equal(t, m.ID, list.Members[2].ID, "new members are appended")

	var persisted []domain.Member
	found, err := ts.store.GetItem(context.Background(), store.KeyMembers, &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, persisted, 3)
}

func TestCreateMember_Validation(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/members", map[string]any{
		"name":       " ",
		"image_data": "not-a-data-url",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	body := decodeError(t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Details, "name")
}

func TestGetMember(t *testing.T) {
	ts := setupTestServer(t)

	m := decodeData[MemberResponse](t, ts.api.Get("/api/v1/members/"+service.SeedMemberHanako))
	assert.Equal(t, "Hanako Suzuki", m.Name)

	resp := ts.api.Get("/api/v1/members/mem-missing")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}

func TestUpdateMember_KeepsAbsentFields(t *testing.T) {
	ts := setupTestServer(t)
	before := decodeData[MemberResponse](t, ts.api.Get("/api/v1/members/"+service.SeedMemberTaro))

	resp := ts.api.Patch("/api/v1/members/"+service.SeedMemberTaro, map[string]any{
		"introduction": "Now leading the platform team.",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	m := decodeData[MemberResponse](t, resp)
	assert.Equal(t, "Now leading the platform team.", m.Introduction)
	assert.Equal(t, before.Name, m.Name)
	assert.Equal(t, before.Tags, m.Tags)
	assert.Equal(t, before.ImageURL, m.ImageURL)
}

func TestUpdateMember_ReplacesTags(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Patch("/api/v1/members/"+service.SeedMemberTaro, map[string]any{
		"tags": []map[string]any{},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Empty(t, decodeData[MemberResponse](t, resp).Tags)
}

func TestUpdateMember_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Patch("/api/v1/members/mem-missing", map[string]any{"name": "X"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteMember(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Delete("/api/v1/members/" + service.SeedMemberTaro)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	list := decodeData[MembersResponse](t, ts.api.Get("/api/v1/members"))
	assert.Equal(t, []string{service.SeedMemberHanako}, memberIDs(list.Members))

	resp = ts.api.Delete("/api/v1/members/" + service.SeedMemberTaro)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestReorderMembers(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/members/reorder", map[string]any{"from": 0, "to": 1})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	body := decodeData[MembersResponse](t, resp)
	assert.Equal(t, []string{service.SeedMemberHanako, service.SeedMemberTaro}, memberIDs(body.Members))

	list := decodeData[MembersResponse](t, ts.api.Get("/api/v1/members"))
	assert.Equal(t, memberIDs(body.Members), memberIDs(list.Members))
}

func TestReorderMembers_OutOfRange(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/members/reorder", map[string]any{"from": 0, "to": 5})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "OUT_OF_RANGE", decodeError(t, resp).Code)
}

func TestMemberSelection(t *testing.T) {
	ts := setupTestServer(t)

	sel := decodeData[SelectionResponse](t, ts.api.Get("/api/v1/members/selection"))
	assert.Nil(t, sel.Member)

	resp := ts.api.Put("/api/v1/members/selection", map[string]any{"id": service.SeedMemberHanako})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	sel = decodeData[SelectionResponse](t, resp)
	require.NotNil(t, sel.Member)
	assert.Equal(t, service.SeedMemberHanako, sel.Member.ID)

	list := decodeData[MembersResponse](t, ts.api.Get("/api/v1/members"))
	assert.Equal(t, service.SeedMemberHanako, list.SelectedID)

	resp = ts.api.Delete("/api/v1/members/selection")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	sel = decodeData[SelectionResponse](t, ts.api.Get("/api/v1/members/selection"))
	assert.Nil(t, sel.Member)
}

func TestMemberSelection_Unknown(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/members/selection", map[string]any{"id": "mem-missing"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestMemberSelection_DeletedMemberReadsAsNone(t *testing.T) {
	ts := setupTestServer(t)

	ts.api.Put("/api/v1/members/selection", map[string]any{"id": service.SeedMemberTaro})
	ts.api.Delete("/api/v1/members/" + service.SeedMemberTaro)

	sel := decodeData[SelectionResponse](t, ts.api.Get("/api/v1/members/selection"))
	assert.Nil(t, sel.Member)
}

func TestMember_NotEditableIsForbidden(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()

	locked := domain.Member{ID: "mem-locked", Name: "Club Admin", Tags: []domain.Tag{}}
	require.NoError(t, ts.store.SetItem(ctx, store.KeyMembers, []domain.Member{locked}))
	require.NoError(t, ts.services.Member.Load(ctx))

	resp := ts.api.Patch("/api/v1/members/mem-locked", map[string]any{"name": "Someone Else"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Code)

	resp = ts.api.Delete("/api/v1/members/mem-locked")
	assert.Equal(t, http.StatusForbidden, resp.Code)

	m := decodeData[MemberResponse](t, ts.api.Get("/api/v1/members/mem-locked"))
	assert.Equal(t, "Club Admin", m.Name)
}

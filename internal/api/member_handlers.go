package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rosterapp/roster/internal/domain"
	domainerrors "github.com/rosterapp/roster/internal/errors"
)

func (s *Server) registerMemberRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMembers",
		Method:      http.MethodGet,
		Path:        "/api/v1/members",
		Summary:     "List members",
		Description: "Returns the directory in display order, or search results in relevance order when q is set",
		Tags:        []string{"Members"},
	}, s.handleListMembers)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createMember",
		Method:        http.MethodPost,
		Path:          "/api/v1/members",
		Summary:       "Create member",
		Description:   "Appends a new editable member to the directory",
		Tags:          []string{"Members"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateMember)

	huma.Register(s.api, huma.Operation{
		OperationID: "reorderMembers",
		Method:      http.MethodPost,
		Path:        "/api/v1/members/reorder",
		Summary:     "Reorder members",
		Description: "Moves the member at index from to index to",
		Tags:        []string{"Members"},
	}, s.handleReorderMembers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMemberSelection",
		Method:      http.MethodGet,
		Path:        "/api/v1/members/selection",
		Summary:     "Get selected member",
		Tags:        []string{"Members"},
	}, s.handleGetSelection)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectMember",
		Method:      http.MethodPut,
		Path:        "/api/v1/members/selection",
		Summary:     "Select member",
		Tags:        []string{"Members"},
	}, s.handleSelectMember)

	huma.Register(s.api, huma.Operation{
		OperationID:   "clearMemberSelection",
		Method:        http.MethodDelete,
		Path:          "/api/v1/members/selection",
		Summary:       "Clear member selection",
		Tags:          []string{"Members"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleClearSelection)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMember",
		Method:      http.MethodGet,
		Path:        "/api/v1/members/{id}",
		Summary:     "Get member",
		Tags:        []string{"Members"},
	}, s.handleGetMember)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMember",
		Method:      http.MethodPatch,
		Path:        "/api/v1/members/{id}",
		Summary:     "Update member",
		Description: "Applies the fields present in the body; absent fields are kept",
		Tags:        []string{"Members"},
	}, s.handleUpdateMember)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteMember",
		Method:        http.MethodDelete,
		Path:          "/api/v1/members/{id}",
		Summary:       "Delete member",
		Tags:          []string{"Members"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteMember)
}

// === DTOs ===

// MemberTag is a tag snapshot carried by a member.
type MemberTag struct {
	ID       string `json:"id" doc:"Tag ID at assignment time"`
	Name     string `json:"name" doc:"Tag name at assignment time"`
	Category string `json:"category" doc:"Tag category"`
	Color    string `json:"color,omitempty" doc:"Display color"`
}

// MemberResponse contains member data in API responses.
type MemberResponse struct {
	ID            string      `json:"id" doc:"Member ID"`
	Name          string      `json:"name" doc:"Display name"`
	ImageURL      string      `json:"image_url" doc:"Image URL or uploaded data URL"`
	ImageBlurHash string      `json:"image_blurhash,omitempty" doc:"BlurHash placeholder for uploaded images"`
	Introduction  string      `json:"introduction" doc:"Free-form introduction"`
	Tags          []MemberTag `json:"tags" doc:"Tags assigned to the member"`
	IsEditable    bool        `json:"is_editable" doc:"Whether the member may be edited"`
	CreatedAt     time.Time   `json:"created_at" doc:"Creation time"`
}

// ListMembersInput contains parameters for listing members.
type ListMembersInput struct {
	Query string `query:"q" doc:"Full-text query over name, introduction and tag names"`
	Limit int    `query:"limit" minimum:"0" maximum:"500" doc:"Maximum number of results, 0 for all"`
}

// MembersResponse contains a list of members.
type MembersResponse struct {
	Members    []MemberResponse `json:"members" doc:"Members in display or relevance order"`
	SelectedID string           `json:"selected_id,omitempty" doc:"ID of the selected member"`
}

// MembersOutput wraps the members response for Huma.
type MembersOutput struct {
	Body MembersResponse
}

// CreateMemberRequest is the request body for creating a member.
type CreateMemberRequest struct {
	Name         string      `json:"name" doc:"Display name"`
	ImageURL     string      `json:"image_url,omitempty" doc:"Remote image URL"`
	ImageData    string      `json:"image_data,omitempty" doc:"Uploaded image as a data URL; wins over image_url"`
	Introduction string      `json:"introduction,omitempty" doc:"Free-form introduction"`
	Tags         []MemberTag `json:"tags,omitempty" doc:"Tags to assign"`
}

// CreateMemberInput wraps the create member request for Huma.
type CreateMemberInput struct {
	Body CreateMemberRequest
}

// UpdateMemberRequest is the request body for a partial member update.
type UpdateMemberRequest struct {
	Name         *string      `json:"name,omitempty" doc:"Display name"`
	ImageURL     *string      `json:"image_url,omitempty" doc:"Remote image URL"`
	ImageData    *string      `json:"image_data,omitempty" doc:"Uploaded image as a data URL"`
	Introduction *string      `json:"introduction,omitempty" doc:"Free-form introduction"`
	Tags         *[]MemberTag `json:"tags,omitempty" doc:"Replacement tag list"`
}

// UpdateMemberInput wraps the update member request for Huma.
type UpdateMemberInput struct {
	ID   string `path:"id" doc:"Member ID"`
	Body UpdateMemberRequest
}

// MemberIDInput identifies a member by path.
type MemberIDInput struct {
	ID string `path:"id" doc:"Member ID"`
}

// MemberOutput wraps the member response for Huma.
type MemberOutput struct {
	Body MemberResponse
}

// ReorderRequest moves one member.
type ReorderRequest struct {
	From int `json:"from" doc:"Current index of the member"`
	To   int `json:"to" doc:"Target index"`
}

// ReorderInput wraps the reorder request for Huma.
type ReorderInput struct {
	Body ReorderRequest
}

// SelectMemberRequest is the request body for selecting a member.
type SelectMemberRequest struct {
	ID string `json:"id" doc:"Member ID"`
}

// SelectMemberInput wraps the select request for Huma.
type SelectMemberInput struct {
	Body SelectMemberRequest
}

// SelectionResponse holds the selected member, null when nothing is selected.
type SelectionResponse struct {
	Member *MemberResponse `json:"member" doc:"Selected member or null"`
}

// SelectionOutput wraps the selection response for Huma.
type SelectionOutput struct {
	Body SelectionResponse
}

func newMemberResponse(m *domain.Member) MemberResponse {
	tags := make([]MemberTag, len(m.Tags))
	for i, t := range m.Tags {
		tags[i] = MemberTag{ID: t.ID, Name: t.Name, Category: string(t.Category), Color: t.Color}
	}
	return MemberResponse{
		ID:            m.ID,
		Name:          m.Name,
		ImageURL:      m.ImageURL,
		ImageBlurHash: m.ImageBlurHash,
		Introduction:  m.Introduction,
		Tags:          tags,
		IsEditable:    m.IsEditable,
		CreatedAt:     m.CreatedAt,
	}
}

func toDomainTags(tags []MemberTag) []domain.Tag {
	out := make([]domain.Tag, len(tags))
	for i, t := range tags {
		out[i] = domain.Tag{ID: t.ID, Name: t.Name, Category: domain.TagCategory(t.Category), Color: t.Color}
	}
	return out
}

func (s *Server) membersResponse(members []domain.Member) MembersResponse {
	resp := MembersResponse{Members: make([]MemberResponse, len(members))}
	for i := range members {
		resp.Members[i] = newMemberResponse(&members[i])
	}
	if selected := s.services.Member.Selected(); selected != nil {
		resp.SelectedID = selected.ID
	}
	return resp
}

// requireEditable refuses changes to members flagged as not editable.
// Unknown ids pass through so the service reports them as not found.
func (s *Server) requireEditable(memberID string) error {
	if m, ok := s.services.Member.Member(memberID); ok && !m.IsEditable {
		return domainerrors.Forbidden("member " + memberID + " is not editable")
	}
	return nil
}

// === Handlers ===

func (s *Server) handleListMembers(ctx context.Context, input *ListMembersInput) (*MembersOutput, error) {
	members, err := s.services.Member.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	return &MembersOutput{Body: s.membersResponse(members)}, nil
}

func (s *Server) handleCreateMember(ctx context.Context, input *CreateMemberInput) (*MemberOutput, error) {
	m, err := s.services.Member.AddMember(ctx, domain.MemberInput{
		Name:         input.Body.Name,
		ImageURL:     input.Body.ImageURL,
		ImageData:    input.Body.ImageData,
		Introduction: input.Body.Introduction,
		Tags:         toDomainTags(input.Body.Tags),
	})
	if err != nil {
		return nil, err
	}

	return &MemberOutput{Body: newMemberResponse(m)}, nil
}

func (s *Server) handleGetMember(_ context.Context, input *MemberIDInput) (*MemberOutput, error) {
	m, ok := s.services.Member.Member(input.ID)
	if !ok {
		return nil, domainerrors.NotFoundf("member %s not found", input.ID)
	}

	return &MemberOutput{Body: newMemberResponse(m)}, nil
}

func (s *Server) handleUpdateMember(ctx context.Context, input *UpdateMemberInput) (*MemberOutput, error) {
	if err := s.requireEditable(input.ID); err != nil {
		return nil, err
	}

	upd := domain.MemberUpdate{
		Name:         input.Body.Name,
		ImageURL:     input.Body.ImageURL,
		ImageData:    input.Body.ImageData,
		Introduction: input.Body.Introduction,
	}
	if input.Body.Tags != nil {
		tags := toDomainTags(*input.Body.Tags)
		upd.Tags = &tags
	}

	m, found, err := s.services.Member.UpdateMember(ctx, input.ID, upd)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.NotFoundf("member %s not found", input.ID)
	}

	return &MemberOutput{Body: newMemberResponse(m)}, nil
}

func (s *Server) handleDeleteMember(ctx context.Context, input *MemberIDInput) (*struct{}, error) {
	if err := s.requireEditable(input.ID); err != nil {
		return nil, err
	}

	found, err := s.services.Member.DeleteMember(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.NotFoundf("member %s not found", input.ID)
	}

	return nil, nil
}

func (s *Server) handleReorderMembers(ctx context.Context, input *ReorderInput) (*MembersOutput, error) {
	if err := s.services.Member.ReorderMembers(ctx, input.Body.From, input.Body.To); err != nil {
		return nil, err
	}

	return &MembersOutput{Body: s.membersResponse(s.services.Member.Members())}, nil
}

func (s *Server) handleGetSelection(_ context.Context, _ *struct{}) (*SelectionOutput, error) {
	out := &SelectionOutput{}
	if m := s.services.Member.Selected(); m != nil {
		resp := newMemberResponse(m)
		out.Body.Member = &resp
	}
	return out, nil
}

func (s *Server) handleSelectMember(ctx context.Context, input *SelectMemberInput) (*SelectionOutput, error) {
	if !s.services.Member.Select(input.Body.ID) {
		return nil, domainerrors.NotFoundf("member %s not found", input.Body.ID)
	}
	return s.handleGetSelection(ctx, nil)
}

func (s *Server) handleClearSelection(_ context.Context, _ *struct{}) (*struct{}, error) {
	s.services.Member.ClearSelection()
	return nil, nil
}

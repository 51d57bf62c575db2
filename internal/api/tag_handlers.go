package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rosterapp/roster/internal/domain"
	domainerrors "github.com/rosterapp/roster/internal/errors"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns the active tags, optionally filtered by category",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTag",
		Method:        http.MethodPost,
		Path:          "/api/v1/tags",
		Summary:       "Create tag",
		Description:   "Creates a new tag",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPut,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Update tag",
		Description: "Replaces a tag's name, category and color. Members keep their own copies.",
		Tags:        []string{"Tags"},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteTag",
		Method:        http.MethodDelete,
		Path:          "/api/v1/tags/{id}",
		Summary:       "Delete tag",
		Description:   "Removes a tag from the active set. Members keep their own copies.",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteTag)
}

// === DTOs ===

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	Category string `query:"category" doc:"Only return tags of this category (position, hobby or other)"`
}

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID       string `json:"id" doc:"Tag ID"`
	Name     string `json:"name" doc:"Tag name"`
	Category string `json:"category" doc:"Tag category"`
	Color    string `json:"color,omitempty" doc:"Display color"`
}

// ListTagsResponse contains a list of tags.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"List of tags"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// TagRequest is the request body for creating or replacing a tag.
type TagRequest struct {
	Name     string `json:"name" doc:"Tag name"`
	Category string `json:"category" doc:"Tag category: position, hobby or other"`
	Color    string `json:"color,omitempty" doc:"Display color as a hex string"`
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	Body TagRequest
}

// UpdateTagInput wraps the update tag request for Huma.
type UpdateTagInput struct {
	ID   string `path:"id" doc:"Tag ID"`
	Body TagRequest
}

// TagOutput wraps the tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// DeleteTagInput contains parameters for deleting a tag.
type DeleteTagInput struct {
	ID string `path:"id" doc:"Tag ID"`
}

func newTagResponse(t domain.Tag) TagResponse {
	return TagResponse{
		ID:       t.ID,
		Name:     t.Name,
		Category: string(t.Category),
		Color:    t.Color,
	}
}

func (r TagRequest) toInput() domain.TagInput {
	return domain.TagInput{
		Name:     r.Name,
		Category: domain.TagCategory(r.Category),
		Color:    r.Color,
	}
}

// === Handlers ===

func (s *Server) handleListTags(_ context.Context, input *ListTagsInput) (*ListTagsOutput, error) {
	var tags []domain.Tag
	if input.Category == "" {
		tags = s.services.Tag.Tags()
	} else {
		category := domain.TagCategory(input.Category)
		if !category.Valid() {
			return nil, domainerrors.ValidationWithDetails("validation failed",
				map[string]string{"category": "must be one of: position hobby other"})
		}
		tags = s.services.Tag.ListByCategory(category)
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = newTagResponse(t)
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	t, err := s.services.Tag.AddTag(ctx, input.Body.toInput())
	if err != nil {
		return nil, err
	}

	return &TagOutput{Body: newTagResponse(*t)}, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
	t, found, err := s.services.Tag.UpdateTag(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.NotFoundf("tag %s not found", input.ID)
	}

	return &TagOutput{Body: newTagResponse(*t)}, nil
}

func (s *Server) handleDeleteTag(ctx context.Context, input *DeleteTagInput) (*struct{}, error) {
	found, err := s.services.Tag.DeleteTag(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.NotFoundf("tag %s not found", input.ID)
	}

	return nil, nil
}

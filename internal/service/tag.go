package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/rosterapp/roster/internal/domain"
	domainerrors "github.com/rosterapp/roster/internal/errors"
	"github.com/rosterapp/roster/internal/id"
	"github.com/rosterapp/roster/internal/normalize"
	"github.com/rosterapp/roster/internal/sse"
	"github.com/rosterapp/roster/internal/store"
	"github.com/rosterapp/roster/internal/validation"
)

// TagService manages the active set of categorized tags.
// Members hold their own copies of tags, so nothing here touches members.
type TagService struct {
	store     store.Adapter
	emitter   store.EventEmitter
	validator *validation.Validator
	logger    *slog.Logger

	mu     sync.RWMutex
	tags   []domain.Tag
	loaded bool
}

// NewTagService creates a new tag service. Call Load before mutating.
func NewTagService(deps Deps) *TagService {
	deps = deps.withDefaults()
	return &TagService{
		store:     deps.Store,
		emitter:   deps.Emitter,
		validator: deps.Validator,
		logger:    deps.Logger,
	}
}

// Load hydrates tags from storage, seeding the sample tags when nothing usable
// is persisted.
func (s *TagService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tags []domain.Tag
	if hydrate(ctx, s.store, s.logger, store.KeyTags, &tags) && tags != nil {
		s.tags = tags
		s.loaded = true
		s.logger.Info("tags loaded", "count", len(tags))
		return nil
	}

	seed := seedTags()
	s.tags = seed
	s.loaded = true
	if err := persist(ctx, s.store, store.KeyTags, seed); err != nil {
		s.logger.Error("failed to persist seed tags", "error", err)
		return err
	}
	s.logger.Info("seeded sample tags", "count", len(seed))
	return nil
}

// Loading reports whether Load has not yet completed.
func (s *TagService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loaded
}

// Tags returns a copy of all tags in insertion order.
func (s *TagService) Tags() []domain.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tags)
}

// Tag returns the tag with id.
func (s *TagService) Tag(id string) (domain.Tag, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tags[i], true
	}
	return domain.Tag{}, false
}

// ListByCategory returns the tags of one category in insertion order.
func (s *TagService) ListByCategory(category domain.TagCategory) []domain.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// AddTag creates a tag with a fresh id.
func (s *TagService) AddTag(ctx context.Context, in domain.TagInput) (*domain.Tag, error) {
	in, err := s.prepare(in)
	if err != nil {
		return nil, err
	}

	tagID, err := id.Generate(id.PrefixTag)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate tag id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, errLoading("tags")
	}

	tag := domain.Tag{ID: tagID, Name: in.Name, Category: in.Category, Color: in.Color}
	next := append(slices.Clone(s.tags), tag)

	if err := persist(ctx, s.store, store.KeyTags, next); err != nil {
		return nil, err
	}
	s.tags = next

	s.emitter.Emit(sse.NewTagCreatedEvent(tag))
	s.logger.Info("tag created", "tag_id", tag.ID, "name", tag.Name, "category", tag.Category)

	return &tag, nil
}

// UpdateTag replaces name, category and color of the tag with id.
// An unknown id is a no-op reporting found=false.
func (s *TagService) UpdateTag(ctx context.Context, tagID string, in domain.TagInput) (*domain.Tag, bool, error) {
	in, err := s.prepare(in)
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, false, errLoading("tags")
	}

	i := s.indexOf(tagID)
	if i < 0 {
		return nil, false, nil
	}

	tag := domain.Tag{ID: tagID, Name: in.Name, Category: in.Category, Color: in.Color}
	next := slices.Clone(s.tags)
	next[i] = tag

	if err := persist(ctx, s.store, store.KeyTags, next); err != nil {
		return nil, true, err
	}
	s.tags = next

	s.emitter.Emit(sse.NewTagUpdatedEvent(tag))
	s.logger.Info("tag updated", "tag_id", tag.ID, "name", tag.Name)

	return &tag, true, nil
}

// DeleteTag removes the tag from the active set. Members keep their copies.
// An unknown id is a no-op reporting found=false.
func (s *TagService) DeleteTag(ctx context.Context, tagID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, errLoading("tags")
	}

	i := s.indexOf(tagID)
	if i < 0 {
		return false, nil
	}

	next := slices.Delete(slices.Clone(s.tags), i, i+1)
	if err := persist(ctx, s.store, store.KeyTags, next); err != nil {
		return true, err
	}
	s.tags = next

	s.emitter.Emit(sse.NewTagDeletedEvent(tagID))
	s.logger.Info("tag deleted", "tag_id", tagID)

	return true, nil
}

// prepare normalizes then validates tag input.
func (s *TagService) prepare(in domain.TagInput) (domain.TagInput, error) {
	in.Name = normalize.Name(in.Name)
	in.Color = normalize.Color(in.Color)
	if err := s.validator.Validate(in); err != nil {
		return in, err
	}
	return in, nil
}

// indexOf must be called with mu held.
func (s *TagService) indexOf(tagID string) int {
	return slices.IndexFunc(s.tags, func(t domain.Tag) bool { return t.ID == tagID })
}

package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rosterapp/roster/internal/domain"
	domainerrors "github.com/rosterapp/roster/internal/errors"
	"github.com/rosterapp/roster/internal/id"
	"github.com/rosterapp/roster/internal/media"
	"github.com/rosterapp/roster/internal/normalize"
	"github.com/rosterapp/roster/internal/search"
	"github.com/rosterapp/roster/internal/sse"
	"github.com/rosterapp/roster/internal/store"
	"github.com/rosterapp/roster/internal/validation"
)

// MemberService manages the ordered member directory and the member selection.
// Slice order is display order.
type MemberService struct {
	store     store.Adapter
	emitter   store.EventEmitter
	validator *validation.Validator
	index     *search.MemberIndex // Optional
	logger    *slog.Logger
	now       func() time.Time

	mu         sync.RWMutex
	members    []domain.Member
	selectedID string
	loaded     bool
}

// NewMemberService creates a new member service. index may be nil, in which
// case Search falls back to substring matching.
func NewMemberService(deps Deps, index *search.MemberIndex) *MemberService {
	deps = deps.withDefaults()
	return &MemberService{
		store:     deps.Store,
		emitter:   deps.Emitter,
		validator: deps.Validator,
		index:     index,
		logger:    deps.Logger,
		now:       deps.Now,
	}
}

// Load hydrates members from storage. When nothing usable is persisted the two
// sample members are seeded and written back. A persisted empty list is kept.
func (s *MemberService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var members []domain.Member
	if hydrate(ctx, s.store, s.logger, store.KeyMembers, &members) && members != nil {
		for i := range members {
			if members[i].Tags == nil {
				members[i].Tags = []domain.Tag{}
			}
		}
		s.commitLoad(members)
		s.logger.Info("members loaded", "count", len(members))
		return nil
	}

	seed := seedMembers(s.now())
	s.commitLoad(seed)
	if err := persist(ctx, s.store, store.KeyMembers, seed); err != nil {
		s.logger.Error("failed to persist seed members", "error", err)
		return err
	}
	s.logger.Info("seeded sample members", "count", len(seed))
	return nil
}

func (s *MemberService) commitLoad(members []domain.Member) {
	s.members = members
	s.loaded = true
	if s.index != nil {
		if err := s.index.Rebuild(members); err != nil {
			s.logger.Warn("failed to rebuild member search index", "error", err)
		}
	}
}

// Loading reports whether Load has not yet completed.
func (s *MemberService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.loaded
}

// Members returns a deep copy of the directory in display order.
func (s *MemberService) Members() []domain.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Member, len(s.members))
	for i := range s.members {
		out[i] = *s.members[i].Clone()
	}
	return out
}

// Member returns a copy of the member with id.
func (s *MemberService) Member(memberID string) (*domain.Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(memberID); i >= 0 {
		return s.members[i].Clone(), true
	}
	return nil, false
}

// AddMember appends a new editable member. The returned member is typically
// passed on to ChatService.CreateChat by the caller.
func (s *MemberService) AddMember(ctx context.Context, in domain.MemberInput) (*domain.Member, error) {
	in.Name = normalize.Name(in.Name)
	in.Introduction = normalize.Text(in.Introduction)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	memberID, err := id.Generate(id.PrefixMember)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate member id")
	}

	image := domain.ResolveImage(in.ImageData, in.ImageURL)
	m := domain.Member{
		ID:            memberID,
		Name:          in.Name,
		ImageURL:      image,
		ImageBlurHash: media.Placeholder(s.logger, image),
		Introduction:  in.Introduction,
		Tags:          snapshotTags(in.Tags),
		IsEditable:    true,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, errLoading("members")
	}

	m.CreatedAt = s.now()
	next := append(s.cloneMembers(), m)

	if err := persist(ctx, s.store, store.KeyMembers, next); err != nil {
		return nil, err
	}
	s.members = next
	s.reindex(&m)

	s.emitter.Emit(sse.NewMemberCreatedEvent(m.Clone()))
	s.logger.Info("member created", "member_id", m.ID, "name", m.Name, "tags", len(m.Tags))

	return m.Clone(), nil
}

// UpdateMember merges the non-nil fields of upd into the member with id.
// An unknown id is a no-op reporting found=false.
func (s *MemberService) UpdateMember(ctx context.Context, memberID string, upd domain.MemberUpdate) (*domain.Member, bool, error) {
	if upd.Name != nil {
		name := normalize.Name(*upd.Name)
		upd.Name = &name
	}
	if upd.Introduction != nil {
		intro := normalize.Text(*upd.Introduction)
		upd.Introduction = &intro
	}
	if err := s.validator.Validate(upd); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil, false, errLoading("members")
	}

	i := s.indexOf(memberID)
	if i < 0 {
		return nil, false, nil
	}

	m := s.members[i].Clone()
	if upd.Name != nil {
		m.Name = *upd.Name
	}
	if upd.Introduction != nil {
		m.Introduction = *upd.Introduction
	}
	if upd.Tags != nil {
		m.Tags = snapshotTags(*upd.Tags)
	}
	if image, ok := updatedImage(upd); ok && image != m.ImageURL {
		m.ImageURL = image
		m.ImageBlurHash = media.Placeholder(s.logger, image)
	}

	next := s.cloneMembers()
	next[i] = *m

	if err := persist(ctx, s.store, store.KeyMembers, next); err != nil {
		return nil, true, err
	}
	s.members = next
	s.reindex(m)

	s.emitter.Emit(sse.NewMemberUpdatedEvent(m.Clone()))
	s.logger.Info("member updated", "member_id", m.ID)

	return m.Clone(), true, nil
}

// DeleteMember removes the member with id. The selection is left to the caller.
// An unknown id is a no-op reporting found=false.
func (s *MemberService) DeleteMember(ctx context.Context, memberID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return false, errLoading("members")
	}

	i := s.indexOf(memberID)
	if i < 0 {
		return false, nil
	}

	next := slices.Delete(s.cloneMembers(), i, i+1)
	if err := persist(ctx, s.store, store.KeyMembers, next); err != nil {
		return true, err
	}
	s.members = next

	if s.index != nil {
		if err := s.index.DeleteMember(memberID); err != nil {
			s.logger.Warn("failed to remove member from search index", "member_id", memberID, "error", err)
		}
	}

	s.emitter.Emit(sse.NewMemberDeletedEvent(memberID))
	s.logger.Info("member deleted", "member_id", memberID)

	return true, nil
}

// ReorderMembers moves the member at from to position to, shifting the members
// in between by one. Both indices must be within [0, len).
func (s *MemberService) ReorderMembers(ctx context.Context, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return errLoading("members")
	}

	n := len(s.members)
	if from < 0 || from >= n {
		return domainerrors.OutOfRangef("from index %d out of range [0, %d)", from, n)
	}
	if to < 0 || to >= n {
		return domainerrors.OutOfRangef("to index %d out of range [0, %d)", to, n)
	}
	if from == to {
		return nil
	}

	next := s.cloneMembers()
	moved := next[from]
	next = slices.Delete(next, from, from+1)
	next = slices.Insert(next, to, moved)

	if err := persist(ctx, s.store, store.KeyMembers, next); err != nil {
		return err
	}
	s.members = next

	ids := make([]string, len(next))
	for i := range next {
		ids[i] = next[i].ID
	}
	s.emitter.Emit(sse.NewMembersReorderedEvent(from, to, ids))
	s.logger.Debug("members reordered", "member_id", moved.ID, "from", from, "to", to)

	return nil
}

// Select marks the member with id as selected. It reports whether the member exists.
func (s *MemberService) Select(memberID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(memberID) < 0 {
		return false
	}
	s.selectedID = memberID
	return true
}

// ClearSelection drops the current selection.
func (s *MemberService) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = ""
}

// Selected returns the selected member, or nil when nothing is selected or the
// selected member has since been deleted.
func (s *MemberService) Selected() *domain.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(s.selectedID); i >= 0 && s.selectedID != "" {
		return s.members[i].Clone()
	}
	return nil
}

// Search returns members matching query in relevance order.
// An empty query returns the directory in display order.
func (s *MemberService) Search(ctx context.Context, query string, limit int) ([]domain.Member, error) {
	query = normalize.Name(query)
	if query == "" {
		all := s.Members()
		if limit > 0 && len(all) > limit {
			all = all[:limit]
		}
		return all, nil
	}

	if s.index == nil {
		return s.scan(query, limit), nil
	}

	hits, err := s.index.Search(ctx, search.Params{Query: query, Limit: limit})
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "search members")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Member, 0, len(hits))
	for _, h := range hits {
		// The index may briefly trail a concurrent delete.
		if i := s.indexOf(h.ID); i >= 0 {
			out = append(out, *s.members[i].Clone())
		}
	}
	return out, nil
}

// scan is the index-free fallback: case-insensitive substring match.
func (s *MemberService) scan(query string, limit int) []domain.Member {
	key := normalize.Key(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Member
	for i := range s.members {
		m := &s.members[i]
		match := strings.Contains(normalize.Key(m.Name), key) ||
			strings.Contains(normalize.Key(m.Introduction), key) ||
			slices.ContainsFunc(m.Tags, func(t domain.Tag) bool {
				return strings.Contains(normalize.Key(t.Name), key)
			})
		if match {
			out = append(out, *m.Clone())
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// reindex must be called with mu held.
func (s *MemberService) reindex(m *domain.Member) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexMember(m); err != nil {
		s.logger.Warn("failed to index member", "member_id", m.ID, "error", err)
	}
}

// cloneMembers must be called with mu held.
func (s *MemberService) cloneMembers() []domain.Member {
	out := make([]domain.Member, len(s.members), len(s.members)+1)
	for i := range s.members {
		out[i] = *s.members[i].Clone()
	}
	return out
}

// indexOf must be called with mu held.
func (s *MemberService) indexOf(memberID string) int {
	return slices.IndexFunc(s.members, func(m domain.Member) bool { return m.ID == memberID })
}

// snapshotTags copies assigned tags so the member owns them.
func snapshotTags(tags []domain.Tag) []domain.Tag {
	if tags == nil {
		return []domain.Tag{}
	}
	return slices.Clone(tags)
}

// updatedImage applies the image rule to a partial update: uploaded data wins,
// then an explicit URL. ok is false when the update leaves the image alone.
func updatedImage(upd domain.MemberUpdate) (string, bool) {
	if upd.ImageData != nil && *upd.ImageData != "" {
		return *upd.ImageData, true
	}
	if upd.ImageURL != nil {
		return strings.TrimSpace(*upd.ImageURL), true
	}
	return "", false
}

package search

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/rosterapp/roster/internal/domain"
)

// MemberIndex wraps an in-memory Bleve index of members.
// The roster is small and fully held by the member store, so the index is
// rebuilt from that state at start-up instead of being persisted.
//
// Thread safety: All public methods are safe for concurrent use.
type MemberIndex struct {
	index  bleve.Index
	logger *slog.Logger
	mu     sync.RWMutex // Protects index swaps during Rebuild
}

// Options configures the search index.
type Options struct {
	Logger *slog.Logger // Logger for operations (uses discard if nil)
}

// NewMemberIndex creates an empty in-memory index.
func NewMemberIndex(opts Options) (*MemberIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &MemberIndex{index: index, logger: logger}, nil
}

// Close closes the index and releases resources.
func (s *MemberIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexMember adds or replaces a member's document.
func (s *MemberIndex) IndexMember(m *domain.Member) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Index(m.ID, NewMemberDocument(m).ToMap())
}

// DeleteMember removes a member's document.
func (s *MemberIndex) DeleteMember(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(id)
}

// Rebuild replaces the index contents with members.
func (s *MemberIndex) Rebuild(members []domain.Member) error {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	batch := index.NewBatch()
	for i := range members {
		if err := batch.Index(members[i].ID, NewMemberDocument(&members[i]).ToMap()); err != nil {
			index.Close()
			return fmt.Errorf("batch index %s: %w", members[i].ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return fmt.Errorf("commit batch: %w", err)
	}

	s.mu.Lock()
	old := s.index
	s.index = index
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("failed to close replaced search index", "error", err)
	}
	s.logger.Debug("rebuilt member search index", "members", len(members))
	return nil
}

// DocumentCount returns the total number of indexed members.
func (s *MemberIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

package providers

import (
	"github.com/samber/do/v2"

	"github.com/rosterapp/roster/internal/logger"
	"github.com/rosterapp/roster/internal/search"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.MemberIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the in-memory Bleve member index.
// It is filled by the member service when it loads.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewMemberIndex(search.Options{
		Logger: log.WithComponent("search"),
	})
	if err != nil {
		return nil, err
	}

	return &SearchIndexHandle{MemberIndex: index}, nil
}

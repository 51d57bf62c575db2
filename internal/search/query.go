package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a member search.
type Params struct {
	Query    string // User's search query
	TagID    string // Only members carrying this tag (optional)
	Category string // Only members with a tag in this category (optional)
	Limit    int
}

// Hit is a single matching member.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// defaultLimit applies when Params.Limit is not positive.
const defaultLimit = 20

// Search returns member ids in relevance order.
func (s *MemberIndex) Search(ctx context.Context, params Params) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), limit, 0, false)
	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// buildQuery constructs the Bleve query from params.
func buildQuery(params Params) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		tagMatch := bleve.NewMatchQuery(q)
		tagMatch.SetField("tag_names")
		tagMatch.SetBoost(2.0)

		introMatch := bleve.NewMatchQuery(q)
		introMatch.SetField("introduction")

		// Typo tolerance on names
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		text := []query.Query{nameMatch, tagMatch, introMatch, fuzzy}

		// Prefix for type-ahead (minimum 2 chars)
		if len(q) >= 2 && !strings.Contains(q, " ") {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			text = append(text, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(text...))
	}

	if params.TagID != "" {
		tq := bleve.NewTermQuery(params.TagID)
		tq.SetField("tag_ids")
		queries = append(queries, tq)
	}

	if params.Category != "" {
		cq := bleve.NewTermQuery(params.Category)
		cq.SetField("categories")
		queries = append(queries, cq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

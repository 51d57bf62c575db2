package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for member documents.
// Names use the simple analyzer (no stemming on proper nouns); introductions are
// stemmed English text; tag ids and categories are exact keywords for filtering.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	nameFieldMapping := bleve.NewTextFieldMapping()
	nameFieldMapping.Analyzer = simple.Name
	nameFieldMapping.Store = true
	nameFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("name", nameFieldMapping)

	introFieldMapping := bleve.NewTextFieldMapping()
	introFieldMapping.Analyzer = en.AnalyzerName
	introFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("introduction", introFieldMapping)

	tagNameFieldMapping := bleve.NewTextFieldMapping()
	tagNameFieldMapping.Analyzer = simple.Name
	tagNameFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("tag_names", tagNameFieldMapping)

	for _, field := range []string{"id", "tag_ids", "categories"} {
		kw := bleve.NewKeywordFieldMapping()
		kw.Analyzer = keyword.Name
		kw.Store = field == "id"
		docMapping.AddFieldMappingsAt(field, kw)
	}

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// projectDocument is what gets indexed for a project card.
type projectDocument struct {
	Title       string
	Description string
	Tags        string
}

func projectIndexMapping() mapping.IndexMapping {
	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = "en"

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("Title", titleFieldMapping)
	docMapping.AddFieldMappingsAt("Description", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Tags", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// SearchProjects matches query against the project list's titles,
// descriptions and tags. The index lives in memory for the one call. An
// empty query returns every project.
func (s *Service) SearchProjects(ctx context.Context, query string) ([]ProjectCard, error) {
	cards := s.Projects(ctx)
	query = strings.TrimSpace(query)
	if query == "" || len(cards) == 0 {
		return cards, nil
	}

	idx, err := bleve.NewMemOnly(projectIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	defer idx.Close()

	byKey := make(map[string]ProjectCard, len(cards))
	batch := idx.NewBatch()
	for i, c := range cards {
		key := c.ID
		if key == "" {
			key = fmt.Sprintf("project-%d", i)
		}
		byKey[key] = c
		doc := projectDocument{Title: c.Title, Description: c.Description, Tags: strings.Join(c.Tags, " ")}
		if err := batch.Index(key, doc); err != nil {
			return nil, fmt.Errorf("batch index %s: %w", key, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), len(cards), 0, false)
	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]ProjectCard, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if c, ok := byKey[hit.ID]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

package search

import (
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/pt"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/NeverVane/stockcatalog/internal/catalog"
	"github.com/NeverVane/stockcatalog/internal/logger"
)

const descriptionField = "description"

// FuzzyOptions controls fuzzy description matching
type FuzzyOptions struct {
	// Edit distance per term (0-2)
	Fuzziness int
}

// DefaultFuzzyOptions allows one edit per term
func DefaultFuzzyOptions() FuzzyOptions {
	return FuzzyOptions{Fuzziness: 1}
}

type indexedRow struct {
	Description string `json:"description"`
	Company     string `json:"company"`
	Sheet       string `json:"sheet"`
}

// FuzzyIndex is an in-memory Bleve index over row descriptions. It tolerates
// typos and Portuguese inflection ("leites" finds "Leite") but never ranks:
// hits come back in row order like Search.
type FuzzyIndex struct {
	index  bleve.Index
	rows   []catalog.Row
	logger *logger.Logger
}

// NewFuzzyIndex indexes rows. The index keeps a reference to rows and does
// not modify them.
func NewFuzzyIndex(rows []catalog.Row) (*FuzzyIndex, error) {
	log := logger.GetLogger().Search()

	index, err := bleve.NewMemOnly(createIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	batch := index.NewBatch()
	for i, row := range rows {
		doc := indexedRow{
			Description: row.Description,
			Company:     row.CompanyName,
			Sheet:       row.Sheet,
		}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			index.Close()
			return nil, fmt.Errorf("failed to add row %d to batch: %w", i, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to execute batch index: %w", err)
	}

	log.Debug().Int("rows", len(rows)).Msg("Fuzzy index built")

	return &FuzzyIndex{
		index:  index,
		rows:   rows,
		logger: log,
	}, nil
}

func createIndexMapping() mapping.IndexMapping {
	rowMapping := bleve.NewDocumentMapping()

	descriptionMapping := bleve.NewTextFieldMapping()
	descriptionMapping.Analyzer = pt.AnalyzerName
	descriptionMapping.Store = false
	descriptionMapping.Index = true
	rowMapping.AddFieldMappingsAt(descriptionField, descriptionMapping)

	keywordMapping := bleve.NewTextFieldMapping()
	keywordMapping.Analyzer = "keyword"
	keywordMapping.Store = false
	keywordMapping.Index = true
	rowMapping.AddFieldMappingsAt("company", keywordMapping)
	rowMapping.AddFieldMappingsAt("sheet", keywordMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = rowMapping
	indexMapping.DefaultAnalyzer = pt.AnalyzerName

	return indexMapping
}

// Search classifies raw like the exact engine. Code queries match exactly;
// description queries return the substring matches plus every row whose
// description matches all query terms within the configured edit distance.
func (f *FuzzyIndex) Search(raw string, opts FuzzyOptions) ([]catalog.Row, error) {
	q := Classify(raw)
	if q.Kind != KindDescription {
		return Filter(q, f.rows), nil
	}

	hits, err := f.match(q.Text, opts)
	if err != nil {
		return nil, err
	}

	matches := make([]catalog.Row, 0, len(hits))
	for i, row := range f.rows {
		if hits[i] || q.Matches(row) {
			matches = append(matches, row)
		}
	}

	f.logger.Debug().
		Str("query", q.Text).
		Int("fuzziness", opts.Fuzziness).
		Int("matches", len(matches)).
		Msg("Fuzzy search completed")

	return matches, nil
}

func (f *FuzzyIndex) match(text string, opts FuzzyOptions) (map[int]bool, error) {
	mq := bleve.NewMatchQuery(text)
	mq.SetField(descriptionField)
	mq.SetFuzziness(opts.Fuzziness)
	mq.SetOperator(query.MatchQueryOperatorAnd)

	req := bleve.NewSearchRequestOptions(mq, len(f.rows), 0, false)

	res, err := f.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search execution failed: %w", err)
	}

	hits := make(map[int]bool, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(f.rows) {
			f.logger.Warn().Str("doc_id", hit.ID).Msg("Ignoring unknown search hit")
			continue
		}
		hits[i] = true
	}
	return hits, nil
}

// Close releases the index
func (f *FuzzyIndex) Close() error {
	if f.index == nil {
		return nil
	}
	return f.index.Close()
}

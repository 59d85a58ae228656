// Package app holds the viewer's input state and the transitions user
// actions apply to it. Transitions never mutate a State in place; the
// terminal UI and tests drive them the same way.
package app

import (
	"github.com/NeverVane/stockcatalog/internal/catalog"
	"github.com/NeverVane/stockcatalog/internal/loader"
	"github.com/NeverVane/stockcatalog/internal/logger"
	"github.com/NeverVane/stockcatalog/internal/search"
	"github.com/NeverVane/stockcatalog/internal/view"
)

// State is the user-editable part of a session
type State struct {
	// Query text as typed, untrimmed
	Query string

	// False until the first search and again after Clear
	HasSearched bool

	// Fuzzy description matching
	Fuzzy bool
}

// Options configures a Controller
type Options struct {
	Fuzzy search.FuzzyOptions
}

// Controller applies user actions to a loaded snapshot
type Controller struct {
	snapshot *loader.Snapshot
	loadErr  error
	opts     Options

	fuzzy    *search.FuzzyIndex
	fuzzyErr error

	logger *logger.Logger
}

// NewController wraps a successfully loaded snapshot
func NewController(snap *loader.Snapshot, opts Options) *Controller {
	if snap == nil {
		snap = &loader.Snapshot{Rows: []catalog.Row{}}
	}
	return &Controller{
		snapshot: snap,
		opts:     opts,
		logger:   logger.GetLogger().WithComponent("app"),
	}
}

// NewFailedController is used when the load failed. It shows the load error
// until the user searches, and searches then run over no rows.
func NewFailedController(err error) *Controller {
	c := NewController(nil, Options{})
	c.loadErr = err
	return c
}

// LoadErr returns the load failure, if any
func (c *Controller) LoadErr() error {
	return c.loadErr
}

// Snapshot returns the loaded snapshot
func (c *Controller) Snapshot() *loader.Snapshot {
	return c.snapshot
}

// Header is the last-updated text, or the failure notice
func (c *Controller) Header() string {
	if c.loadErr != nil {
		return view.LoadFailedHeader
	}
	return c.snapshot.UpdatedAt
}

// Initial returns the starting view
func (c *Controller) Initial() view.View {
	if c.loadErr != nil {
		return view.LoadFailed()
	}
	return view.Render(nil, false, c.snapshot.UpdatedOn)
}

// Type records a keystroke. Nothing is rendered.
func Type(s State, query string) State {
	s.Query = query
	return s
}

// ToggleFuzzy flips fuzzy matching for later searches
func ToggleFuzzy(s State) State {
	s.Fuzzy = !s.Fuzzy
	return s
}

// Search marks the session as searched and renders the matches for the
// current query, even when the query is blank.
func (c *Controller) Search(s State) (State, view.View) {
	s.HasSearched = true
	matches := c.matches(s)

	c.logger.Debug().
		Str("query", s.Query).
		Bool("fuzzy", s.Fuzzy).
		Int("matches", len(matches)).
		Msg("Search")

	return s, view.Render(matches, s.HasSearched, c.snapshot.UpdatedOn)
}

// Clear resets the query and the searched flag and renders the prompt
func (c *Controller) Clear(s State) (State, view.View) {
	s.Query = ""
	s.HasSearched = false
	return s, view.Render(nil, s.HasSearched, c.snapshot.UpdatedOn)
}

// Matches returns the rows for a state without touching it
func (c *Controller) Matches(s State) []catalog.Row {
	return c.matches(s)
}

func (c *Controller) matches(s State) []catalog.Row {
	if !s.Fuzzy {
		return search.Search(s.Query, c.snapshot.Rows)
	}

	idx := c.fuzzyIndex()
	if idx == nil {
		return search.Search(s.Query, c.snapshot.Rows)
	}

	rows, err := idx.Search(s.Query, c.opts.Fuzzy)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Fuzzy search failed, using exact search")
		return search.Search(s.Query, c.snapshot.Rows)
	}
	return rows
}

// fuzzyIndex builds the index on first use; a build failure is remembered
// and exact search is used from then on.
func (c *Controller) fuzzyIndex() *search.FuzzyIndex {
	if c.fuzzy != nil || c.fuzzyErr != nil {
		return c.fuzzy
	}

	idx, err := search.NewFuzzyIndex(c.snapshot.Rows)
	if err != nil {
		c.fuzzyErr = err
		c.logger.Warn().Err(err).Msg("Failed to build fuzzy index")
		return nil
	}
	c.fuzzy = idx
	return idx
}

// Close releases the fuzzy index if one was built
func (c *Controller) Close() error {
	if c.fuzzy == nil {
		return nil
	}
	return c.fuzzy.Close()
}

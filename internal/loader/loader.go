// Package loader fetches the metadata and dataset snapshots and turns them
// into the read-only row list the viewer searches.
package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NeverVane/stockcatalog/internal/catalog"
	"github.com/NeverVane/stockcatalog/internal/config"
	"github.com/NeverVane/stockcatalog/internal/locale"
	"github.com/NeverVane/stockcatalog/internal/logger"
)

// UpdatedAtField is the metadata key holding the snapshot timestamp
const UpdatedAtField = "updated_at"

// Source is one dataset resource, loaded in configured order
type Source struct {
	Name     string
	Location string
}

// Options configures a Loader
type Options struct {
	// Metadata resource location (file path or http(s) URL)
	Metadata string

	// Dataset resources, concatenated in this order
	Sources []Source

	// Company id lookup used while normalizing
	Companies catalog.CompanyDirectory

	// Display location for the timestamp strings
	Location *time.Location

	// HTTP client for URL resources; http.DefaultClient when nil
	Client *http.Client
}

// Snapshot is the result of one successful load. It is never modified after
// Load returns.
type Snapshot struct {
	LoadID    string
	Timestamp locale.Timestamp

	// "dd/mm/yyyy, HH:MM:SS" and "dd/mm/yyyy", or the raw updated_at text
	UpdatedAt string
	UpdatedOn string

	Rows []catalog.Row

	// Row count contributed by each source, in source order
	SourceRows []int
}

// ResourceError reports which resource broke a load
type ResourceError struct {
	Resource string
	Err      error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Resource, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Loader reads snapshots from files or over HTTP
type Loader struct {
	opts   Options
	logger *logger.Logger
}

// New creates a loader
func New(opts Options) *Loader {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Loader{
		opts:   opts,
		logger: logger.GetLogger().Loader(),
	}
}

// FromConfig creates a loader for the configured resources
func FromConfig(cfg *config.Config) *Loader {
	sources := make([]Source, 0, len(cfg.Data.Sources))
	for _, src := range cfg.SourceLocations() {
		sources = append(sources, Source{Name: src.Name, Location: src.Path})
	}

	return New(Options{
		Metadata:  cfg.MetadataLocation(),
		Sources:   sources,
		Companies: catalog.NewCompanyDirectory(cfg.Companies.Names, cfg.Companies.Unknown),
		Location:  cfg.Location(),
	})
}

// Load fetches the metadata and every dataset concurrently and joins them.
// Any failing resource fails the whole load; there is no partial snapshot.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	loadID := uuid.New().String()
	log := l.logger.WithLoadID(loadID).WithOperation("load")

	log.Debug().
		Str("metadata", l.opts.Metadata).
		Int("sources", len(l.opts.Sources)).
		Msg("Loading snapshot")

	var meta map[string]interface{}
	datasets := make([]catalog.Dataset, len(l.opts.Sources))

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		obj, err := l.fetchObject(egCtx, l.opts.Metadata)
		if err != nil {
			return &ResourceError{Resource: l.opts.Metadata, Err: err}
		}
		meta = obj
		return nil
	})

	for i, src := range l.opts.Sources {
		i, src := i, src
		eg.Go(func() error {
			ds, err := l.fetchDataset(egCtx, src.Location)
			if err != nil {
				return &ResourceError{Resource: src.Location, Err: err}
			}
			datasets[i] = ds
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		log.WithError(err).Error().Msg("Snapshot load failed")
		return nil, err
	}

	ts := locale.ParseTimestamp(meta[UpdatedAtField], l.opts.Location)
	if !ts.Valid {
		log.Warn().Str("updated_at", ts.Raw).Msg("Unparseable updated_at, showing raw value")
	}

	snap := &Snapshot{
		LoadID:     loadID,
		Timestamp:  ts,
		UpdatedAt:  ts.DateTime(l.opts.Location),
		UpdatedOn:  ts.Date(l.opts.Location),
		SourceRows: make([]int, len(datasets)),
	}

	for i, ds := range datasets {
		rows := catalog.Normalize(ds, l.opts.Companies)
		snap.SourceRows[i] = len(rows)
		snap.Rows = append(snap.Rows, rows...)
	}
	if snap.Rows == nil {
		snap.Rows = []catalog.Row{}
	}

	log.Performance("snapshot_load", time.Since(start), map[string]interface{}{
		"rows":    len(snap.Rows),
		"sources": len(datasets),
	})

	return snap, nil
}

func (l *Loader) fetchDataset(ctx context.Context, location string) (catalog.Dataset, error) {
	body, err := l.open(ctx, location)
	if err != nil {
		return catalog.Dataset{}, err
	}
	defer body.Close()

	return catalog.DecodeDataset(body)
}

func (l *Loader) fetchObject(ctx context.Context, location string) (map[string]interface{}, error) {
	body, err := l.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return catalog.DecodeObject(body)
}

func (l *Loader) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !config.IsURL(location) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return os.Open(location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := l.opts.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

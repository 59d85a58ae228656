// Package convert turns .xlsx workbooks into the dataset JSON the loader reads.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/NeverVane/stockcatalog/internal/config"
	"github.com/NeverVane/stockcatalog/internal/logger"
)

// ErrLegacyWorkbook is returned for BIFF .xls input
var ErrLegacyWorkbook = errors.New("legacy .xls workbooks are not supported, save the file as .xlsx")

// Options controls a conversion run
type Options struct {
	// Output directory, empty to write next to each workbook
	OutDir string

	// 0-based index of the header row
	HeaderRow int

	// JSON indentation, 0 for compact output
	Indent int

	// Only convert these sheets (original names), empty for all
	Sheets []string

	// One file per sheet instead of one bundle per workbook
	Split bool

	// Descend into subdirectories of directory inputs
	Recursive bool
}

// OptionsFromConfig returns options seeded with the [convert] defaults
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{Indent: 2}
	}
	return Options{
		HeaderRow: cfg.Convert.HeaderRow,
		Indent:    cfg.Convert.Indent,
	}
}

// Converter converts workbooks to JSON
type Converter struct {
	opts   Options
	logger *logger.Logger
}

// New creates a converter
func New(opts Options) *Converter {
	if opts.HeaderRow < 0 {
		opts.HeaderRow = 0
	}
	if opts.Indent < 0 {
		opts.Indent = 0
	}
	return &Converter{
		opts:   opts,
		logger: logger.GetLogger().Convert(),
	}
}

// Run converts every workbook found under inputs and returns the written
// paths in order. It stops at the first failing workbook.
func (c *Converter) Run(ctx context.Context, inputs []string) ([]string, error) {
	workbooks, err := Discover(inputs, c.opts.Recursive)
	if err != nil {
		return nil, err
	}
	if len(workbooks) == 0 {
		return nil, fmt.Errorf("no .xlsx workbooks found in %s", strings.Join(inputs, ", "))
	}

	start := time.Now()
	var written []string
	for _, path := range workbooks {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		out, err := c.ConvertFile(path)
		if err != nil {
			return written, err
		}
		written = append(written, out...)
	}

	c.logger.Performance("convert", time.Since(start), map[string]interface{}{
		"workbooks": len(workbooks),
		"files":     len(written),
	})
	return written, nil
}

// ConvertFile converts one workbook and returns the JSON files it wrote
func (c *Converter) ConvertFile(path string) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return nil, fmt.Errorf("%s: %w", path, ErrLegacyWorkbook)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	bundle, err := c.readWorkbook(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	outDir := c.opts.OutDir
	if outDir == "" {
		outDir = filepath.Dir(path)
	}
	stem := SanitizeName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if stem == "" {
		stem = "workbook"
	}

	var written []string
	if c.opts.Split {
		for _, sheet := range bundle {
			out := filepath.Join(outDir, stem+"__"+sheet.Name+".json")
			if err := writeJSON(out, recordsOrEmpty(sheet.Records), c.opts.Indent); err != nil {
				return written, err
			}
			written = append(written, out)
		}
	} else {
		out := filepath.Join(outDir, stem+".json")
		if err := writeJSON(out, bundle, c.opts.Indent); err != nil {
			return nil, err
		}
		written = append(written, out)
	}

	c.logger.WithOperation("convert_file").Debug().
		Str("workbook", path).
		Int("sheets", len(bundle)).
		Strs("outputs", written).
		Msg("Workbook converted")
	return written, nil
}

func (c *Converter) readWorkbook(f *excelize.File) (Bundle, error) {
	wanted := make(map[string]bool, len(c.opts.Sheets))
	for _, s := range c.opts.Sheets {
		wanted[s] = true
	}

	var bundle Bundle
	for _, name := range f.GetSheetList() {
		if len(wanted) > 0 && !wanted[name] {
			continue
		}
		records, err := readSheet(f, name, c.opts.HeaderRow)
		if err != nil {
			return nil, err
		}
		key := SanitizeName(name)
		if key == "" {
			key = "sheet"
		}
		bundle = append(bundle, Sheet{Name: key, Records: records})
	}

	if len(wanted) > 0 && len(bundle) == 0 {
		return nil, fmt.Errorf("none of the sheets %s exist", strings.Join(c.opts.Sheets, ", "))
	}
	return bundle, nil
}

// Discover expands inputs into a sorted, duplicate-free list of workbook
// paths. Directories contribute their .xlsx/.xlsm files, and explicit .xls
// files are kept so conversion can reject them.
func Discover(inputs []string, recursive bool) ([]string, error) {
	seen := make(map[string]bool)
	var found []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			found = append(found, clean)
		}
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("failed to read input %s: %w", input, err)
		}
		if !info.IsDir() {
			add(input)
			continue
		}

		var matches []string
		if recursive {
			err = filepath.WalkDir(input, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isWorkbook(d.Name()) {
					matches = append(matches, path)
				}
				return nil
			})
		} else {
			var entries []os.DirEntry
			entries, err = os.ReadDir(input)
			for _, e := range entries {
				if !e.IsDir() && isWorkbook(e.Name()) {
					matches = append(matches, filepath.Join(input, e.Name()))
				}
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", input, err)
		}

		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}
	return found, nil
}

func isWorkbook(name string) bool {
	// Excel lock files
	if strings.HasPrefix(name, "~$") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

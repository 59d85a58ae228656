package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MarshalJSON writes the record as an object with keys in column order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeValue(&buf, f.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeValue(&buf, f.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Sheet is a named block of converted records
type Sheet struct {
	Name    string
	Records []Record
}

// Bundle is a workbook converted to one object keyed by sheet, in workbook order
type Bundle []Sheet

// MarshalJSON writes the bundle as {"sheet": [records], ...}
func (b Bundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeValue(&buf, s.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeValue(&buf, recordsOrEmpty(s.Records)); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func recordsOrEmpty(records []Record) []Record {
	if records == nil {
		return []Record{}
	}
	return records
}

func writeValue(buf *bytes.Buffer, v interface{}) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// encode renders v with the given indent width, 0 meaning compact
func encode(v interface{}, indent int) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeJSON(path string, v interface{}, indent int) error {
	data, err := encode(v, indent)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// StampFile is the metadata document the loader reads updated_at from
const StampFile = "data_att.json"

// WriteStamp writes {"updated_at": now} into dir and returns the file path
func WriteStamp(dir string, now time.Time, indent int) (string, error) {
	path := filepath.Join(dir, StampFile)
	stamp := Record{{Key: "updated_at", Value: now.Format(time.RFC3339)}}
	if err := writeJSON(path, stamp, indent); err != nil {
		return "", err
	}
	return path, nil
}

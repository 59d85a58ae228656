package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrTrailingData is returned when a document holds more than one JSON value
var ErrTrailingData = errors.New("unexpected data after top-level JSON value")

// ErrNullDataset is returned for a dataset document that is just null
var ErrNullDataset = errors.New("dataset document is null")

// DecodeDataset parses a dataset export. Sheet order follows the document;
// sheet values that are not arrays are skipped, and array elements that are
// not objects become empty records. A repeated sheet name keeps its first
// position and its last value. A null document is an error; any other
// non-object document is an empty dataset.
func DecodeDataset(r io.Reader) (Dataset, error) {
	raw, err := readDocument(r)
	if err != nil {
		return Dataset{}, err
	}

	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return Dataset{}, ErrNullDataset
	}
	if firstByte(raw) != '{' {
		return Dataset{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	// opening brace
	if _, err := dec.Token(); err != nil {
		return Dataset{}, fmt.Errorf("failed to read dataset object: %w", err)
	}

	var ds Dataset
	index := make(map[string]int)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Dataset{}, fmt.Errorf("failed to read sheet name: %w", err)
		}
		name, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return Dataset{}, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}

		if firstByte(value) != '[' {
			if i, seen := index[name]; seen {
				ds.Sheets = append(ds.Sheets[:i], ds.Sheets[i+1:]...)
				delete(index, name)
				for k, v := range index {
					if v > i {
						index[k] = v - 1
					}
				}
			}
			continue
		}

		records, err := decodeRecords(value)
		if err != nil {
			return Dataset{}, fmt.Errorf("failed to decode sheet %q: %w", name, err)
		}

		if i, seen := index[name]; seen {
			ds.Sheets[i].Records = records
			continue
		}
		index[name] = len(ds.Sheets)
		ds.Sheets = append(ds.Sheets, Sheet{Name: name, Records: records})
	}

	return ds, nil
}

func decodeRecords(raw json.RawMessage) ([]Record, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		if firstByte(item) != '{' {
			records = append(records, Record{})
			continue
		}
		var rec Record
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// DecodeObject parses a JSON document expected to hold an object and returns
// its members decoded with UseNumber. A non-object document yields nil.
func DecodeObject(r io.Reader) (map[string]interface{}, error) {
	raw, err := readDocument(r)
	if err != nil {
		return nil, err
	}
	if firstByte(raw) != '{' {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var obj map[string]interface{}
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func readDocument(r io.Reader) (json.RawMessage, error) {
	dec := json.NewDecoder(r)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return raw, nil
}

func firstByte(raw []byte) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

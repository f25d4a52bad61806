// Package dataset implements a small columnar table for questionnaire
// records. Columns are created from a JSON array of per-respondent
// objects; value types are inferred from the JSON (numbers become
// numeric columns, strings text columns, nulls missing cells). Schema
// problems surface lazily on first column access, not at load time.
package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "surveycli/internal/errors"
)

// Dataset is an ordered collection of equally sized columns. Rows carry
// ordinal index labels that survive row drops until ResetIndex is
// called, mirroring how the rest of the system reasons about "the same
// respondent" across cleaning passes.
type Dataset struct {
	cols   []*Column
	byName map[string]*Column
	index  []int
}

// Load reads and decodes the JSON dataset at the given path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open dataset file", err).WithContext("path", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a JSON array of records into a new dataset. Column
// order follows first appearance across records; a key absent from a
// record yields a missing cell, so every column spans every row.
func Decode(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read dataset", err)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, apperrors.NewParsingError("dataset must be a JSON array of records", err)
	}

	d := &Dataset{byName: make(map[string]*Column)}
	for rowIdx, raw := range raws {
		fields, err := decodeRecord(raw)
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("record %d is not a flat JSON object", rowIdx), err)
		}
		if err := d.appendRow(rowIdx, fields); err != nil {
			return nil, err
		}
	}
	return d, nil
}

type field struct {
	name  string
	value any // float64, string, or nil for JSON null
}

// decodeRecord walks one record token by token so that key order is
// preserved; map-based unmarshalling would scramble column order.
func decodeRecord(raw json.RawMessage) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var fields []field
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch v := valTok.(type) {
		case json.Number:
			f, err := v.Float64()
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			fields = append(fields, field{name: key, value: f})
		case string:
			fields = append(fields, field{name: key, value: v})
		case nil:
			fields = append(fields, field{name: key, value: nil})
		default:
			return nil, fmt.Errorf("field %q has unsupported value %v", key, valTok)
		}
	}
	return fields, nil
}

func (d *Dataset) appendRow(label int, fields []field) error {
	for _, c := range d.cols {
		c.appendMissing()
	}
	d.index = append(d.index, label)
	row := len(d.index) - 1

	for _, f := range fields {
		col, ok := d.byName[f.name]
		if !ok {
			col = newColumn(f.name, row+1)
			d.cols = append(d.cols, col)
			d.byName[f.name] = col
		}
		if f.value == nil {
			col.SetMissing(row)
			continue
		}
		if !col.setValue(row, f.value) {
			return apperrors.NewParsingError(
				fmt.Sprintf("column %q mixes %s and incompatible values", f.name, col.Kind()), nil)
		}
	}
	return nil
}

// NumRows returns the number of rows
func (d *Dataset) NumRows() int { return len(d.index) }

// NumCols returns the number of columns
func (d *Dataset) NumCols() int { return len(d.cols) }

// ColumnNames returns column names in their stored order
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.cols))
	for i, c := range d.cols {
		names[i] = c.name
	}
	return names
}

// HasColumn reports whether a column with the given name exists
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.byName[name]
	return ok
}

// Column returns the named column or a FIELD_MISSING error when the
// loaded data never contained it.
func (d *Dataset) Column(name string) (*Column, error) {
	col, ok := d.byName[name]
	if !ok {
		return nil, apperrors.NewFieldMissingError(name)
	}
	return col, nil
}

// Index returns a copy of the current ordinal index labels.
func (d *Dataset) Index() []int {
	return append([]int(nil), d.index...)
}

// Filter drops every row whose keep flag is false, in place. Index
// labels of surviving rows are preserved.
func (d *Dataset) Filter(keep []bool) {
	for _, c := range d.cols {
		c.filter(keep)
	}
	index := d.index[:0]
	for i, k := range keep {
		if k {
			index = append(index, d.index[i])
		}
	}
	d.index = index
}

// ResetIndex renumbers the index labels to a contiguous 0-based range.
func (d *Dataset) ResetIndex() {
	for i := range d.index {
		d.index[i] = i
	}
}

// Copy returns a deep copy sharing no state with the receiver.
func (d *Dataset) Copy() *Dataset {
	out := &Dataset{byName: make(map[string]*Column, len(d.cols))}
	for _, c := range d.cols {
		cc := c.clone()
		out.cols = append(out.cols, cc)
		out.byName[cc.name] = cc
	}
	out.index = append([]int(nil), d.index...)
	return out
}

// SetNumericColumn appends (or overwrites) a numeric column. Cells
// flagged in miss are stored as missing; vals and miss must both match
// the current row count.
func (d *Dataset) SetNumericColumn(name string, vals []float64, miss []bool) error {
	if len(vals) != d.NumRows() || len(miss) != d.NumRows() {
		return apperrors.NewValidationError(
			fmt.Sprintf("column %q length %d does not match row count %d", name, len(vals), d.NumRows()))
	}
	col := newColumn(name, d.NumRows())
	col.kind = Numeric
	col.typed = true
	for i := range vals {
		if miss[i] {
			col.SetMissing(i)
			continue
		}
		col.SetFloat(i, vals[i])
	}
	if old, ok := d.byName[name]; ok {
		for i, c := range d.cols {
			if c == old {
				d.cols[i] = col
				break
			}
		}
	} else {
		d.cols = append(d.cols, col)
	}
	d.byName[name] = col
	return nil
}

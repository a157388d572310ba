// Package ingest turns raw purchase files (JSON, CSV, XLSX) into a
// core.Table, deriving line totals and calendar fields for every row.
package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"compras/internal/core"
)

// Format identifies an input encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported input format")

// FormatFromName picks a format from a file name extension.
func FormatFromName(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return FormatJSON, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Parse reads a whole document of the given format. Failures are either
// *core.MalformedInputError or I/O errors.
func Parse(r io.Reader, format Format) (core.Table, error) {
	switch format {
	case FormatJSON:
		return parseJSON(r)
	case FormatCSV:
		return parseCSV(r)
	case FormatXLSX:
		return parseXLSX(r)
	default:
		return core.Table{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte, format Format) (core.Table, error) {
	return Parse(bytes.NewReader(data), format)
}

func parseJSON(r io.Reader) (core.Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var objects []map[string]any
	if err := dec.Decode(&objects); err != nil {
		if errors.Is(err, io.EOF) {
			return core.NewTable(nil), nil
		}
		return core.Table{}, &core.MalformedInputError{Reason: "expected a JSON array of objects: " + err.Error(), Err: err}
	}

	d := decoder{}
	out := make([]core.Purchase, 0, len(objects))
	for i, obj := range objects {
		var rec rawRecord
		seen := make(map[string]bool)
		for _, key := range objectKeys(obj) {
			col, ok := canonicalColumn(key)
			if !ok || seen[col] {
				continue
			}
			seen[col] = true
			d.set(&rec, col, jsonString(obj[key]))
		}
		p, err := d.purchase(i+1, rec)
		if err != nil {
			return core.Table{}, err
		}
		out = append(out, p)
	}
	return core.NewTable(out), nil
}

// objectKeys orders keys so that canonical Spanish names come first and
// the rest follow alphabetically. Objects carrying two aliases of one
// column then decode the same way every time.
func objectKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := isCanonical(keys[i]), isCanonical(keys[j])
		if ci != cj {
			return ci
		}
		return keys[i] < keys[j]
	})
	return keys
}

func isCanonical(key string) bool {
	col, ok := canonicalColumn(key)
	return ok && normalizeHeader(key) == col
}

func jsonString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func parseCSV(r io.Reader) (core.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return core.Table{}, &core.MalformedInputError{Row: max(perr.Line-1, 0), Reason: perr.Err.Error(), Err: err}
		}
		return core.Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return core.NewTable(nil), nil
	}
	return decoder{}.rows(records[0], records[1:])
}

func parseXLSX(r io.Reader) (core.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return core.Table{}, &core.MalformedInputError{Reason: "not a readable spreadsheet: " + err.Error(), Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return core.NewTable(nil), nil
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return core.Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return core.NewTable(nil), nil
	}
	return decoder{serialDates: true}.rows(rows[0], rows[1:])
}

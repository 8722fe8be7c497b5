package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"startupmap/internal"
	"startupmap/internal/util"
)

var ErrUnsupportedSource = errors.New("unsupported dataset type")

// ReadDataset loads raw records from a local file. inputType is one of json,
// xlsx or html.
func ReadDataset(inputType string, path string) ([]internal.RawRecord, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDataset(inputType, blob)
}

func ParseDataset(inputType string, blob []byte) ([]internal.RawRecord, error) {
	switch strings.ToLower(strings.TrimSpace(inputType)) {
	case "json":
		return ParseJSONDataset(blob)
	case "xlsx":
		return ParseXLSXDataset(blob)
	case "html":
		return ParseHTMLDataset(string(blob))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, inputType)
	}
}

// ParseJSONDataset accepts either a top-level array of records or an object
// wrapping the array under "records". Elements that are not objects are kept
// as nil so the normalizer can report them by index.
func ParseJSONDataset(blob []byte) ([]internal.RawRecord, error) {
	blob = bytes.TrimSpace(blob)
	var items []any
	if len(blob) > 0 && blob[0] == '{' {
		var wrapped struct {
			Records []any `json:"records"`
		}
		if err := json.Unmarshal(blob, &wrapped); err != nil {
			return nil, fmt.Errorf("parse dataset: %w", err)
		}
		items = wrapped.Records
	} else if err := json.Unmarshal(blob, &items); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	out := make([]internal.RawRecord, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		out = append(out, internal.RawRecord(obj))
	}
	return out, nil
}

// ParseXLSXDataset reads the first non-empty sheet. The first row holds field
// paths such as "Project.name" or "Team.current_employees".
func ParseXLSXDataset(content []byte) ([]internal.RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(rows) < 2 {
			continue
		}
		return RecordsFromRows(normalizeCells(rows[0]), rows[1:]), nil
	}
	return []internal.RawRecord{}, nil
}

// ParseHTMLDataset reads the first table with a header row and at least one
// data row.
func ParseHTMLDataset(html string) ([]internal.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var out []internal.RawRecord
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return true
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, util.NormalizeSpaces(cell.Text()))
		})

		body := [][]string{}
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, util.NormalizeSpaces(cell.Text()))
			})
			body = append(body, cells)
		})

		out = RecordsFromRows(headers, body)
		return false
	})
	if out == nil {
		out = []internal.RawRecord{}
	}
	return out, nil
}

// RecordsFromRows builds nested raw records from tabular data. Header cells
// are dotted paths; blank cells leave the field absent. Fully blank rows are
// skipped.
func RecordsFromRows(headers []string, rows [][]string) []internal.RawRecord {
	out := make([]internal.RawRecord, 0, len(rows))
	for _, row := range rows {
		record := internal.RawRecord{}
		filled := false
		for i, header := range headers {
			if header == "" || i >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[i])
			if value == "" {
				continue
			}
			setPath(record, strings.Split(header, "."), value)
			filled = true
		}
		if filled {
			out = append(out, record)
		}
	}
	return out
}

func setPath(dst map[string]any, path []string, value string) {
	for _, key := range path[:len(path)-1] {
		next, ok := dst[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			dst[key] = next
		}
		dst = next
	}
	dst[path[len(path)-1]] = value
}

func normalizeCells(row []string) []string {
	out := make([]string, 0, len(row))
	for _, c := range row {
		out = append(out, util.NormalizeSpaces(c))
	}
	return out
}

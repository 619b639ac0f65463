package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dataset is the raw tabular payload as uploaded. Rows are kept only for
// local statistics (anomaly detection); they never leave this process.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// ColumnProfile describes a single column without exposing any cell values.
type ColumnProfile struct {
	DType       string `json:"dtype"`
	NullCount   int    `json:"null_count"`
	UniqueCount int    `json:"unique_count"`
}

// Metadata is the profiling output shared with the rules engine and the
// advisory pipeline.
type Metadata struct {
	Columns      map[string]ColumnProfile `json:"columns"`
	TotalRows    int                      `json:"total_rows"`
	TotalColumns int                      `json:"total_columns"`
}

// ColumnNames returns the column names in map order; callers that need a
// stable order must sort.
func (m *Metadata) ColumnNames() []string {
	names := make([]string, 0, len(m.Columns))
	for name := range m.Columns {
		names = append(names, name)
	}
	return names
}

// LoadCSV reads a full CSV document with a header row.
func LoadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty file: no header row")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return &Dataset{
		Headers: headers,
		Rows:    records[1:],
	}, nil
}

// Profile extracts shape metadata from the dataset. Only aggregates are
// recorded; individual cell values are not copied into the result.
func Profile(ds *Dataset) *Metadata {
	columns := make(map[string]ColumnProfile, len(ds.Headers))

	for i, name := range ds.Headers {
		nulls := 0
		unique := make(map[string]struct{})
		integers, floats, dates := 0, 0, 0
		nonNull := 0

		for _, row := range ds.Rows {
			if i >= len(row) {
				nulls++
				continue
			}
			val := strings.TrimSpace(row[i])
			if val == "" {
				nulls++
				continue
			}
			nonNull++
			unique[val] = struct{}{}
			if _, err := strconv.ParseInt(val, 10, 64); err == nil {
				integers++
			} else if _, err := strconv.ParseFloat(val, 64); err == nil {
				floats++
			} else if looksLikeDate(val) {
				dates++
			}
		}

		columns[name] = ColumnProfile{
			DType:       inferDType(nonNull, integers, floats, dates),
			NullCount:   nulls,
			UniqueCount: len(unique),
		}
	}

	return &Metadata{
		Columns:      columns,
		TotalRows:    len(ds.Rows),
		TotalColumns: len(ds.Headers),
	}
}

// NumericColumn returns the parseable numeric values of a column, skipping
// blanks and non-numeric cells.
func (ds *Dataset) NumericColumn(name string) []float64 {
	idx := -1
	for i, h := range ds.Headers {
		if h == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	var values []float64
	for _, row := range ds.Rows {
		if idx >= len(row) {
			continue
		}
		val := strings.TrimSpace(row[idx])
		if val == "" {
			continue
		}
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			values = append(values, f)
		}
	}
	return values
}

func inferDType(nonNull, integers, floats, dates int) string {
	if nonNull == 0 {
		return "empty"
	}
	switch {
	case integers == nonNull:
		return "integer"
	case integers+floats == nonNull:
		return "float"
	case dates == nonNull:
		return "date"
	default:
		return "string"
	}
}

func looksLikeDate(val string) bool {
	// Cheap structural check: 2024-01-31, 31/01/2024, 01-31-2024.
	if len(val) < 8 || len(val) > 10 {
		return false
	}
	separators := 0
	digits := 0
	for _, r := range val {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '-' || r == '/':
			separators++
		default:
			return false
		}
	}
	return separators == 2 && digits >= 6
}

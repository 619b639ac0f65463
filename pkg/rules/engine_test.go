package rules

import (
	"strings"
	"testing"

	"finaudit-be/pkg/dataset"
)

func metadataOf(columns map[string]dataset.ColumnProfile, rows int) *dataset.Metadata {
	return &dataset.Metadata{
		Columns:      columns,
		TotalRows:    rows,
		TotalColumns: len(columns),
	}
}

func TestRunAllKeysAndWeights(t *testing.T) {
	md := metadataOf(map[string]dataset.ColumnProfile{
		"amount": {DType: "float"},
	}, 10)

	results := NewEngine(md).RunAll()

	wantWeights := map[string]float64{
		"completeness_missing_values": 2.0,
		"accuracy_amount_column":      1.5,
		"consistency_date_column":     1.0,
		"compliance_pii_exposure":     3.0,
		"volume_row_count":            0.5,
	}
	if len(results) != len(wantWeights) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(wantWeights))
	}
	for key, weight := range wantWeights {
		res, ok := results[key]
		if !ok {
			t.Errorf("missing rule %q", key)
			continue
		}
		if res.Weight != weight {
			t.Errorf("%s weight = %v, want %v", key, res.Weight, weight)
		}
	}
}

func TestMissingValuesRule(t *testing.T) {
	tests := []struct {
		name       string
		nulls      int
		rows       int
		wantPassed bool
		wantScore  float64
	}{
		{"no nulls", 0, 10, true, 100},
		{"few nulls", 1, 10, true, 95},       // 1 of 20 cells = 5%
		{"too many nulls", 5, 10, false, 75}, // 5 of 20 cells = 25%
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := metadataOf(map[string]dataset.ColumnProfile{
				"a": {DType: "integer", NullCount: tt.nulls},
				"b": {DType: "string"},
			}, tt.rows)

			res := NewEngine(md).RunAll()["completeness_missing_values"]
			if res.Passed != tt.wantPassed {
				t.Errorf("Passed = %v, want %v", res.Passed, tt.wantPassed)
			}
			if res.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", res.Score, tt.wantScore)
			}
		})
	}
}

func TestMissingValuesEmptyDataset(t *testing.T) {
	res := NewEngine(metadataOf(map[string]dataset.ColumnProfile{}, 0)).RunAll()["completeness_missing_values"]
	if res.Passed || res.Score != 0 {
		t.Errorf("empty dataset result = %+v", res)
	}
}

func TestAmountColumnRule(t *testing.T) {
	tests := []struct {
		name       string
		columns    map[string]dataset.ColumnProfile
		wantPassed bool
		wantScore  float64
	}{
		{"numeric amount", map[string]dataset.ColumnProfile{"amount": {DType: "float"}}, true, 100},
		{"integer amount", map[string]dataset.ColumnProfile{"total_amount": {DType: "integer"}}, true, 100},
		{"string amount", map[string]dataset.ColumnProfile{"amount": {DType: "string"}}, false, 40},
		{"no amount column", map[string]dataset.ColumnProfile{"merchant": {DType: "string"}}, false, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewEngine(metadataOf(tt.columns, 5)).RunAll()["accuracy_amount_column"]
			if res.Passed != tt.wantPassed || res.Score != tt.wantScore {
				t.Errorf("result = %+v, want passed=%v score=%v", res, tt.wantPassed, tt.wantScore)
			}
		})
	}
}

func TestDateColumnRule(t *testing.T) {
	tests := []struct {
		name       string
		columns    map[string]dataset.ColumnProfile
		wantPassed bool
		wantScore  float64
	}{
		{"clean date", map[string]dataset.ColumnProfile{"transaction_date": {DType: "date"}}, true, 100},
		{"mixed formats", map[string]dataset.ColumnProfile{"transaction_date": {DType: "string"}}, false, 70},
		{"no date column", map[string]dataset.ColumnProfile{"amount": {DType: "float"}}, false, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewEngine(metadataOf(tt.columns, 5)).RunAll()["consistency_date_column"]
			if res.Passed != tt.wantPassed || res.Score != tt.wantScore {
				t.Errorf("result = %+v, want passed=%v score=%v", res, tt.wantPassed, tt.wantScore)
			}
		})
	}
}

func TestPIIExposureRule(t *testing.T) {
	md := metadataOf(map[string]dataset.ColumnProfile{
		"ssn_number":    {DType: "string"},
		"user_password": {DType: "string"},
		"amount":        {DType: "float"},
	}, 5)

	res := NewEngine(md).RunAll()["compliance_pii_exposure"]
	if res.Passed || res.Score != 0 {
		t.Errorf("result = %+v, want hard fail", res)
	}
	// Exposed columns are listed in sorted order.
	if !strings.Contains(res.Details, "ssn_number, user_password") {
		t.Errorf("Details = %q", res.Details)
	}

	clean := NewEngine(metadataOf(map[string]dataset.ColumnProfile{"amount": {DType: "float"}}, 5)).RunAll()["compliance_pii_exposure"]
	if !clean.Passed || clean.Score != 100 {
		t.Errorf("clean result = %+v", clean)
	}
}

func TestRowCountRule(t *testing.T) {
	empty := NewEngine(metadataOf(map[string]dataset.ColumnProfile{"a": {}}, 0)).RunAll()["volume_row_count"]
	if empty.Passed || empty.Score != 0 {
		t.Errorf("empty result = %+v", empty)
	}

	filled := NewEngine(metadataOf(map[string]dataset.ColumnProfile{"a": {}}, 42)).RunAll()["volume_row_count"]
	if !filled.Passed || !strings.Contains(filled.Details, "42") {
		t.Errorf("filled result = %+v", filled)
	}
}

package data

import (
	"testing"
	"time"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

func TestDetectShape(t *testing.T) {
	tests := []struct {
		name     string
		input    []interface{}
		expected models.Shape
	}{
		{"empty", nil, models.ShapeTuples},
		{"records", []interface{}{map[string]interface{}{"a": 1.0}}, models.ShapeRecords},
		{"typed records", []interface{}{models.Record{"a": 1.0}}, models.ShapeRecords},
		{"tuples", []interface{}{[]interface{}{1.0, 2.0}}, models.ShapeTuples},
		{"scalars", []interface{}{1.0, 2.0}, models.ShapeTuples},
	}

	for _, tt := range tests {
		if got := DetectShape(tt.input); got != tt.expected {
			t.Errorf("%s: DetectShape = %q, expected %q", tt.name, got, tt.expected)
		}
	}
}

func TestNormalizeDropsMismatchedRows(t *testing.T) {
	input := []interface{}{
		map[string]interface{}{"x": "a"},
		[]interface{}{1.0},
		map[string]interface{}{"x": "b"},
	}
	ds := Normalize(input)
	if ds.Shape != models.ShapeRecords {
		t.Fatalf("Expected records, got %q", ds.Shape)
	}
	if len(ds.Records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(ds.Records))
	}

	tuples := Normalize([]interface{}{[]float64{1, 2}, 3.0, nil})
	if len(tuples.Tuples) != 2 {
		t.Fatalf("Expected 2 tuples, got %d", len(tuples.Tuples))
	}
	if len(tuples.Tuples[1]) != 1 || tuples.Tuples[1][0] != 3.0 {
		t.Errorf("Expected scalar to become a one-column tuple, got %v", tuples.Tuples[1])
	}
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name     string
		samples  []interface{}
		expected models.FieldKind
	}{
		{"numbers", []interface{}{1.0, int64(2), "3.5"}, models.KindNumeric},
		{"numbers with nulls", []interface{}{nil, 4.0}, models.KindNumeric},
		{"dates", []interface{}{"2024-01-01", "2024-01-02"}, models.KindTemporal},
		{"mixed date and text", []interface{}{"n/a", "2024-03-01"}, models.KindTemporal},
		{"time values", []interface{}{time.Now()}, models.KindTemporal},
		{"labels", []interface{}{"Jan", "Feb"}, models.KindCategorical},
		{"all null", []interface{}{nil, nil}, models.KindCategorical},
	}

	for _, tt := range tests {
		if got := InferKind(tt.samples); got != tt.expected {
			t.Errorf("%s: InferKind = %q, expected %q", tt.name, got, tt.expected)
		}
	}
}

func TestInferFields(t *testing.T) {
	ds := Normalize([]interface{}{
		map[string]interface{}{"date": "2024-01-01", "v": 1.0},
		map[string]interface{}{"date": "2024-01-02", "v": 2.0, "s": "A"},
	})
	fields := InferFields(ds)
	kinds := make(map[string]models.FieldKind)
	for _, f := range fields {
		kinds[f.Name] = f.Kind
	}
	if kinds["date"] != models.KindTemporal {
		t.Errorf("Expected date to be temporal, got %q", kinds["date"])
	}
	if kinds["v"] != models.KindNumeric {
		t.Errorf("Expected v to be numeric, got %q", kinds["v"])
	}
	if kinds["s"] != models.KindCategorical {
		t.Errorf("Expected s to be categorical, got %q", kinds["s"])
	}
	if fields[len(fields)-1].Name != "s" {
		t.Errorf("Expected late field last, got %q", fields[len(fields)-1].Name)
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		input    interface{}
		expected float64
		ok       bool
	}{
		{10.5, 10.5, true},
		{int64(-3), -3, true},
		{" 42 ", 42, true},
		{"NaN", 0, false},
		{"abc", 0, false},
		{true, 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := ToFloat(tt.input)
		if ok != tt.ok || got != tt.expected {
			t.Errorf("ToFloat(%v) = %v, %v; expected %v, %v", tt.input, got, ok, tt.expected, tt.ok)
		}
	}

	if ToFloatOrZero(-5.0) != 0 || ToFloatOrZero("x") != 0 || ToFloatOrZero(7.0) != 7 {
		t.Errorf("ToFloatOrZero did not clamp as expected")
	}
}

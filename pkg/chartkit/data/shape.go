// Package data classifies raw input collections and groups their records.
package data

import (
	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// DetectShape classifies data by its first element: a map means records,
// anything else (including an empty collection) means tuples.
func DetectShape(data []interface{}) models.Shape {
	if len(data) == 0 {
		return models.ShapeTuples
	}
	switch data[0].(type) {
	case map[string]interface{}, models.Record:
		return models.ShapeRecords
	}
	return models.ShapeTuples
}

// Normalize converts a raw collection into a Dataset. Rows that do not match
// the detected shape are dropped and logged; the input is never modified.
func Normalize(data []interface{}) models.Dataset {
	shape := DetectShape(data)
	ds := models.Dataset{Shape: shape}
	skipped := 0

	for _, row := range data {
		if shape == models.ShapeRecords {
			switch r := row.(type) {
			case models.Record:
				ds.Records = append(ds.Records, r)
			case map[string]interface{}:
				ds.Records = append(ds.Records, models.Record(r))
			default:
				skipped++
			}
			continue
		}

		if t, ok := toTuple(row); ok {
			ds.Tuples = append(ds.Tuples, t)
		} else {
			skipped++
		}
	}

	if skipped > 0 {
		logging.Logger().Warn("dropped rows not matching detected shape",
			"shape", shape, "skipped", skipped, "rows", len(data))
	}
	return ds
}

func toTuple(row interface{}) (models.Tuple, bool) {
	switch r := row.(type) {
	case models.Tuple:
		return r, true
	case []interface{}:
		return models.Tuple(r), true
	case []float64:
		t := make(models.Tuple, len(r))
		for i, v := range r {
			t[i] = v
		}
		return t, true
	case []string:
		t := make(models.Tuple, len(r))
		for i, v := range r {
			t[i] = v
		}
		return t, true
	case []int:
		t := make(models.Tuple, len(r))
		for i, v := range r {
			t[i] = float64(v)
		}
		return t, true
	case map[string]interface{}, models.Record, nil:
		return nil, false
	}
	// A bare scalar is a one-column tuple.
	return models.Tuple{row}, true
}

// maxInferSamples bounds the rows inspected by InferFields.
const maxInferSamples = 200

// InferFields returns the fields of ds in first-seen order with their kinds.
// Tuple columns are named by position ("0", "1", ...).
func InferFields(ds models.Dataset) []models.FieldSpec {
	var names []string
	samples := make(map[string][]interface{})

	n := ds.Len()
	if n > maxInferSamples {
		n = maxInferSamples
	}
	for i := 0; i < n; i++ {
		if ds.Shape == models.ShapeRecords {
			for _, name := range recordKeys(ds.Records[i]) {
				if _, seen := samples[name]; !seen {
					names = append(names, name)
					samples[name] = nil
				}
				samples[name] = append(samples[name], ds.Records[i][name])
			}
			continue
		}
		for col, v := range ds.Tuples[i] {
			name := columnName(col)
			if _, seen := samples[name]; !seen {
				names = append(names, name)
				samples[name] = nil
			}
			samples[name] = append(samples[name], v)
		}
	}

	fields := make([]models.FieldSpec, 0, len(names))
	for _, name := range names {
		fields = append(fields, models.FieldSpec{Name: name, Kind: InferKind(samples[name])})
	}
	return fields
}

// InferKind infers the semantic kind of a field from its samples. A field is
// numeric when every non-null sample coerces to a number, temporal when some
// sample fails numeric coercion and at least one parses as a date, and
// categorical otherwise.
func InferKind(samples []interface{}) models.FieldKind {
	nonNull := 0
	allNumeric := true
	anyDate := false
	for _, s := range samples {
		if s == nil {
			continue
		}
		nonNull++
		if _, ok := ToFloat(s); !ok {
			allNumeric = false
		}
		if _, ok := ParseTime(s); ok {
			anyDate = true
		}
	}
	switch {
	case nonNull == 0:
		return models.KindCategorical
	case allNumeric:
		return models.KindNumeric
	case anyDate:
		return models.KindTemporal
	}
	return models.KindCategorical
}

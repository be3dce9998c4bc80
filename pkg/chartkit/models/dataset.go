// Package models defines data structures shared by the chart compiler and the
// instance synchronization layer.
package models

// Shape classifies an input data collection.
type Shape string

const (
	// ShapeRecords is an ordered sequence of field-keyed records.
	ShapeRecords Shape = "records"
	// ShapeTuples is an ordered sequence of fixed-arity tuples.
	ShapeTuples Shape = "tuples"
)

// Record is a single row keyed by field name.
type Record map[string]interface{}

// Tuple is a single positional row.
type Tuple []interface{}

// Dataset is the normalized form of a raw input collection. Exactly one of
// Records or Tuples is populated, according to Shape.
type Dataset struct {
	// Shape is the detected shape of the input.
	Shape Shape `json:"shape"`
	// Records holds the rows when Shape is ShapeRecords.
	Records []Record `json:"records,omitempty"`
	// Tuples holds the rows when Shape is ShapeTuples.
	Tuples []Tuple `json:"tuples,omitempty"`
}

// Len returns the number of rows in the dataset.
func (d Dataset) Len() int {
	if d.Shape == ShapeRecords {
		return len(d.Records)
	}
	return len(d.Tuples)
}

// Field returns the value of field in row i. For tuple datasets the field is
// resolved through columns, which maps a field name to a tuple position.
func (d Dataset) Field(i int, field string, columns map[string]int) interface{} {
	if d.Shape == ShapeRecords {
		if i < 0 || i >= len(d.Records) {
			return nil
		}
		return d.Records[i][field]
	}
	if i < 0 || i >= len(d.Tuples) {
		return nil
	}
	col, ok := columns[field]
	if !ok || col < 0 || col >= len(d.Tuples[i]) {
		return nil
	}
	return d.Tuples[i][col]
}

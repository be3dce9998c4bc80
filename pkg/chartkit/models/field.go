package models

// FieldKind is the semantic type inferred for a field.
type FieldKind string

const (
	// KindNumeric is a field whose samples all coerce to numbers.
	KindNumeric FieldKind = "numeric"
	// KindCategorical is a field of discrete labels.
	KindCategorical FieldKind = "categorical"
	// KindTemporal is a field of dates or timestamps.
	KindTemporal FieldKind = "temporal"
)

// FieldSpec is a field name plus its inferred kind.
type FieldSpec struct {
	// Name is the record key (or column name for tuples).
	Name string `json:"name"`
	// Kind is the inferred semantic type.
	Kind FieldKind `json:"kind"`
}

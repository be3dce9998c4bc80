package models

// AxisType is the engine axis type.
type AxisType string

const (
	AxisCategory AxisType = "category"
	AxisValue    AxisType = "value"
	AxisTime     AxisType = "time"
	AxisLog      AxisType = "log"
)

// AxisSpec is a fully resolved axis description.
type AxisSpec struct {
	// Type is the axis type.
	Type AxisType `json:"type"`
	// Name is the axis title.
	Name string `json:"name,omitempty"`
	// Data holds the ordered category values for category axes.
	Data []interface{} `json:"data,omitempty"`
	// Min and Max bound value axes. Nil means auto-fit.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
	// Scale disables zero-anchoring of value axes.
	Scale bool `json:"scale"`
	// BoundaryGap controls padding at both ends of a category axis.
	BoundaryGap *bool `json:"boundary_gap,omitempty"`
	// Position is the axis side (left, right, top, bottom).
	Position string `json:"position,omitempty"`
	// Offset shifts additional axes on the same side.
	Offset int `json:"offset,omitempty"`
	// Inverse reverses the axis direction.
	Inverse bool `json:"inverse,omitempty"`
	// LabelColor and GridColor are derived from the theme.
	LabelColor string `json:"label_color,omitempty"`
	GridColor  string `json:"grid_color,omitempty"`
	// LineColor is the axis line color.
	LineColor string `json:"line_color,omitempty"`
	// Formatter is the axis label formatter, either a template or a JSFunc.
	Formatter interface{} `json:"formatter,omitempty"`
}

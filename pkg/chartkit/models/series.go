package models

// StyleSource records which precedence level an attribute was resolved from.
type StyleSource string

const (
	SourceSeries       StyleSource = "series"
	SourceGroup        StyleSource = "group"
	SourceChartDefault StyleSource = "chart"
	SourcePalette      StyleSource = "palette"

	// SourceEngineDefault marks a symbol or width no level set. The attribute
	// is left out of the specification and the engine's family default applies.
	SourceEngineDefault StyleSource = "engine"
)

// SeriesStyle holds the visual attributes of one series. Zero values mean
// "not set" at the level the style was supplied from.
type SeriesStyle struct {
	// Color is a CSS color string.
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	// Symbol is the engine marker symbol (circle, rect, triangle, ...).
	Symbol string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	// Width is the line width in pixels.
	Width float64 `json:"width,omitempty" yaml:"width,omitempty"`
}

// ResolvedStyle is a SeriesStyle with the source of every attribute.
type ResolvedStyle struct {
	SeriesStyle
	ColorSource  StyleSource `json:"color_source"`
	SymbolSource StyleSource `json:"symbol_source"`
	WidthSource  StyleSource `json:"width_source"`
}

// NormalizedSeries is the canonical representation of one plotted series.
type NormalizedSeries struct {
	// Name is the series display name.
	Name string `json:"name"`
	// Data holds plot-ready values: scalars (float64 or nil for gaps) or
	// []float64 tuples ([x,y] or [x,y,size]).
	Data []interface{} `json:"data"`
	// Raw holds the original absolute values when Data was rewritten (for
	// example by percent stacking). It is nil otherwise.
	Raw []interface{} `json:"raw,omitempty"`
	// Style is the resolved visual style.
	Style ResolvedStyle `json:"style"`
	// Stack is the stack group key; empty means unstacked.
	Stack string `json:"stack,omitempty"`
	// YAxisIndex is the index of the value axis the series is plotted on.
	YAxisIndex int `json:"y_axis_index"`
}

// Values returns the scalar values of the series as float64, with gaps and
// tuples reported as ok=false.
func (s NormalizedSeries) Values() ([]float64, []bool) {
	vals := make([]float64, len(s.Data))
	ok := make([]bool, len(s.Data))
	for i, d := range s.Data {
		if f, isFloat := d.(float64); isFloat {
			vals[i] = f
			ok[i] = true
		}
	}
	return vals, ok
}

package builder

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// AxisConfig is the caller-facing description of one axis.
type AxisConfig struct {
	Type        models.AxisType `json:"type,omitempty" yaml:"type,omitempty"`
	Name        string          `json:"name,omitempty" yaml:"name,omitempty"`
	Min         *float64        `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64        `json:"max,omitempty" yaml:"max,omitempty"`
	Scale       *bool           `json:"scale,omitempty" yaml:"scale,omitempty"`
	BoundaryGap *bool           `json:"boundaryGap,omitempty" yaml:"boundaryGap,omitempty"`
	Position    string          `json:"position,omitempty" yaml:"position,omitempty"`
	Inverse     bool            `json:"inverse,omitempty" yaml:"inverse,omitempty"`
	Formatter   string          `json:"formatter,omitempty" yaml:"formatter,omitempty"`
	LabelRotate float64         `json:"labelRotate,omitempty" yaml:"labelRotate,omitempty"`
}

// rangePadding is the fraction of the data span added around ranges that
// were widened to include zero.
const rangePadding = 0.1

// ValueRange returns the default bounds of a value axis. Ranges containing
// negative values are widened to include zero and padded; otherwise both
// bounds are nil and the engine auto-fits.
func ValueRange(values []float64) (min, max *float64) {
	if len(values) == 0 {
		return nil, nil
	}
	lo, hi := stats.Bounds(values)
	if lo >= 0 {
		return nil, nil
	}
	if hi < 0 {
		hi = 0
	}
	pad := (hi - lo) * rangePadding
	if pad == 0 {
		pad = math.Abs(lo) * rangePadding
	}
	step := niceStep(hi - lo + 2*pad)
	a := math.Floor((lo-pad)/step) * step
	b := math.Ceil((hi+pad)/step) * step
	return &a, &b
}

// niceStep returns a power of ten one decade below span, used to round
// padded bounds.
func niceStep(span float64) float64 {
	if span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return 1
	}
	return math.Pow(10, math.Floor(math.Log10(span))-1)
}

// ResolveValueAxis resolves a value axis over the values plotted on it.
// Explicit bounds win over the negative-range default; scale defaults to true.
func ResolveValueAxis(c AxisConfig, values []float64, theme ThemeColors) models.AxisSpec {
	spec := models.AxisSpec{
		Type:       models.AxisValue,
		Name:       c.Name,
		Scale:      c.Scale == nil || *c.Scale,
		Position:   c.Position,
		Inverse:    c.Inverse,
		LabelColor: theme.Text,
		GridColor:  theme.SplitLine,
		LineColor:  theme.AxisLine,
	}
	if c.Type == models.AxisLog {
		spec.Type = models.AxisLog
	}
	spec.Min, spec.Max = ValueRange(values)
	if c.Min != nil {
		spec.Min = c.Min
	}
	if c.Max != nil {
		spec.Max = c.Max
	}
	if c.Formatter != "" {
		spec.Formatter = c.Formatter
	}
	return spec
}

// ResolveCategoryAxis resolves a category axis. Line-family charts default
// to no boundary gap; an explicit BoundaryGap always wins.
func ResolveCategoryAxis(c AxisConfig, categories []interface{}, lineFamily bool, theme ThemeColors) models.AxisSpec {
	spec := models.AxisSpec{
		Type:       models.AxisCategory,
		Name:       c.Name,
		Data:       categories,
		Position:   c.Position,
		Inverse:    c.Inverse,
		LabelColor: theme.Text,
		GridColor:  theme.SplitLine,
		LineColor:  theme.AxisLine,
	}
	gap := !lineFamily
	spec.BoundaryGap = &gap
	if c.BoundaryGap != nil {
		spec.BoundaryGap = c.BoundaryGap
	}
	if c.Formatter != "" {
		spec.Formatter = c.Formatter
	}
	return spec
}

// ResolveTimeAxis resolves a time axis.
func ResolveTimeAxis(c AxisConfig, theme ThemeColors) models.AxisSpec {
	return models.AxisSpec{
		Type:       models.AxisTime,
		Name:       c.Name,
		Position:   c.Position,
		Inverse:    c.Inverse,
		Min:        c.Min,
		Max:        c.Max,
		LabelColor: theme.Text,
		GridColor:  theme.SplitLine,
		LineColor:  theme.AxisLine,
		Formatter:  nonEmpty(c.Formatter),
	}
}

// BuildAxis converts a resolved axis into its engine fragment.
func BuildAxis(spec models.AxisSpec, c AxisConfig) map[string]interface{} {
	axis := map[string]interface{}{
		"type": string(spec.Type),
		"axisLine": map[string]interface{}{
			"lineStyle": map[string]interface{}{"color": spec.LineColor},
		},
		"splitLine": map[string]interface{}{
			"lineStyle": map[string]interface{}{"color": spec.GridColor},
		},
	}

	label := map[string]interface{}{"color": spec.LabelColor}
	if spec.Formatter != nil {
		label["formatter"] = spec.Formatter
	}
	if c.LabelRotate != 0 {
		label["rotate"] = c.LabelRotate
	}
	axis["axisLabel"] = label

	if spec.Name != "" {
		axis["name"] = spec.Name
		axis["nameTextStyle"] = map[string]interface{}{"color": spec.LabelColor}
	}
	if spec.Type == models.AxisCategory {
		data := spec.Data
		if data == nil {
			data = []interface{}{}
		}
		axis["data"] = data
		if spec.BoundaryGap != nil {
			axis["boundaryGap"] = *spec.BoundaryGap
		}
	}
	if spec.Type == models.AxisValue || spec.Type == models.AxisLog {
		axis["scale"] = spec.Scale
	}
	if spec.Min != nil {
		axis["min"] = *spec.Min
	}
	if spec.Max != nil {
		axis["max"] = *spec.Max
	}
	if spec.Position != "" {
		axis["position"] = spec.Position
	}
	if spec.Offset != 0 {
		axis["offset"] = spec.Offset
	}
	if spec.Inverse {
		axis["inverse"] = true
	}
	return axis
}

func nonEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

package compiler

import (
	"math"
	"strconv"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/data"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// PieConfig holds pie-family settings.
type PieConfig struct {
	NameField    string `json:"nameField,omitempty" yaml:"nameField,omitempty"`
	ValueField   string `json:"valueField,omitempty" yaml:"valueField,omitempty"`
	Donut        bool   `json:"donut,omitempty" yaml:"donut,omitempty"`
	InnerRadius  string `json:"innerRadius,omitempty" yaml:"innerRadius,omitempty"`
	OuterRadius  string `json:"outerRadius,omitempty" yaml:"outerRadius,omitempty"`
	RoseType     string `json:"roseType,omitempty" yaml:"roseType,omitempty"`
	ShowPercent  *bool  `json:"showPercent,omitempty" yaml:"showPercent,omitempty"`
	SelectedMode string `json:"selectedMode,omitempty" yaml:"selectedMode,omitempty"`
}

// Slice is one pie slice after aggregation.
type Slice struct {
	Name  string
	Value float64
}

func (c PieConfig) radius() interface{} {
	outer := c.OuterRadius
	if outer == "" {
		outer = "70%"
	}
	inner := c.InnerRadius
	if inner == "" && c.Donut {
		inner = "40%"
	}
	if inner == "" {
		return outer
	}
	return []interface{}{inner, outer}
}

// AggregateSlices sums values sharing a name, in first-seen order. Negative
// and non-numeric values count as 0.
func AggregateSlices(names []string, values []interface{}) []Slice {
	var out []Slice
	pos := make(map[string]int)
	for i, name := range names {
		var v float64
		if i < len(values) {
			v = data.ToFloatOrZero(values[i])
		}
		if j, ok := pos[name]; ok {
			out[j].Value += v
			continue
		}
		pos[name] = len(out)
		out = append(out, Slice{Name: name, Value: v})
	}
	return out
}

// pieInput extracts slice names and raw values from any input variant.
func (e *env) pieInput() ([]string, []interface{}) {
	variant, ds := e.classify()
	var names []string
	var values []interface{}

	switch variant {
	case variantExplicit:
		in := e.cfg.Series[0]
		if len(e.cfg.Series) > 1 {
			e.warn(chartErrors.CodeInvalidData, "pie uses the first series only", "series", len(e.cfg.Series))
		}
		for i, d := range in.Data {
			switch v := d.(type) {
			case map[string]interface{}:
				names = append(names, data.Key(v[e.pieNameField()]))
				values = append(values, v[e.pieValueField()])
			case models.Record:
				names = append(names, data.Key(v[e.pieNameField()]))
				values = append(values, v[e.pieValueField()])
			case []interface{}:
				if len(v) < 2 {
					continue
				}
				names = append(names, data.Key(v[0]))
				values = append(values, v[1])
			default:
				name := strconv.Itoa(i + 1)
				if i < len(e.cfg.Categories) {
					name = data.Key(e.cfg.Categories[i])
				}
				names = append(names, name)
				values = append(values, v)
			}
		}
	case variantRecords, variantGrouped:
		nf, vf := e.pieNameField(), e.pieValueField()
		for _, r := range ds.Records {
			names = append(names, data.Key(r[nf]))
			values = append(values, r[vf])
		}
	case variantTuples:
		for _, t := range ds.Tuples {
			if len(t) < 2 {
				continue
			}
			names = append(names, data.Key(t[0]))
			values = append(values, t[1])
		}
	}
	return names, values
}

func (e *env) pieNameField() string {
	switch {
	case e.cfg.Pie.NameField != "":
		return e.cfg.Pie.NameField
	case e.cfg.XField != "":
		return e.cfg.XField
	}
	return "name"
}

func (e *env) pieValueField() string {
	switch {
	case e.cfg.Pie.ValueField != "":
		return e.cfg.Pie.ValueField
	case e.cfg.YField != "":
		return e.cfg.YField
	}
	return "value"
}

func compilePie(e *env) models.Option {
	names, values := e.pieInput()
	for i, v := range values {
		if f, ok := data.ToFloat(v); !ok || f < 0 || math.IsNaN(f) {
			if v != nil {
				e.warn(chartErrors.CodeInvalidData, "pie value clamped to 0", "slice", names[i], "value", v)
			}
		}
	}
	slices := AggregateSlices(names, values)

	items := make([]interface{}, len(slices))
	legend := make([]string, len(slices))
	for i, s := range slices {
		style := ResolveStyle(i, s.Name, models.SeriesStyle{}, e.cfg.SeriesStyles, models.SeriesStyle{}, e.palette)
		items[i] = map[string]interface{}{
			"name":      s.Name,
			"value":     s.Value,
			"itemStyle": map[string]interface{}{"color": style.Color},
		}
		legend[i] = s.Name
	}

	labelFormat := "{b}: {d}%"
	if e.cfg.Pie.ShowPercent != nil && !*e.cfg.Pie.ShowPercent {
		labelFormat = "{b}"
	}
	center := []interface{}{"50%", "50%"}
	if e.hasTitle() {
		center = []interface{}{"50%", "55%"}
	}

	name := e.cfg.Title
	if len(e.cfg.Series) > 0 && e.cfg.Series[0].Name != "" {
		name = e.cfg.Series[0].Name
	}
	series := map[string]interface{}{
		"type":   "pie",
		"name":   name,
		"radius": e.cfg.Pie.radius(),
		"center": center,
		"data":   items,
		"label": map[string]interface{}{
			"show":      e.cfg.ShowLabels || e.cfg.Pie.ShowPercent == nil || *e.cfg.Pie.ShowPercent,
			"formatter": labelFormat,
			"color":     e.theme.Text,
		},
		"emphasis": map[string]interface{}{
			"itemStyle": map[string]interface{}{
				"shadowBlur":    10,
				"shadowOffsetX": 0,
				"shadowColor":   "rgba(0, 0, 0, 0.5)",
			},
		},
	}
	if e.cfg.Pie.RoseType != "" {
		series["roseType"] = e.cfg.Pie.RoseType
	}
	if e.cfg.Pie.SelectedMode != "" {
		series["selectedMode"] = e.cfg.Pie.SelectedMode
	}

	opt := e.base()
	opt["series"] = []interface{}{series}
	opt["legend"] = builder.BuildLegend(e.cfg.Legend, legend, e.theme)
	opt["tooltip"] = builder.BuildTooltip(e.cfg.Tooltip, "item", "{a}<br/>{b}: {c} ({d}%)")
	return opt
}

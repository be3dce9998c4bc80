package compiler

import (
	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// axisOffset separates additional value axes placed on the same side.
const axisOffset = 60

// percentLabelFormatter reads the label precomputed into percent data items.
const percentLabelFormatter = models.JSFunc(`function (p) { return p.data && p.data.label != null ? p.data.label : p.value; }`)

// compileCartesian compiles the line and bar families.
func compileCartesian(e *env) models.Option {
	line := e.family == FamilyLine
	xType := e.cfg.XAxis.Type
	usePairs := xType == models.AxisValue || xType == models.AxisTime || xType == models.AxisLog
	percent := e.cfg.Percent() && !usePairs

	n := e.normalizeCartesian(usePairs)
	keys := e.stackKeys(n)
	if percent {
		e.applyPercent(n, keys)
	}

	axes := e.cfg.valueAxes()
	for i := range n.series {
		s := &n.series[i]
		meta := n.meta[i]
		s.Style = ResolveStyle(i, s.Name, meta.style, e.cfg.SeriesStyles, e.cfg.Style, e.palette)
		s.Stack = keys[i]
		s.YAxisIndex = e.axisIndex(s.Name, meta, len(axes))
	}

	valueAxes := e.valueAxisSpecs(n, axes, percent)
	var categoryAxis map[string]interface{}
	if usePairs {
		var spec models.AxisSpec
		if xType == models.AxisTime {
			spec = builder.ResolveTimeAxis(e.cfg.XAxis, e.theme)
		} else {
			spec = builder.ResolveValueAxis(e.cfg.XAxis, pairXs(n), e.theme)
			if xType == models.AxisLog {
				spec.Type = models.AxisLog
			}
		}
		categoryAxis = builder.BuildAxis(spec, e.cfg.XAxis)
	} else {
		spec := builder.ResolveCategoryAxis(e.cfg.XAxis, n.categories, line, e.theme)
		categoryAxis = builder.BuildAxis(spec, e.cfg.XAxis)
	}

	horizontal := e.cfg.Horizontal && !line
	series := make([]interface{}, len(n.series))
	for i, s := range n.series {
		series[i] = e.cartesianSeries(s, line, horizontal, percent)
	}

	opt := e.base()
	if horizontal {
		opt["yAxis"] = categoryAxis
		opt["xAxis"] = valueAxes
	} else {
		opt["xAxis"] = categoryAxis
		opt["yAxis"] = valueAxes
	}
	opt["series"] = series

	names := n.names()
	opt["legend"] = builder.BuildLegend(e.cfg.Legend, names, e.theme)
	var formatter interface{}
	if percent {
		formatter = builder.PercentTooltipFormatter(e.cfg.ShowAbsolute)
	}
	opt["tooltip"] = builder.BuildTooltip(e.cfg.Tooltip, "axis", formatter)
	opt["grid"] = builder.BuildGrid(e.cfg.Grid, e.hasTitle(), e.bottomLegend(len(names)), rightAxes(valueAxes))

	if e.cfg.DataZoom {
		axis := "x"
		if horizontal {
			axis = "y"
		}
		opt["dataZoom"] = builder.BuildDataZoom(axis)
	}
	if e.cfg.Brush {
		opt["brush"] = builder.BuildBrush()
	}
	return opt
}

// axisIndex resolves the value axis of a series: explicit index, then the
// name mapping, then 0. Out-of-range indexes fall back to 0.
func (e *env) axisIndex(name string, meta seriesMeta, count int) int {
	idx := 0
	if meta.yAxis != nil {
		idx = *meta.yAxis
	} else if i, ok := e.cfg.SeriesAxis[name]; ok {
		idx = i
	}
	if idx < 0 || idx >= count {
		e.warn(chartErrors.CodeInvalidData, "series axis index out of range", "series", name, "index", idx)
		return 0
	}
	return idx
}

// valueAxisSpecs resolves every value axis over the values plotted on it.
// The first axis sits on the left, later ones alternate right and left with
// growing offsets.
func (e *env) valueAxisSpecs(n *normalized, axes []builder.AxisConfig, percent bool) []interface{} {
	out := make([]interface{}, len(axes))
	for k, c := range axes {
		var values []float64
		for _, s := range n.series {
			if s.YAxisIndex != k {
				continue
			}
			vals, ok := s.Values()
			if pairsOf(s) {
				vals, ok = pairYs(s)
			}
			for i, v := range vals {
				if ok[i] {
					values = append(values, v)
				}
			}
		}

		spec := builder.ResolveValueAxis(c, values, e.theme)
		if percent {
			zero, one := 0.0, 1.0
			spec.Min, spec.Max = &zero, &one
			if c.Formatter == "" {
				spec.Formatter = builder.PercentAxisFormatter
			}
		}
		if spec.Position == "" {
			spec.Position = "left"
			if k%2 == 1 {
				spec.Position = "right"
			}
		}
		if k > 1 {
			spec.Offset = axisOffset * (k / 2)
		}
		out[k] = builder.BuildAxis(spec, c)
	}
	return out
}

func (e *env) cartesianSeries(s models.NormalizedSeries, line, horizontal, percent bool) map[string]interface{} {
	entry := map[string]interface{}{
		"name":      s.Name,
		"data":      s.Data,
		"itemStyle": map[string]interface{}{"color": s.Style.Color},
		"emphasis":  map[string]interface{}{"focus": "series"},
	}
	if horizontal {
		entry["xAxisIndex"] = s.YAxisIndex
	} else {
		entry["yAxisIndex"] = s.YAxisIndex
	}
	if s.Stack != "" {
		entry["stack"] = s.Stack
	}
	if s.Style.Symbol != "" {
		entry["symbol"] = s.Style.Symbol
	}

	if line {
		entry["type"] = "line"
		lineStyle := map[string]interface{}{"color": s.Style.Color}
		if s.Style.Width > 0 {
			lineStyle["width"] = s.Style.Width
		}
		entry["lineStyle"] = lineStyle
		entry["smooth"] = e.cfg.Smooth
		entry["showSymbol"] = e.cfg.ShowSymbol == nil || *e.cfg.ShowSymbol
		if e.cfg.Area || s.Stack != "" && percent {
			entry["areaStyle"] = map[string]interface{}{"opacity": 0.3}
		}
		if e.cfg.Step != "" {
			entry["step"] = e.cfg.Step
		}
		if e.cfg.ConnectNulls {
			entry["connectNulls"] = true
		}
	} else {
		entry["type"] = "bar"
		if e.cfg.BarWidth != "" {
			entry["barWidth"] = e.cfg.BarWidth
		}
		if e.cfg.BarGap != "" {
			entry["barGap"] = e.cfg.BarGap
		}
		if s.Style.Width > 0 {
			entry["itemStyle"].(map[string]interface{})["borderWidth"] = s.Style.Width
		}
	}

	if e.cfg.ShowLabels || percent && e.cfg.ShowAbsolute {
		label := map[string]interface{}{"show": true}
		switch {
		case s.Stack != "":
			label["position"] = "inside"
		case horizontal:
			label["position"] = "right"
		default:
			label["position"] = "top"
		}
		if percent {
			label["formatter"] = percentLabelFormatter
		}
		entry["label"] = label
	}
	return entry
}

// pairsOf reports whether the series holds [x, y] points.
func pairsOf(s models.NormalizedSeries) bool {
	for _, d := range s.Data {
		if d == nil {
			continue
		}
		_, ok := d.([]interface{})
		return ok
	}
	return false
}

// pairYs returns the y values of [x, y] points.
func pairYs(s models.NormalizedSeries) ([]float64, []bool) {
	vals := make([]float64, len(s.Data))
	ok := make([]bool, len(s.Data))
	for i, d := range s.Data {
		p, isPair := d.([]interface{})
		if !isPair || len(p) < 2 {
			continue
		}
		vals[i], ok[i] = floatOf(p[1])
	}
	return vals, ok
}

// pairXs returns every numeric x value of [x, y] points.
func pairXs(n *normalized) []float64 {
	var out []float64
	for _, s := range n.series {
		for _, d := range s.Data {
			p, isPair := d.([]interface{})
			if !isPair || len(p) == 0 {
				continue
			}
			if f, ok := floatOf(p[0]); ok {
				out = append(out, f)
			}
		}
	}
	return out
}

func floatOf(v interface{}) (float64, bool) {
	f, ok := numeric(v).(float64)
	return f, ok
}

// rightAxes counts value axes positioned on the right.
func rightAxes(axes []interface{}) int {
	count := 0
	for _, a := range axes {
		if m, ok := a.(map[string]interface{}); ok && m["position"] == "right" {
			count++
		}
	}
	return count
}

package compiler

import (
	"math"
	"strconv"

	"github.com/aclements/go-moremath/stats"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/data"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// ScatterConfig holds scatter-family settings.
type ScatterConfig struct {
	// SymbolSize is the marker size when no size field is plotted.
	SymbolSize float64 `json:"symbolSize,omitempty" yaml:"symbolSize,omitempty"`
	// MinSize and MaxSize bound markers scaled by the size field.
	MinSize float64 `json:"minSize,omitempty" yaml:"minSize,omitempty"`
	MaxSize float64 `json:"maxSize,omitempty" yaml:"maxSize,omitempty"`
	// Jitter is the chart-level jitter; series may override it.
	Jitter *Jitter `json:"jitter,omitempty" yaml:"jitter,omitempty"`
}

func (c ScatterConfig) symbolSize() float64 {
	if c.SymbolSize > 0 {
		return c.SymbolSize
	}
	return 10
}

func (c ScatterConfig) sizeRange() (float64, float64) {
	lo, hi := c.MinSize, c.MaxSize
	if lo <= 0 {
		lo = 6
	}
	if hi <= lo {
		hi = lo + 24
	}
	return lo, hi
}

// point is one scatter observation before shaping.
type point struct {
	x       interface{}
	y       float64
	size    float64
	hasSize bool
}

// pointSeries is a named set of points.
type pointSeries struct {
	name   string
	meta   seriesMeta
	points []point
}

// scatterFields resolves the x, y and size fields of a record dataset. Both
// axes default to numeric fields in field order.
func (e *env) scatterFields(ds models.Dataset) (x, y string) {
	x, y = e.cfg.XField, e.cfg.YField
	for _, f := range data.InferFields(ds) {
		if f.Kind != models.KindNumeric || f.Name == e.cfg.SizeField || f.Name == e.cfg.GroupField {
			continue
		}
		switch {
		case x == "":
			x = f.Name
		case y == "" && f.Name != x:
			y = f.Name
		}
	}
	return x, y
}

func recordPoint(r map[string]interface{}, x, y, size string) (point, bool) {
	yv, ok := data.ToFloat(r[y])
	if !ok || r[x] == nil {
		return point{}, false
	}
	p := point{x: r[x], y: yv}
	if size != "" {
		p.size, p.hasSize = data.ToFloat(r[size])
	}
	return p, true
}

func tuplePoint(t []interface{}) (point, bool) {
	if len(t) < 2 || t[0] == nil {
		return point{}, false
	}
	yv, ok := data.ToFloat(t[1])
	if !ok {
		return point{}, false
	}
	p := point{x: t[0], y: yv}
	if len(t) > 2 {
		p.size, p.hasSize = data.ToFloat(t[2])
	}
	return p, true
}

// pointInput normalizes any input variant into point series. Rows without a
// usable x or y are dropped.
func (e *env) pointInput() []pointSeries {
	variant, ds := e.classify()
	var out []pointSeries

	switch variant {
	case variantExplicit:
		for si, in := range e.cfg.Series {
			ps := pointSeries{
				name: in.Name,
				meta: seriesMeta{style: in.SeriesStyle, stack: in.Stack, yAxis: in.YAxisIndex, jitter: in.Jitter},
			}
			if ps.name == "" {
				ps.name = "Series " + strconv.Itoa(si+1)
			}
			for i, d := range in.Data {
				var p point
				var ok bool
				switch v := d.(type) {
				case map[string]interface{}:
					p, ok = recordPoint(v, e.cfg.XField, e.cfg.YField, e.cfg.SizeField)
				case models.Record:
					p, ok = recordPoint(v, e.cfg.XField, e.cfg.YField, e.cfg.SizeField)
				case []interface{}:
					p, ok = tuplePoint(v)
				case []float64:
					t := make([]interface{}, len(v))
					for j := range v {
						t[j] = v[j]
					}
					p, ok = tuplePoint(t)
				default:
					p, ok = tuplePoint([]interface{}{float64(i), v})
				}
				if ok {
					ps.points = append(ps.points, p)
				}
			}
			out = append(out, ps)
		}
	case variantGrouped:
		x, y := e.scatterFields(ds)
		groups := data.GroupByField(ds.Records, e.cfg.GroupField)
		for _, key := range groups.Keys {
			ps := pointSeries{name: key}
			for _, r := range groups.Members[key] {
				if p, ok := recordPoint(r, x, y, e.cfg.SizeField); ok {
					ps.points = append(ps.points, p)
				}
			}
			out = append(out, ps)
		}
	case variantRecords:
		x, y := e.scatterFields(ds)
		ps := pointSeries{name: y}
		for _, r := range ds.Records {
			if p, ok := recordPoint(r, x, y, e.cfg.SizeField); ok {
				ps.points = append(ps.points, p)
			}
		}
		out = append(out, ps)
	case variantTuples:
		ps := pointSeries{name: e.tupleSeriesName(0)}
		for _, t := range ds.Tuples {
			if p, ok := tuplePoint(t); ok {
				ps.points = append(ps.points, p)
			}
		}
		out = append(out, ps)
	}
	return out
}

// categoricalX reports whether any x value is not numeric, and returns the
// ordered distinct x values in that case.
func categoricalX(series []pointSeries) ([]interface{}, bool) {
	var rows []models.Record
	numericX := true
	for _, s := range series {
		for _, p := range s.points {
			if _, ok := data.ToFloat(p.x); !ok {
				numericX = false
			}
			rows = append(rows, models.Record{"x": p.x})
		}
	}
	if numericX {
		return nil, false
	}
	return data.UniqueOrdered(rows, "x"), true
}

func span(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	lo, hi := stats.Bounds(values)
	return hi - lo
}

// scatterTooltip shows the logical value of jittered points.
const scatterTooltip = models.JSFunc(`function (p) {
  var v = p.data && p.data.original ? p.data.original : p.value;
  return p.marker + p.seriesName + '<br/>' + v[0] + ', ' + v[1] + (v.length > 2 ? ' (' + v[2] + ')' : '');
}`)

func compileScatter(e *env) models.Option {
	input := e.pointInput()
	categories, catX := categoricalX(input)

	var xs, ys, sizes []float64
	for _, s := range input {
		for _, p := range s.points {
			if f, ok := data.ToFloat(p.x); ok {
				xs = append(xs, f)
			}
			ys = append(ys, p.y)
			if p.hasSize {
				sizes = append(sizes, p.size)
			}
		}
	}
	spanX, spanY := span(xs), span(ys)
	minSize, maxSize := e.cfg.Scatter.sizeRange()
	var sizeLo, sizeHi float64
	if len(sizes) > 0 {
		sizeLo, sizeHi = stats.Bounds(sizes)
	}

	series := make([]interface{}, len(input))
	names := make([]string, len(input))
	var catJitter float64
	for si, s := range input {
		style := ResolveStyle(si, s.name, s.meta.style, e.cfg.SeriesStyles, e.cfg.Style, e.palette)
		jit := e.cfg.Scatter.Jitter
		if s.meta.jitter != nil {
			jit = s.meta.jitter
		}
		w, h := jit.Amount()
		if catX {
			catJitter = math.Max(catJitter, w)
			w = 0
		}
		j := newJitterer(si, w, h, spanX, spanY)

		items := make([]interface{}, len(s.points))
		for i, p := range s.points {
			original := []interface{}{p.x, p.y}
			if p.hasSize {
				original = append(original, p.size)
			}
			value := append([]interface{}{}, original...)
			if w > 0 || h > 0 {
				dx, dy := j.offset()
				if x, ok := data.ToFloat(p.x); ok && !catX {
					value[0] = x + dx
				}
				value[1] = p.y + dy
			}
			item := map[string]interface{}{"value": value}
			if w > 0 || h > 0 {
				item["original"] = original
			}
			if p.hasSize {
				item["symbolSize"] = scaleSize(p.size, sizeLo, sizeHi, minSize, maxSize)
			}
			items[i] = item
		}

		entry := map[string]interface{}{
			"type":       "scatter",
			"name":       s.name,
			"data":       items,
			"symbolSize": e.cfg.Scatter.symbolSize(),
			"itemStyle":  map[string]interface{}{"color": style.Color},
			"emphasis":   map[string]interface{}{"focus": "series"},
		}
		if style.Symbol != "" {
			entry["symbol"] = style.Symbol
		}
		if s.meta.yAxis != nil {
			entry["yAxisIndex"] = *s.meta.yAxis
		}
		series[si] = entry
		names[si] = s.name
	}

	opt := e.base()
	if catX {
		axis := builder.BuildAxis(builder.ResolveCategoryAxis(e.cfg.XAxis, categories, false, e.theme), e.cfg.XAxis)
		if catJitter > 0 {
			axis["jitter"] = categoryJitter(catJitter)
		}
		opt["xAxis"] = axis
	} else {
		opt["xAxis"] = builder.BuildAxis(builder.ResolveValueAxis(e.cfg.XAxis, xs, e.theme), e.cfg.XAxis)
	}
	opt["yAxis"] = builder.BuildAxis(builder.ResolveValueAxis(e.cfg.YAxis, ys, e.theme), e.cfg.YAxis)
	opt["series"] = series
	opt["legend"] = builder.BuildLegend(e.cfg.Legend, names, e.theme)
	opt["tooltip"] = builder.BuildTooltip(e.cfg.Tooltip, "item", scatterTooltip)
	opt["grid"] = builder.BuildGrid(e.cfg.Grid, e.hasTitle(), e.bottomLegend(len(names)), 0)
	if e.cfg.DataZoom {
		opt["dataZoom"] = builder.BuildDataZoom("x")
	}
	if e.cfg.Brush {
		opt["brush"] = builder.BuildBrush()
	}
	return opt
}

// jitterPlotWidth is the nominal plot width, in pixels, that a jitter width
// fraction refers to on a category axis.
const jitterPlotWidth = 500

// categoryJitter converts a jitter width fraction into the engine's axis
// jitter amount in pixels. A category axis has no data span, so the engine
// spreads the points within each band.
func categoryJitter(w float64) float64 {
	return math.Max(1, math.Round(w*jitterPlotWidth))
}

// scaleSize maps v from [lo, hi] onto [small, large].
func scaleSize(v, lo, hi, small, large float64) float64 {
	if hi <= lo {
		return (small + large) / 2
	}
	return small + (v-lo)/(hi-lo)*(large-small)
}

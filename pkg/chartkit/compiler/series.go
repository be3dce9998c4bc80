package compiler

import (
	"strconv"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/data"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// inputVariant is the closed set of input shapes a compiler accepts. Every
// variant normalizes to the same []models.NormalizedSeries.
type inputVariant int

const (
	variantEmpty inputVariant = iota
	variantExplicit
	variantGrouped
	variantRecords
	variantTuples
)

func (v inputVariant) String() string {
	switch v {
	case variantExplicit:
		return "explicit"
	case variantGrouped:
		return "grouped"
	case variantRecords:
		return "records"
	case variantTuples:
		return "tuples"
	}
	return "empty"
}

// classify picks the input variant of the configuration.
func (e *env) classify() (inputVariant, models.Dataset) {
	if len(e.cfg.Series) > 0 {
		return variantExplicit, models.Dataset{}
	}
	ds := data.Normalize(e.cfg.Data)
	switch {
	case ds.Len() == 0:
		return variantEmpty, ds
	case ds.Shape == models.ShapeRecords && e.cfg.GroupField != "":
		return variantGrouped, ds
	case ds.Shape == models.ShapeRecords:
		return variantRecords, ds
	}
	return variantTuples, ds
}

// seriesMeta carries per-series settings that only explicit input supplies.
type seriesMeta struct {
	style  models.SeriesStyle
	stack  string
	yAxis  *int
	jitter *Jitter
}

// normalized is the canonical output of input normalization.
type normalized struct {
	variant inputVariant
	// categories is the ordered category axis; nil when points are pairs.
	categories []interface{}
	series     []models.NormalizedSeries
	meta       []seriesMeta
}

func (n *normalized) add(name string, values []interface{}, meta seriesMeta) {
	n.series = append(n.series, models.NormalizedSeries{Name: name, Data: values})
	n.meta = append(n.meta, meta)
}

// names returns the series names in order.
func (n *normalized) names() []string {
	out := make([]string, len(n.series))
	for i, s := range n.series {
		out[i] = s.Name
	}
	return out
}

// xField resolves the category/x field of a record dataset: the configured
// field, else the first non-numeric field, else the first field. The group
// and size fields are never picked.
func (e *env) xField(ds models.Dataset) string {
	if e.cfg.XField != "" {
		return e.cfg.XField
	}
	var fields []models.FieldSpec
	for _, f := range data.InferFields(ds) {
		if f.Name == e.cfg.GroupField || f.Name == e.cfg.SizeField {
			continue
		}
		fields = append(fields, f)
	}
	for _, f := range fields {
		if f.Kind != models.KindNumeric {
			return f.Name
		}
	}
	if len(fields) > 0 {
		return fields[0].Name
	}
	return ""
}

// yFields resolves the value fields of a record dataset: the configured
// list, else the single configured field, else every numeric field other
// than the x, group and size fields.
func (e *env) yFields(ds models.Dataset, x string) []string {
	if len(e.cfg.YFields) > 0 {
		return e.cfg.YFields
	}
	if e.cfg.YField != "" {
		return []string{e.cfg.YField}
	}
	var out []string
	for _, f := range data.InferFields(ds) {
		if f.Kind != models.KindNumeric {
			continue
		}
		if f.Name == x || f.Name == e.cfg.GroupField || f.Name == e.cfg.SizeField {
			continue
		}
		out = append(out, f.Name)
	}
	return out
}

// numeric coerces v to a float64 plot value, or nil for gaps.
func numeric(v interface{}) interface{} {
	if f, ok := data.ToFloat(v); ok {
		return f
	}
	return nil
}

// align places the yField value of every record at the position of its
// xField value in idx. The first record for a position wins.
func align(records []models.Record, xField, yField string, idx data.Index, n int) []interface{} {
	values := make([]interface{}, n)
	filled := make([]bool, n)
	for _, r := range records {
		i, ok := idx.Lookup(r[xField])
		if !ok || filled[i] {
			continue
		}
		values[i] = numeric(r[yField])
		filled[i] = true
	}
	return values
}

// pairs returns [x, y] points of records, skipping rows without an x.
func pairs(records []models.Record, xField, yField string) []interface{} {
	out := make([]interface{}, 0, len(records))
	for _, r := range records {
		x, ok := r[xField]
		if !ok || x == nil {
			continue
		}
		out = append(out, []interface{}{x, numeric(r[yField])})
	}
	return out
}

// normalizeCartesian normalizes the input of category/value charts. When
// usePairs is set the x values are kept in [x, y] points instead of being
// collapsed onto a category axis.
func (e *env) normalizeCartesian(usePairs bool) *normalized {
	variant, ds := e.classify()
	n := &normalized{variant: variant}

	switch variant {
	case variantExplicit:
		e.normalizeExplicit(n, usePairs)
	case variantGrouped:
		x := e.xField(ds)
		ys := e.yFields(ds, x)
		if len(ys) == 0 {
			e.warn(chartErrors.CodeInvalidData, "no value field for grouped data", "group", e.cfg.GroupField)
			return n
		}
		groups := data.GroupByField(ds.Records, e.cfg.GroupField)
		if !usePairs {
			n.categories = data.UniqueOrdered(ds.Records, x)
		}
		idx := data.NewIndex(n.categories)
		for _, key := range groups.Keys {
			members := groups.Members[key]
			if usePairs {
				n.add(key, pairs(members, x, ys[0]), seriesMeta{})
			} else {
				n.add(key, align(members, x, ys[0], idx, len(n.categories)), seriesMeta{})
			}
		}
	case variantRecords:
		x := e.xField(ds)
		ys := e.yFields(ds, x)
		if !usePairs {
			n.categories = data.UniqueOrdered(ds.Records, x)
		}
		idx := data.NewIndex(n.categories)
		for _, y := range ys {
			if usePairs {
				n.add(y, pairs(ds.Records, x, y), seriesMeta{})
			} else {
				n.add(y, align(ds.Records, x, y, idx, len(n.categories)), seriesMeta{})
			}
		}
	case variantTuples:
		e.normalizeTuples(n, ds, usePairs)
	}
	return n
}

// normalizeTuples treats column 0 as x and every further column as a series.
func (e *env) normalizeTuples(n *normalized, ds models.Dataset, usePairs bool) {
	width := 0
	for _, t := range ds.Tuples {
		if len(t) > width {
			width = len(t)
		}
	}
	if width < 2 {
		// A single column is one unnamed series over positional categories.
		values := make([]interface{}, len(ds.Tuples))
		for i, t := range ds.Tuples {
			if len(t) > 0 {
				values[i] = numeric(t[0])
			}
		}
		n.categories = positional(len(values))
		n.add(e.tupleSeriesName(0), values, seriesMeta{})
		return
	}

	xs := make([]models.Record, len(ds.Tuples))
	for i, t := range ds.Tuples {
		r := make(models.Record, len(t))
		for col, v := range t {
			r[strconv.Itoa(col)] = v
		}
		xs[i] = r
	}
	if !usePairs {
		n.categories = data.UniqueOrdered(xs, "0")
	}
	idx := data.NewIndex(n.categories)
	for col := 1; col < width; col++ {
		y := strconv.Itoa(col)
		if usePairs {
			n.add(e.tupleSeriesName(col-1), pairs(xs, "0", y), seriesMeta{})
		} else {
			n.add(e.tupleSeriesName(col-1), align(xs, "0", y, idx, len(n.categories)), seriesMeta{})
		}
	}
}

func (e *env) tupleSeriesName(i int) string {
	if i < len(e.cfg.YFields) {
		return e.cfg.YFields[i]
	}
	return "Series " + strconv.Itoa(i+1)
}

// normalizeExplicit normalizes pre-built series. Scalars are positional;
// tuples and records carry their own x value.
func (e *env) normalizeExplicit(n *normalized, usePairs bool) {
	type point struct {
		x       interface{}
		y       interface{}
		rest    []interface{}
		hasX    bool
		ordinal int
	}

	all := make([][]point, len(e.cfg.Series))
	var xs []models.Record
	longest := 0
	for si, in := range e.cfg.Series {
		for i, d := range in.Data {
			p := point{ordinal: i}
			switch v := d.(type) {
			case map[string]interface{}:
				p.x, p.y, p.hasX = v[e.cfg.XField], numeric(v[e.cfg.YField]), e.cfg.XField != ""
			case models.Record:
				p.x, p.y, p.hasX = v[e.cfg.XField], numeric(v[e.cfg.YField]), e.cfg.XField != ""
			case []interface{}:
				if len(v) >= 2 {
					p.x, p.y, p.hasX = v[0], numeric(v[1]), true
					p.rest = v[2:]
				} else if len(v) == 1 {
					p.y = numeric(v[0])
				}
			case []float64:
				if len(v) >= 2 {
					p.x, p.y, p.hasX = v[0], v[1], true
				} else if len(v) == 1 {
					p.y = v[0]
				}
			default:
				p.y = numeric(v)
			}
			if p.hasX && p.x != nil {
				xs = append(xs, models.Record{"x": p.x})
			}
			all[si] = append(all[si], p)
		}
		if len(in.Data) > longest {
			longest = len(in.Data)
		}
	}

	if !usePairs {
		switch {
		case len(e.cfg.Categories) > 0:
			n.categories = e.cfg.Categories
		case len(xs) > 0:
			n.categories = data.UniqueOrdered(xs, "x")
		default:
			n.categories = positional(longest)
		}
	}
	idx := data.NewIndex(n.categories)

	for si, in := range e.cfg.Series {
		meta := seriesMeta{style: in.SeriesStyle, stack: in.Stack, yAxis: in.YAxisIndex, jitter: in.Jitter}
		name := in.Name
		if name == "" {
			name = "Series " + strconv.Itoa(si+1)
		}

		if usePairs {
			values := make([]interface{}, 0, len(all[si]))
			for _, p := range all[si] {
				x := p.x
				if !p.hasX {
					x = float64(p.ordinal)
				}
				values = append(values, append([]interface{}{x, p.y}, p.rest...))
			}
			n.add(name, values, meta)
			continue
		}

		values := make([]interface{}, len(n.categories))
		filled := make([]bool, len(n.categories))
		for _, p := range all[si] {
			pos := p.ordinal
			if p.hasX {
				i, ok := idx.Lookup(p.x)
				if !ok {
					continue
				}
				pos = i
			}
			if pos >= len(values) || filled[pos] {
				continue
			}
			values[pos] = p.y
			filled[pos] = true
		}
		n.add(name, values, meta)
	}
}

// positional returns 1-based category labels for scalar-only input.
func positional(n int) []interface{} {
	out := make([]interface{}, n)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

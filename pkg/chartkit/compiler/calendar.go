package compiler

import (
	"sort"
	"time"

	"github.com/aclements/go-moremath/stats"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/data"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// dayLayout is the engine's calendar date format.
const dayLayout = "2006-01-02"

// defaultHeatColors is the visual-map ramp used when no colors are set.
var defaultHeatColors = []string{"#ebedf0", "#216e39"}

// heatSteps is the number of colors sampled from the ramp.
const heatSteps = 5

// CalendarConfig holds calendar-heatmap settings.
type CalendarConfig struct {
	DateField  string `json:"dateField,omitempty" yaml:"dateField,omitempty"`
	ValueField string `json:"valueField,omitempty" yaml:"valueField,omitempty"`
	// Range is a year ("2024"), a month ("2024-03") or a [start, end] pair.
	// It defaults to the span of the data.
	Range    []string `json:"range,omitempty" yaml:"range,omitempty"`
	CellSize int      `json:"cellSize,omitempty" yaml:"cellSize,omitempty"`
	Orient   string   `json:"orient,omitempty" yaml:"orient,omitempty"`
	// Colors are gradient stops of the visual map.
	Colors []string `json:"colors,omitempty" yaml:"colors,omitempty"`
}

// Day is the aggregated value of one calendar day.
type Day struct {
	Date  string
	Value float64
}

// AggregateDays sums values per calendar day, sorted by date. Rows whose
// date does not parse are counted in skipped.
func AggregateDays(records []models.Record, dateField, valueField string) (days []Day, skipped int) {
	sums := make(map[string]float64)
	for _, r := range records {
		t, ok := data.ParseTime(r[dateField])
		if !ok {
			skipped++
			continue
		}
		day := t.Format(dayLayout)
		sums[day] += data.ToFloatOrZero(r[valueField])
	}
	for d, v := range sums {
		days = append(days, Day{Date: d, Value: v})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, skipped
}

// calendarRange returns the engine range of the days: a single year when
// they fall in one year, else the first and last day.
func calendarRange(days []Day) interface{} {
	if len(days) == 0 {
		return time.Now().Format("2006")
	}
	first, last := days[0].Date, days[len(days)-1].Date
	if first[:4] == last[:4] {
		return first[:4]
	}
	return []interface{}{first, last}
}

const calendarTooltip = models.JSFunc(`function (p) { return p.value[0] + ': ' + p.value[1]; }`)

func compileCalendar(e *env) models.Option {
	c := e.cfg.Calendar
	dateField, valueField := fieldOr(c.DateField, "date"), fieldOr(c.ValueField, "value")
	days, skipped := AggregateDays(e.tabular(dateField, valueField), dateField, valueField)
	if skipped > 0 {
		e.warn(chartErrors.CodeInvalidData, "rows with unparseable dates skipped", "count", skipped)
	}

	points := make([]interface{}, len(days))
	values := make([]float64, len(days))
	for i, d := range days {
		points[i] = []interface{}{d.Date, d.Value}
		values[i] = d.Value
	}
	lo, hi := 0.0, 1.0
	if len(values) > 0 {
		lo, hi = stats.Bounds(values)
		if hi == lo {
			hi = lo + 1
		}
	}

	var rng interface{} = calendarRange(days)
	switch len(c.Range) {
	case 0:
	case 1:
		rng = c.Range[0]
	default:
		rng = []interface{}{c.Range[0], c.Range[1]}
	}

	stops := c.Colors
	if len(stops) == 0 {
		stops = defaultHeatColors
	}
	cell := c.CellSize
	if cell <= 0 {
		cell = 18
	}
	top := 60
	if e.hasTitle() {
		top = 90
	}

	opt := e.base()
	opt["calendar"] = map[string]interface{}{
		"top":      top,
		"left":     40,
		"right":    30,
		"range":    rng,
		"cellSize": []interface{}{"auto", cell},
		"orient":   fieldOr(c.Orient, "horizontal"),
		"itemStyle": map[string]interface{}{
			"borderWidth": 0.5,
			"borderColor": e.theme.Background,
		},
		"splitLine":  map[string]interface{}{"lineStyle": map[string]interface{}{"color": e.theme.AxisLine}},
		"dayLabel":   map[string]interface{}{"color": e.theme.Text},
		"monthLabel": map[string]interface{}{"color": e.theme.Text},
		"yearLabel":  map[string]interface{}{"color": e.theme.SubText},
	}
	opt["visualMap"] = map[string]interface{}{
		"min":        lo,
		"max":        hi,
		"calculable": true,
		"orient":     "horizontal",
		"left":       "center",
		"bottom":     10,
		"inRange":    map[string]interface{}{"color": toList(builder.Gradient(stops, heatSteps))},
		"textStyle":  map[string]interface{}{"color": e.theme.Text},
	}
	opt["series"] = []interface{}{
		map[string]interface{}{
			"type":             "heatmap",
			"coordinateSystem": "calendar",
			"data":             points,
		},
	}
	opt["tooltip"] = builder.BuildTooltip(e.cfg.Tooltip, "item", calendarTooltip)
	return opt
}

func toList(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

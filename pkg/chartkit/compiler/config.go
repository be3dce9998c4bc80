// Package compiler turns declarative chart configurations into complete
// engine-native rendering specifications, one compiler per chart family.
package compiler

import (
	"fmt"
	"strings"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// Family is a chart family.
type Family string

const (
	FamilyLine       Family = "line"
	FamilyBar        Family = "bar"
	FamilyPie        Family = "pie"
	FamilyScatter    Family = "scatter"
	FamilyCluster    Family = "cluster"
	FamilyRegression Family = "regression"
	FamilySankey     Family = "sankey"
	FamilyCalendar   Family = "calendar-heatmap"
	FamilyGantt      Family = "gantt"
)

// Families returns every supported family.
func Families() []Family {
	return []Family{
		FamilyLine, FamilyBar, FamilyPie, FamilyScatter, FamilyCluster,
		FamilyRegression, FamilySankey, FamilyCalendar, FamilyGantt,
	}
}

// ParseFamily parses a family name. "calendar" is accepted for
// FamilyCalendar.
func ParseFamily(s string) (Family, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "calendar" || name == "heatmap" {
		return FamilyCalendar, nil
	}
	for _, f := range Families() {
		if string(f) == name {
			return f, nil
		}
	}
	names := make([]string, 0, len(Families()))
	for _, f := range Families() {
		names = append(names, string(f))
	}
	return "", chartErrors.New(chartErrors.CodeUnknownFamily, fmt.Sprintf("unknown chart family %q", s)).
		Suggest("use one of " + strings.Join(names, ", "))
}

// SeriesInput is one explicitly supplied series.
type SeriesInput struct {
	Name string `json:"name" yaml:"name"`
	// Data holds scalars, [x,y] / [x,y,size] tuples, or records read
	// through Config.XField and Config.YField.
	Data               []interface{} `json:"data" yaml:"data"`
	models.SeriesStyle `yaml:",inline"`
	// Stack overrides the stack group of the series.
	Stack string `json:"stack,omitempty" yaml:"stack,omitempty"`
	// YAxisIndex assigns the series to a value axis.
	YAxisIndex *int `json:"yAxisIndex,omitempty" yaml:"yAxisIndex,omitempty"`
	// Jitter overrides the chart-level scatter jitter.
	Jitter *Jitter `json:"jitter,omitempty" yaml:"jitter,omitempty"`
}

// Config is the declarative description of a chart. Every family reads the
// shared fields; family-specific knobs live in the nested blocks.
type Config struct {
	builder.BaseConfig `yaml:",inline"`

	Theme  builder.Theme `json:"theme,omitempty" yaml:"theme,omitempty"`
	Locale string        `json:"locale,omitempty" yaml:"locale,omitempty"`

	// Data is a raw collection of records or tuples.
	Data []interface{} `json:"data,omitempty" yaml:"data,omitempty"`
	// Series are explicit pre-built series. They take precedence over Data.
	Series []SeriesInput `json:"series,omitempty" yaml:"series,omitempty"`
	// Categories fixes the category axis for explicit scalar series.
	Categories []interface{} `json:"categories,omitempty" yaml:"categories,omitempty"`

	XField     string   `json:"xField,omitempty" yaml:"xField,omitempty"`
	YField     string   `json:"yField,omitempty" yaml:"yField,omitempty"`
	YFields    []string `json:"yFields,omitempty" yaml:"yFields,omitempty"`
	GroupField string   `json:"groupField,omitempty" yaml:"groupField,omitempty"`
	SizeField  string   `json:"sizeField,omitempty" yaml:"sizeField,omitempty"`

	XAxis      builder.AxisConfig   `json:"xAxis,omitempty" yaml:"xAxis,omitempty"`
	YAxis      builder.AxisConfig   `json:"yAxis,omitempty" yaml:"yAxis,omitempty"`
	YAxes      []builder.AxisConfig `json:"yAxes,omitempty" yaml:"yAxes,omitempty"`
	SeriesAxis map[string]int       `json:"seriesAxis,omitempty" yaml:"seriesAxis,omitempty"`

	Legend  builder.LegendConfig  `json:"legend,omitempty" yaml:"legend,omitempty"`
	Tooltip builder.TooltipConfig `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
	Grid    builder.GridConfig    `json:"grid,omitempty" yaml:"grid,omitempty"`

	// Style is the chart-level default series style.
	Style models.SeriesStyle `json:"style,omitempty" yaml:"style,omitempty"`
	// SeriesStyles overrides styles by series, group or slice name.
	SeriesStyles map[string]models.SeriesStyle `json:"seriesStyles,omitempty" yaml:"seriesStyles,omitempty"`

	Smooth       bool   `json:"smooth,omitempty" yaml:"smooth,omitempty"`
	Area         bool   `json:"area,omitempty" yaml:"area,omitempty"`
	ShowSymbol   *bool  `json:"showSymbol,omitempty" yaml:"showSymbol,omitempty"`
	Step         string `json:"step,omitempty" yaml:"step,omitempty"`
	ConnectNulls bool   `json:"connectNulls,omitempty" yaml:"connectNulls,omitempty"`

	Horizontal bool   `json:"horizontal,omitempty" yaml:"horizontal,omitempty"`
	BarWidth   string `json:"barWidth,omitempty" yaml:"barWidth,omitempty"`
	BarGap     string `json:"barGap,omitempty" yaml:"barGap,omitempty"`

	Stacked      bool `json:"stacked,omitempty" yaml:"stacked,omitempty"`
	StackPercent bool `json:"stackPercent,omitempty" yaml:"stackPercent,omitempty"`
	ShowAbsolute bool `json:"showAbsolute,omitempty" yaml:"showAbsolute,omitempty"`
	ShowLabels   bool `json:"showLabels,omitempty" yaml:"showLabels,omitempty"`

	DataZoom bool `json:"dataZoom,omitempty" yaml:"dataZoom,omitempty"`
	Brush    bool `json:"brush,omitempty" yaml:"brush,omitempty"`

	Pie        PieConfig        `json:"pie,omitempty" yaml:"pie,omitempty"`
	Scatter    ScatterConfig    `json:"scatter,omitempty" yaml:"scatter,omitempty"`
	Cluster    ClusterConfig    `json:"cluster,omitempty" yaml:"cluster,omitempty"`
	Regression RegressionConfig `json:"regression,omitempty" yaml:"regression,omitempty"`
	Sankey     SankeyConfig     `json:"sankey,omitempty" yaml:"sankey,omitempty"`
	Calendar   CalendarConfig   `json:"calendar,omitempty" yaml:"calendar,omitempty"`
	Gantt      GanttConfig      `json:"gantt,omitempty" yaml:"gantt,omitempty"`

	// Override is shallow-merged over the compiled specification last.
	Override map[string]interface{} `json:"option,omitempty" yaml:"option,omitempty"`
}

// Percent reports whether percent stacking is in effect.
func (c Config) Percent() bool {
	return c.StackPercent
}

// IsStacked reports whether series share stack groups.
func (c Config) IsStacked() bool {
	return c.Stacked || c.StackPercent
}

// valueAxes returns the configured value axes, at least one.
func (c Config) valueAxes() []builder.AxisConfig {
	if len(c.YAxes) > 0 {
		return c.YAxes
	}
	return []builder.AxisConfig{c.YAxis}
}

package compiler

import (
	"strconv"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// RegressionConfig holds regression-family settings.
type RegressionConfig struct {
	Method RegressionMethod `json:"method,omitempty" yaml:"method,omitempty"`
	// Order is the polynomial degree; 2 when unset.
	Order int `json:"order,omitempty" yaml:"order,omitempty"`
	// ShowFormula fits the model locally and labels the trend line with
	// its equation and R².
	ShowFormula bool `json:"showFormula,omitempty" yaml:"showFormula,omitempty"`
}

func (c RegressionConfig) method() RegressionMethod {
	if c.Method == "" {
		return MethodLinear
	}
	return c.Method
}

func (c RegressionConfig) order() int {
	if c.Order > 0 {
		return c.Order
	}
	return 2
}

func compileRegression(e *env) models.Option {
	rows, xs, ys := e.matrix()
	method := e.cfg.Regression.method()

	config := map[string]interface{}{"method": string(method)}
	if method == MethodPolynomial {
		config["order"] = e.cfg.Regression.order()
	}

	points := ResolveStyle(0, "data", models.SeriesStyle{}, e.cfg.SeriesStyles, e.cfg.Style, e.palette)
	trend := ResolveStyle(1, "trend", models.SeriesStyle{}, e.cfg.SeriesStyles, models.SeriesStyle{}, e.palette)

	trendName := "trend"
	var label map[string]interface{}
	if e.cfg.Regression.ShowFormula && len(rows) > 0 {
		f, err := FitRegression(method, e.cfg.Regression.order(), xs, ys)
		if err != nil {
			e.log.Warn("regression formula skipped", "error", err)
		} else {
			formula := f.Formula()
			trendName = formula
			label = map[string]interface{}{
				"show":      true,
				"position":  "end",
				"color":     e.theme.Text,
				"formatter": formula + "\nR² = " + strconv.FormatFloat(f.RSquared, 'f', 4, 64),
			}
		}
	}

	trendWidth := 2.0
	if trend.Width > 0 {
		trendWidth = trend.Width
	}
	line := map[string]interface{}{
		"type":         "line",
		"name":         trendName,
		"datasetIndex": 1,
		"smooth":       true,
		"symbolSize":   0.1,
		"symbol":       "circle",
		"encode":       map[string]interface{}{"x": 0, "y": 1},
		"lineStyle":    map[string]interface{}{"color": trend.Color, "width": trendWidth},
		"itemStyle":    map[string]interface{}{"color": trend.Color},
	}
	if label != nil {
		line["endLabel"] = label
	}

	scatter := map[string]interface{}{
		"type":         "scatter",
		"name":         "data",
		"datasetIndex": 0,
		"symbolSize":   e.cfg.Scatter.symbolSize(),
		"itemStyle":    map[string]interface{}{"color": points.Color},
	}
	if points.Symbol != "" {
		scatter["symbol"] = points.Symbol
	}

	opt := e.base()
	opt["dataset"] = pipeline(rows, transformRegression, config)
	opt["xAxis"] = builder.BuildAxis(builder.ResolveValueAxis(e.cfg.XAxis, xs, e.theme), e.cfg.XAxis)
	opt["yAxis"] = builder.BuildAxis(builder.ResolveValueAxis(e.cfg.YAxis, ys, e.theme), e.cfg.YAxis)
	opt["series"] = []interface{}{scatter, line}
	opt["legend"] = builder.BuildLegend(e.cfg.Legend, []string{"data", trendName}, e.theme)
	opt["tooltip"] = builder.BuildTooltip(e.cfg.Tooltip, "axis", nil)
	opt["grid"] = builder.BuildGrid(e.cfg.Grid, e.hasTitle(), e.bottomLegend(2), 0)
	return opt
}

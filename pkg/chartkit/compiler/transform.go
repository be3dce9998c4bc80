package compiler

import (
	"github.com/ukaji3/chartkit-go/pkg/chartkit/data"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
)

// Engine-side statistical transforms. The engine must have the matching
// transforms registered (echarts-stat).
const (
	transformClustering = "ecStat:clustering"
	transformRegression = "ecStat:regression"
)

// matrix projects every point of the input into a 2-column numeric matrix.
// Points with a non-numeric x are dropped and logged.
func (e *env) matrix() (rows []interface{}, xs, ys []float64) {
	dropped := 0
	for _, s := range e.pointInput() {
		for _, p := range s.points {
			x, ok := data.ToFloat(p.x)
			if !ok {
				dropped++
				continue
			}
			rows = append(rows, []interface{}{x, p.y})
			xs = append(xs, x)
			ys = append(ys, p.y)
		}
	}
	if dropped > 0 {
		e.warn(chartErrors.CodeInvalidData, "non-numeric points dropped", "dropped", dropped)
	}
	if rows == nil {
		rows = []interface{}{}
	}
	return rows, xs, ys
}

// pipeline returns the raw-source stage followed by the derived stage
// produced by the named transform.
func pipeline(rows []interface{}, transform string, config map[string]interface{}) []interface{} {
	return []interface{}{
		map[string]interface{}{"source": rows},
		map[string]interface{}{
			"transform": map[string]interface{}{
				"type":   transform,
				"config": config,
			},
		},
	}
}

package compiler

import (
	"strconv"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// ClusterConfig holds cluster-family settings.
type ClusterConfig struct {
	// ClusterCount is the number of clusters; 3 when unset.
	ClusterCount int `json:"clusterCount,omitempty" yaml:"clusterCount,omitempty"`
	// Dimensions selects the matrix columns clustered on; both by default.
	Dimensions []int `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

func (c ClusterConfig) count() int {
	if c.ClusterCount > 0 {
		return c.ClusterCount
	}
	return 3
}

// clusterDimension is the column of the derived stage holding the cluster
// index of each row.
const clusterDimension = 2

func compileCluster(e *env) models.Option {
	rows, xs, ys := e.matrix()
	count := e.cfg.Cluster.count()

	config := map[string]interface{}{
		"clusterCount":                count,
		"outputType":                  "single",
		"outputClusterIndexDimension": clusterDimension,
	}
	if len(e.cfg.Cluster.Dimensions) > 0 {
		dims := make([]interface{}, len(e.cfg.Cluster.Dimensions))
		for i, d := range e.cfg.Cluster.Dimensions {
			dims[i] = d
		}
		config["dimensions"] = dims
	}

	colors := builder.ExtendPalette(e.palette, count)
	pieces := make([]interface{}, count)
	names := make([]string, count)
	for i := 0; i < count; i++ {
		names[i] = "Cluster " + strconv.Itoa(i+1)
		style := ResolveStyle(i, names[i], models.SeriesStyle{}, e.cfg.SeriesStyles, models.SeriesStyle{}, colors)
		pieces[i] = map[string]interface{}{
			"value": i,
			"label": names[i],
			"color": style.Color,
		}
	}

	name := e.cfg.Title
	if name == "" {
		name = "clusters"
	}
	series := map[string]interface{}{
		"type":         "scatter",
		"name":         name,
		"datasetIndex": 1,
		"encode":       map[string]interface{}{"x": 0, "y": 1, "tooltip": []interface{}{0, 1}},
		"symbolSize":   e.cfg.Scatter.symbolSize(),
		"itemStyle":    map[string]interface{}{"borderColor": e.theme.Background},
	}

	opt := e.base()
	opt["dataset"] = pipeline(rows, transformClustering, config)
	opt["visualMap"] = map[string]interface{}{
		"type":      "piecewise",
		"top":       "middle",
		"left":      10,
		"dimension": clusterDimension,
		"pieces":    pieces,
		"textStyle": map[string]interface{}{"color": e.theme.Text},
	}
	opt["xAxis"] = builder.BuildAxis(builder.ResolveValueAxis(e.cfg.XAxis, xs, e.theme), e.cfg.XAxis)
	opt["yAxis"] = builder.BuildAxis(builder.ResolveValueAxis(e.cfg.YAxis, ys, e.theme), e.cfg.YAxis)
	opt["series"] = []interface{}{series}
	opt["tooltip"] = builder.BuildTooltip(e.cfg.Tooltip, "item", nil)
	grid := builder.BuildGrid(e.cfg.Grid, e.hasTitle(), false, 0)
	if e.cfg.Grid.Left == "" {
		grid["left"] = 120
	}
	opt["grid"] = grid
	return opt
}

package compiler

import (
	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/data"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// SankeyConfig holds sankey-family settings.
type SankeyConfig struct {
	SourceField string `json:"sourceField,omitempty" yaml:"sourceField,omitempty"`
	TargetField string `json:"targetField,omitempty" yaml:"targetField,omitempty"`
	ValueField  string `json:"valueField,omitempty" yaml:"valueField,omitempty"`
	Orient      string `json:"orient,omitempty" yaml:"orient,omitempty"`
	NodeAlign   string `json:"nodeAlign,omitempty" yaml:"nodeAlign,omitempty"`
	NodeWidth   int    `json:"nodeWidth,omitempty" yaml:"nodeWidth,omitempty"`
	NodeGap     int    `json:"nodeGap,omitempty" yaml:"nodeGap,omitempty"`
}

// Link is a weighted edge between two nodes.
type Link struct {
	Source string
	Target string
	Value  float64
}

// Graph is a node/edge view of flat flow records.
type Graph struct {
	// Nodes are the distinct source and target names in first-seen order.
	Nodes []string
	Links []Link
	// SelfLoops counts rows skipped because source equals target.
	SelfLoops int
}

// BuildGraph lifts flow records into a graph. Duplicate source/target pairs
// are summed; self-loops are skipped; negative values count as 0.
func BuildGraph(records []models.Record, source, target, value string) Graph {
	var g Graph
	nodes := make(map[string]struct{})
	links := make(map[[2]string]int)
	addNode := func(n string) {
		if _, ok := nodes[n]; !ok {
			nodes[n] = struct{}{}
			g.Nodes = append(g.Nodes, n)
		}
	}

	for _, r := range records {
		if r[source] == nil || r[target] == nil {
			continue
		}
		s, t := data.Key(r[source]), data.Key(r[target])
		if s == t {
			g.SelfLoops++
			continue
		}
		addNode(s)
		addNode(t)
		v := data.ToFloatOrZero(r[value])
		key := [2]string{s, t}
		if i, ok := links[key]; ok {
			g.Links[i].Value += v
			continue
		}
		links[key] = len(g.Links)
		g.Links = append(g.Links, Link{Source: s, Target: t, Value: v})
	}
	return g
}

func compileSankey(e *env) models.Option {
	c := e.cfg.Sankey
	src, tgt, val := fieldOr(c.SourceField, "source"), fieldOr(c.TargetField, "target"), fieldOr(c.ValueField, "value")
	g := BuildGraph(e.tabular(src, tgt, val), src, tgt, val)
	if g.SelfLoops > 0 {
		e.warn(chartErrors.CodeInvalidData, "self-loop links skipped", "count", g.SelfLoops)
	}

	nodes := make([]interface{}, len(g.Nodes))
	for i, n := range g.Nodes {
		style := ResolveStyle(i, n, models.SeriesStyle{}, e.cfg.SeriesStyles, models.SeriesStyle{}, e.palette)
		nodes[i] = map[string]interface{}{
			"name":      n,
			"itemStyle": map[string]interface{}{"color": style.Color},
		}
	}
	links := make([]interface{}, len(g.Links))
	for i, l := range g.Links {
		links[i] = map[string]interface{}{"source": l.Source, "target": l.Target, "value": l.Value}
	}

	series := map[string]interface{}{
		"type":     "sankey",
		"data":     nodes,
		"links":    links,
		"orient":   fieldOr(c.Orient, "horizontal"),
		"emphasis": map[string]interface{}{"focus": "adjacency"},
		"lineStyle": map[string]interface{}{
			"color":     "gradient",
			"curveness": 0.5,
		},
		"label": map[string]interface{}{"color": e.theme.Text},
	}
	if c.NodeAlign != "" {
		series["nodeAlign"] = c.NodeAlign
	}
	if c.NodeWidth > 0 {
		series["nodeWidth"] = c.NodeWidth
	}
	if c.NodeGap > 0 {
		series["nodeGap"] = c.NodeGap
	}
	if e.hasTitle() {
		series["top"] = "15%"
	}

	opt := e.base()
	opt["series"] = []interface{}{series}
	tooltip := builder.BuildTooltip(e.cfg.Tooltip, "item", nil)
	tooltip["triggerOn"] = "mousemove"
	opt["tooltip"] = tooltip
	return opt
}

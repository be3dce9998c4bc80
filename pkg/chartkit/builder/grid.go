package builder

// GridConfig controls the plot area margins.
type GridConfig struct {
	Left         string `json:"left,omitempty" yaml:"left,omitempty"`
	Right        string `json:"right,omitempty" yaml:"right,omitempty"`
	Top          string `json:"top,omitempty" yaml:"top,omitempty"`
	Bottom       string `json:"bottom,omitempty" yaml:"bottom,omitempty"`
	ContainLabel *bool  `json:"containLabel,omitempty" yaml:"containLabel,omitempty"`
}

// BuildGrid returns the grid fragment. Space is reserved for a title and a
// bottom legend when present; rightAxes widens the right margin for extra
// value axes.
func BuildGrid(c GridConfig, hasTitle, bottomLegend bool, rightAxes int) map[string]interface{} {
	top := "10%"
	if hasTitle {
		top = "15%"
	}
	bottom := "3%"
	if bottomLegend {
		bottom = "10%"
	}
	right := "4%"
	if rightAxes > 1 {
		right = "10%"
	}

	return map[string]interface{}{
		"left":         orDefault(c.Left, "3%"),
		"right":        orDefault(c.Right, right),
		"top":          orDefault(c.Top, top),
		"bottom":       orDefault(c.Bottom, bottom),
		"containLabel": c.ContainLabel == nil || *c.ContainLabel,
	}
}

// BuildDataZoom returns inside and slider zoom components for the axis
// ("x" or "y").
func BuildDataZoom(axis string) []interface{} {
	key := "xAxisIndex"
	if axis == "y" {
		key = "yAxisIndex"
	}
	return []interface{}{
		map[string]interface{}{"type": "inside", key: 0},
		map[string]interface{}{"type": "slider", key: 0},
	}
}

// BuildBrush returns a brush component over all x axes.
func BuildBrush() map[string]interface{} {
	return map[string]interface{}{
		"toolbox":    []interface{}{"rect", "polygon", "keep", "clear"},
		"xAxisIndex": "all",
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

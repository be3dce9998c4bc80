package builder

// LegendConfig controls legend visibility and placement.
type LegendConfig struct {
	Show     *bool  `json:"show,omitempty" yaml:"show,omitempty"`
	Position string `json:"position,omitempty" yaml:"position,omitempty"`
	Scroll   bool   `json:"scroll,omitempty" yaml:"scroll,omitempty"`
}

// Visible reports whether a legend is drawn for n entries. By default a
// legend is shown when there is more than one entry.
func (c LegendConfig) Visible(n int) bool {
	if c.Show != nil {
		return *c.Show
	}
	return n > 1
}

// BuildLegend returns the legend fragment for the given entry names.
func BuildLegend(c LegendConfig, names []string, theme ThemeColors) map[string]interface{} {
	data := make([]interface{}, len(names))
	for i, n := range names {
		data[i] = n
	}

	legend := map[string]interface{}{
		"show":      c.Visible(len(names)),
		"data":      data,
		"textStyle": map[string]interface{}{"color": theme.Text},
	}
	if c.Scroll {
		legend["type"] = "scroll"
	}

	switch c.Position {
	case "top":
		legend["top"] = 30
		legend["left"] = "center"
	case "left":
		legend["left"] = 10
		legend["top"] = "middle"
		legend["orient"] = "vertical"
	case "right":
		legend["right"] = 10
		legend["top"] = "middle"
		legend["orient"] = "vertical"
	default:
		legend["bottom"] = 0
		legend["left"] = "center"
	}
	return legend
}

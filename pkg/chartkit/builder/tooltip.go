package builder

// TooltipConfig controls the tooltip trigger and formatting.
type TooltipConfig struct {
	Show      *bool  `json:"show,omitempty" yaml:"show,omitempty"`
	Trigger   string `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Formatter string `json:"formatter,omitempty" yaml:"formatter,omitempty"`
}

// BuildTooltip returns the tooltip fragment. defaultTrigger is used when the
// config names none; formatter, when non-nil, replaces a configured
// formatter only if the config does not set one.
func BuildTooltip(c TooltipConfig, defaultTrigger string, formatter interface{}) map[string]interface{} {
	trigger := c.Trigger
	if trigger == "" {
		trigger = defaultTrigger
	}

	tooltip := map[string]interface{}{
		"show":    c.Show == nil || *c.Show,
		"trigger": trigger,
	}
	if trigger == "axis" {
		tooltip["axisPointer"] = map[string]interface{}{"type": "shadow"}
	}
	switch {
	case c.Formatter != "":
		tooltip["formatter"] = c.Formatter
	case formatter != nil:
		tooltip["formatter"] = formatter
	}
	return tooltip
}

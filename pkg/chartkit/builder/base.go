package builder

import "github.com/ukaji3/chartkit-go/pkg/chartkit/models"

// Logo is an image overlay drawn above the plot.
type Logo struct {
	URL      string  `json:"url" yaml:"url"`
	Width    float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height   float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Position string  `json:"position,omitempty" yaml:"position,omitempty"`
	Opacity  float64 `json:"opacity,omitempty" yaml:"opacity,omitempty"`
}

// BaseConfig holds the data-independent visual settings of a chart.
type BaseConfig struct {
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle   string   `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Background string   `json:"background,omitempty" yaml:"background,omitempty"`
	Palette    []string `json:"palette,omitempty" yaml:"palette,omitempty"`
	Animation  *bool    `json:"animation,omitempty" yaml:"animation,omitempty"`
	Logo       *Logo    `json:"logo,omitempty" yaml:"logo,omitempty"`
}

// EffectivePalette returns the configured palette or the theme's.
func (c BaseConfig) EffectivePalette(theme ThemeColors) []string {
	if len(c.Palette) > 0 {
		return c.Palette
	}
	if len(theme.Palette) > 0 {
		return theme.Palette
	}
	return DefaultPalette
}

// BuildBase returns the title, background, palette, animation and logo
// fragment of a specification.
func BuildBase(c BaseConfig, theme ThemeColors) models.Option {
	opt := models.Option{
		"color":     toInterfaces(c.EffectivePalette(theme)),
		"animation": c.Animation == nil || *c.Animation,
	}

	bg := c.Background
	if bg == "" {
		bg = theme.Background
	}
	if bg != "" {
		opt["backgroundColor"] = bg
	}

	if c.Title != "" || c.Subtitle != "" {
		title := map[string]interface{}{
			"left":      "center",
			"textStyle": map[string]interface{}{"color": theme.Text},
		}
		if c.Title != "" {
			title["text"] = c.Title
		}
		if c.Subtitle != "" {
			title["subtext"] = c.Subtitle
			title["subtextStyle"] = map[string]interface{}{"color": theme.SubText}
		}
		opt["title"] = title
	}

	if c.Logo != nil && c.Logo.URL != "" {
		opt["graphic"] = []interface{}{buildLogo(*c.Logo)}
	}
	return opt
}

func buildLogo(l Logo) map[string]interface{} {
	width, height, opacity := l.Width, l.Height, l.Opacity
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 30
	}
	if opacity <= 0 || opacity > 1 {
		opacity = 0.6
	}

	g := map[string]interface{}{
		"type":   "image",
		"z":      100,
		"silent": true,
		"style": map[string]interface{}{
			"image":   l.URL,
			"width":   width,
			"height":  height,
			"opacity": opacity,
		},
	}
	switch l.Position {
	case "top-left":
		g["left"], g["top"] = 10, 10
	case "top-right":
		g["right"], g["top"] = 10, 10
	case "bottom-left":
		g["left"], g["bottom"] = 10, 10
	default:
		g["right"], g["bottom"] = 10, 10
	}
	return g
}

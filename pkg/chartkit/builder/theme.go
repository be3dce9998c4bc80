// Package builder turns small configuration objects plus a theme into the
// engine-native fragments of a rendering specification.
package builder

import (
	"encoding/json"
	"fmt"
	"strings"

	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
	"gopkg.in/yaml.v3"
)

// ThemeColors is the set of colors a theme controls. Empty fields inherit
// from the named base theme.
type ThemeColors struct {
	Text       string   `json:"text,omitempty" yaml:"text,omitempty"`
	SubText    string   `json:"subText,omitempty" yaml:"subText,omitempty"`
	AxisLine   string   `json:"axisLine,omitempty" yaml:"axisLine,omitempty"`
	SplitLine  string   `json:"splitLine,omitempty" yaml:"splitLine,omitempty"`
	Background string   `json:"background,omitempty" yaml:"background,omitempty"`
	Palette    []string `json:"palette,omitempty" yaml:"palette,omitempty"`
}

// DefaultThemeName is used when a theme names nothing.
const DefaultThemeName = "light"

var namedThemes = map[string]ThemeColors{
	"light": {
		Text:       "#333333",
		SubText:    "#aaaaaa",
		AxisLine:   "#6e7079",
		SplitLine:  "#e0e6f1",
		Background: "transparent",
		Palette:    DefaultPalette,
	},
	"dark": {
		Text:       "#eeeeee",
		SubText:    "#aaaaaa",
		AxisLine:   "#888888",
		SplitLine:  "#333333",
		Background: "#100c2a",
		Palette: []string{
			"#4992ff", "#7cffb2", "#fddd60", "#ff6e76", "#58d9f9",
			"#05c091", "#ff8a45", "#8d48e3", "#dd79ff",
		},
	},
}

// ThemeNames returns the names of the built-in themes.
func ThemeNames() []string {
	return []string{"light", "dark"}
}

// Theme selects a named theme and optionally overrides its colors with a
// theme object. In configuration files it is either a string (the name) or
// an object.
type Theme struct {
	Name   string
	Object *ThemeColors
}

// IsObject reports whether the theme carries color overrides.
func (t Theme) IsObject() bool {
	return t.Object != nil
}

// BaseName returns the named theme, defaulting to DefaultThemeName.
func (t Theme) BaseName() string {
	if t.Name == "" {
		return DefaultThemeName
	}
	return t.Name
}

// Resolve returns the effective colors. Unknown names and invalid overrides
// yield an invalid-theme error alongside the best-effort colors, which fall
// back to the default theme.
func (t Theme) Resolve() (ThemeColors, error) {
	base, ok := namedThemes[t.BaseName()]
	var err error
	if !ok {
		base = namedThemes[DefaultThemeName]
		err = chartErrors.New(chartErrors.CodeInvalidTheme, "unknown theme name").
			With("theme", t.Name).
			Suggest(fmt.Sprintf("use one of %s", strings.Join(ThemeNames(), ", ")))
	}
	if t.Object == nil {
		return base, err
	}
	if verr := ValidateThemeColors(*t.Object); verr != nil {
		return base, verr
	}
	return mergeColors(base, *t.Object), err
}

// ValidateThemeColors checks that every set color parses.
func ValidateThemeColors(c ThemeColors) error {
	fields := map[string]string{
		"text":       c.Text,
		"subText":    c.SubText,
		"axisLine":   c.AxisLine,
		"splitLine":  c.SplitLine,
		"background": c.Background,
	}
	for i, p := range c.Palette {
		fields[fmt.Sprintf("palette[%d]", i)] = p
	}
	for name, value := range fields {
		if value != "" && !IsColor(value) {
			return chartErrors.New(chartErrors.CodeInvalidTheme, "theme color does not parse").
				With("field", name).
				With("value", value).
				Suggest("use #rgb, #rrggbb, rgb(...), rgba(...) or a CSS color name")
		}
	}
	return nil
}

func mergeColors(base, over ThemeColors) ThemeColors {
	out := base
	if over.Text != "" {
		out.Text = over.Text
	}
	if over.SubText != "" {
		out.SubText = over.SubText
	}
	if over.AxisLine != "" {
		out.AxisLine = over.AxisLine
	}
	if over.SplitLine != "" {
		out.SplitLine = over.SplitLine
	}
	if over.Background != "" {
		out.Background = over.Background
	}
	if len(over.Palette) > 0 {
		out.Palette = over.Palette
	}
	return out
}

// UnmarshalJSON accepts either a theme name or a color object.
func (t *Theme) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		*t = Theme{Name: name}
		return nil
	}
	var obj struct {
		Name string `json:"name"`
		ThemeColors
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	colors := obj.ThemeColors
	*t = Theme{Name: obj.Name, Object: &colors}
	return nil
}

// MarshalJSON writes a bare name when there is no object.
func (t Theme) MarshalJSON() ([]byte, error) {
	if t.Object == nil {
		return json.Marshal(t.Name)
	}
	return json.Marshal(struct {
		Name string `json:"name,omitempty"`
		ThemeColors
	}{t.Name, *t.Object})
}

// UnmarshalYAML accepts either a theme name or a color object.
func (t *Theme) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*t = Theme{Name: node.Value}
		return nil
	}
	var obj struct {
		Name        string `yaml:"name"`
		ThemeColors `yaml:",inline"`
	}
	if err := node.Decode(&obj); err != nil {
		return err
	}
	colors := obj.ThemeColors
	*t = Theme{Name: obj.Name, Object: &colors}
	return nil
}

// ApplyThemeColors returns a copy of opt with theme colors merged into the
// concerns a theme controls. opt is not modified.
func ApplyThemeColors(opt models.Option, c ThemeColors) models.Option {
	out := make(models.Option, len(opt)+3)
	for k, v := range opt {
		out[k] = v
	}
	if c.Background != "" {
		out["backgroundColor"] = c.Background
	}
	if len(c.Palette) > 0 {
		out["color"] = toInterfaces(c.Palette)
	}
	if c.Text != "" {
		out["textStyle"] = map[string]interface{}{"color": c.Text}
		recolorKey(out, "title", func(m map[string]interface{}) {
			m["textStyle"] = map[string]interface{}{"color": c.Text}
			if c.SubText != "" {
				m["subtextStyle"] = map[string]interface{}{"color": c.SubText}
			}
		})
		recolorKey(out, "legend", func(m map[string]interface{}) {
			m["textStyle"] = map[string]interface{}{"color": c.Text}
		})
	}
	for _, key := range []string{"xAxis", "yAxis"} {
		recolorKey(out, key, func(m map[string]interface{}) {
			if c.Text != "" {
				m["axisLabel"] = mergeMap(m["axisLabel"], map[string]interface{}{"color": c.Text})
			}
			if c.AxisLine != "" {
				m["axisLine"] = mergeMap(m["axisLine"], map[string]interface{}{
					"lineStyle": map[string]interface{}{"color": c.AxisLine},
				})
			}
			if c.SplitLine != "" {
				m["splitLine"] = mergeMap(m["splitLine"], map[string]interface{}{
					"lineStyle": map[string]interface{}{"color": c.SplitLine},
				})
			}
		})
	}
	return out
}

func recolorKey(opt models.Option, key string, fn func(map[string]interface{})) {
	if v, ok := opt[key]; ok && v != nil {
		opt[key] = recolor(v, fn)
	}
}

// recolor applies fn to a copy of a component that is either a single object
// or a list of objects. Absent components stay absent.
func recolor(v interface{}, fn func(map[string]interface{})) interface{} {
	switch c := v.(type) {
	case map[string]interface{}:
		m := mergeMap(c, nil)
		fn(m)
		return m
	case []interface{}:
		out := make([]interface{}, len(c))
		for i, item := range c {
			out[i] = recolor(item, fn)
		}
		return out
	}
	return v
}

func mergeMap(base interface{}, over map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	if m, ok := base.(map[string]interface{}); ok {
		for k, v := range m {
			out[k] = v
		}
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

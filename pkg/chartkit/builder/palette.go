package builder

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/aclements/go-gg/palette"
)

// DefaultPalette is the engine's default series palette.
var DefaultPalette = []string{
	"#5470c6", "#91cc75", "#fac858", "#ee6666", "#73c0de",
	"#3ba272", "#fc8452", "#9a60b4", "#ea7ccc",
}

// PaletteColor returns the i-th palette color, cycling through the palette.
func PaletteColor(p []string, i int) string {
	if len(p) == 0 {
		p = DefaultPalette
	}
	if i < 0 {
		i = -i
	}
	return p[i%len(p)]
}

// ParseHexColor parses #rgb, #rrggbb and #rrggbbaa colors.
func ParseHexColor(s string) (color.RGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	var r, g, b, a uint64
	var err error
	a = 255
	switch len(s) {
	case 3:
		if r, err = strconv.ParseUint(s[0:1], 16, 8); err != nil {
			return color.RGBA{}, false
		}
		if g, err = strconv.ParseUint(s[1:2], 16, 8); err != nil {
			return color.RGBA{}, false
		}
		if b, err = strconv.ParseUint(s[2:3], 16, 8); err != nil {
			return color.RGBA{}, false
		}
		r, g, b = r*17, g*17, b*17
	case 6, 8:
		if r, err = strconv.ParseUint(s[0:2], 16, 8); err != nil {
			return color.RGBA{}, false
		}
		if g, err = strconv.ParseUint(s[2:4], 16, 8); err != nil {
			return color.RGBA{}, false
		}
		if b, err = strconv.ParseUint(s[4:6], 16, 8); err != nil {
			return color.RGBA{}, false
		}
		if len(s) == 8 {
			if a, err = strconv.ParseUint(s[6:8], 16, 8); err != nil {
				return color.RGBA{}, false
			}
		}
	default:
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}, true
}

// HexString formats c as #rrggbb.
func HexString(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// IsColor reports whether s looks like a CSS color the engine accepts.
func IsColor(s string) bool {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return false
	case strings.HasPrefix(s, "#"):
		_, ok := ParseHexColor(s)
		return ok
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") ||
		strings.HasPrefix(s, "hsl(") || strings.HasPrefix(s, "hsla("):
		return strings.HasSuffix(s, ")")
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// Gradient samples n evenly spaced colors on the sRGB ramp through stops.
// Stops that do not parse as hex colors are skipped; with fewer than two
// usable stops the stops are returned unchanged.
func Gradient(stops []string, n int) []string {
	var colors []color.RGBA
	for _, s := range stops {
		if c, ok := ParseHexColor(s); ok {
			colors = append(colors, c)
		}
	}
	if len(colors) < 2 || n < 2 {
		return stops
	}

	// RGBGradient.Map never blends inside its first segment, so the ramp is
	// led by a duplicate of the first color and sampled from the second.
	m := len(colors)
	ramp := palette.RGBGradient{Colors: append([]color.RGBA{colors[0]}, colors...)}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		out[i] = HexString(ramp.Map((t*float64(m-1) + 1) / float64(m)))
	}
	return out
}

// ExtendPalette returns a palette with at least n colors. Missing colors are
// blended between neighbors of the base palette.
func ExtendPalette(p []string, n int) []string {
	if len(p) == 0 {
		p = DefaultPalette
	}
	if n <= len(p) {
		return p
	}
	return Gradient(p, n)
}

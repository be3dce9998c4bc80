package compiler

import (
	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// ResolveStyle resolves every visual attribute of series index/name from,
// in order: the explicit per-series style, the named override, the
// chart-level default, and the palette entry at index for color or the
// engine default for symbol and width. Every attribute gets exactly one source.
func ResolveStyle(index int, name string, explicit models.SeriesStyle, named map[string]models.SeriesStyle, chart models.SeriesStyle, palette []string) models.ResolvedStyle {
	group, hasGroup := named[name]
	var r models.ResolvedStyle

	switch {
	case explicit.Color != "":
		r.Color, r.ColorSource = explicit.Color, models.SourceSeries
	case hasGroup && group.Color != "":
		r.Color, r.ColorSource = group.Color, models.SourceGroup
	case chart.Color != "":
		r.Color, r.ColorSource = chart.Color, models.SourceChartDefault
	default:
		r.Color, r.ColorSource = builder.PaletteColor(palette, index), models.SourcePalette
	}

	switch {
	case explicit.Symbol != "":
		r.Symbol, r.SymbolSource = explicit.Symbol, models.SourceSeries
	case hasGroup && group.Symbol != "":
		r.Symbol, r.SymbolSource = group.Symbol, models.SourceGroup
	case chart.Symbol != "":
		r.Symbol, r.SymbolSource = chart.Symbol, models.SourceChartDefault
	default:
		r.SymbolSource = models.SourceEngineDefault
	}

	switch {
	case explicit.Width > 0:
		r.Width, r.WidthSource = explicit.Width, models.SourceSeries
	case hasGroup && group.Width > 0:
		r.Width, r.WidthSource = group.Width, models.SourceGroup
	case chart.Width > 0:
		r.Width, r.WidthSource = chart.Width, models.SourceChartDefault
	default:
		r.WidthSource = models.SourceEngineDefault
	}
	return r
}

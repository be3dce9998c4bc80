package builder

import (
	"math"
	"strconv"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used when a configuration names no locale.
const DefaultLocale = "en"

func printer(locale string) *message.Printer {
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// FormatNumber formats v with locale-aware grouping and at most two
// fraction digits.
func FormatNumber(v float64, locale string) string {
	return printer(locale).Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// RoundPercent converts a fraction to an integer percentage, rounding half
// away from zero.
func RoundPercent(frac float64) int {
	if math.IsNaN(frac) || math.IsInf(frac, 0) {
		return 0
	}
	return int(math.Round(frac * 100))
}

// FormatPercent renders a fraction as an integer percentage ("25%").
func FormatPercent(frac float64) string {
	return strconv.Itoa(RoundPercent(frac)) + "%"
}

// PercentLabel renders a percentage, optionally followed by the absolute
// value it was computed from: "25% (1,000)".
func PercentLabel(frac float64, absolute interface{}, showAbsolute bool, locale string) string {
	label := FormatPercent(frac)
	if !showAbsolute {
		return label
	}
	if abs, ok := absolute.(float64); ok {
		label += " (" + FormatNumber(abs, locale) + ")"
	}
	return label
}

// PercentAxisFormatter renders value-axis ticks in [0,1] as percentages.
const PercentAxisFormatter = models.JSFunc(`function (v) { return Math.round(v * 100) + '%'; }`)

// PercentTooltipFormatter renders an axis tooltip for percent-stacked series.
// Data items carry the absolute value under "absolute".
func PercentTooltipFormatter(showAbsolute bool) models.JSFunc {
	if showAbsolute {
		return `function (params) {
  var rows = [params[0].axisValueLabel];
  params.forEach(function (p) {
    var v = p.data && p.data.value != null ? p.data.value : p.value;
    var abs = p.data && p.data.absolute != null ? ' (' + p.data.absolute + ')' : '';
    rows.push(p.marker + p.seriesName + ': ' + Math.round(v * 100) + '%' + abs);
  });
  return rows.join('<br/>');
}`
	}
	return `function (params) {
  var rows = [params[0].axisValueLabel];
  params.forEach(function (p) {
    var v = p.data && p.data.value != null ? p.data.value : p.value;
    rows.push(p.marker + p.seriesName + ': ' + Math.round(v * 100) + '%');
  });
  return rows.join('<br/>');
}`
}

package compiler

import (
	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/data"
)

// defaultStack is the stack key shared by series without an explicit group.
const defaultStack = "total"

// PercentStack converts the values of the series of one stack group into
// fractions of the per-index total. Gaps and negative or non-numeric values
// count as 0. An index whose total is not positive yields 0 for every series.
func PercentStack(values [][]interface{}) [][]float64 {
	width := 0
	for _, s := range values {
		if len(s) > width {
			width = len(s)
		}
	}

	totals := make([]float64, width)
	for _, s := range values {
		for i, v := range s {
			totals[i] += data.ToFloatOrZero(v)
		}
	}

	out := make([][]float64, len(values))
	for si, s := range values {
		out[si] = make([]float64, width)
		for i := 0; i < width; i++ {
			if totals[i] <= 0 || i >= len(s) {
				continue
			}
			out[si][i] = data.ToFloatOrZero(s[i]) / totals[i]
		}
	}
	return out
}

// stackKeys returns the stack key of every series, or "" when the series is
// not stacked.
func (e *env) stackKeys(n *normalized) []string {
	keys := make([]string, len(n.series))
	for i := range n.series {
		switch {
		case n.meta[i].stack != "":
			keys[i] = n.meta[i].stack
		case e.cfg.IsStacked():
			keys[i] = defaultStack
		}
	}
	return keys
}

// applyPercent rewrites series values in place as percent data items
// {value, absolute, label}. Series sharing a stack key are normalized
// together; unstacked series are left untouched.
func (e *env) applyPercent(n *normalized, keys []string) {
	var order []string
	groups := make(map[string][]int)
	for i, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	for _, k := range order {
		members := groups[k]
		values := make([][]interface{}, len(members))
		for j, si := range members {
			values[j] = n.series[si].Data
		}
		fractions := PercentStack(values)
		for j, si := range members {
			raw := n.series[si].Data
			items := make([]interface{}, len(raw))
			for i, v := range raw {
				abs := numeric(v)
				if abs == nil {
					items[i] = nil
					continue
				}
				frac := fractions[j][i]
				items[i] = map[string]interface{}{
					"value":    frac,
					"absolute": abs,
					"label":    builder.PercentLabel(frac, abs, e.cfg.ShowAbsolute, e.cfg.Locale),
				}
			}
			n.series[si].Raw = raw
			n.series[si].Data = items
		}
	}
}

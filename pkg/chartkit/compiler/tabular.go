package compiler

import (
	"github.com/ukaji3/chartkit-go/pkg/chartkit/data"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// tabular lifts the input of graph-shaped families into flat records.
// Tuples are read positionally into columns; explicit series contribute
// their record data in order.
func (e *env) tabular(columns ...string) []models.Record {
	variant, ds := e.classify()
	switch variant {
	case variantRecords, variantGrouped:
		return ds.Records
	case variantTuples:
		out := make([]models.Record, 0, len(ds.Tuples))
		for _, t := range ds.Tuples {
			r := make(models.Record, len(columns))
			for i, c := range columns {
				if i < len(t) {
					r[c] = t[i]
				}
			}
			out = append(out, r)
		}
		return out
	case variantExplicit:
		var rows []interface{}
		for _, s := range e.cfg.Series {
			rows = append(rows, s.Data...)
		}
		inner := data.Normalize(rows)
		if inner.Shape == models.ShapeRecords {
			return inner.Records
		}
		out := make([]models.Record, 0, len(inner.Tuples))
		for _, t := range inner.Tuples {
			r := make(models.Record, len(columns))
			for i, c := range columns {
				if i < len(t) {
					r[c] = t[i]
				}
			}
			out = append(out, r)
		}
		return out
	}
	return nil
}

func fieldOr(field, def string) string {
	if field == "" {
		return def
	}
	return field
}

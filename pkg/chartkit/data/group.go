package data

import "github.com/ukaji3/chartkit-go/pkg/chartkit/models"

// Groups is the result of GroupByField: records partitioned by the
// stringified value of a discriminator field, in first-seen key order.
type Groups struct {
	// Keys lists group names in order of first appearance.
	Keys []string
	// Members maps each group name to its records, in input order.
	Members map[string][]models.Record
}

// Len returns the number of groups.
func (g Groups) Len() int {
	return len(g.Keys)
}

// GroupByField partitions records by field. Missing or nil values are grouped
// under "Unknown".
func GroupByField(records []models.Record, field string) Groups {
	g := Groups{Members: make(map[string][]models.Record)}
	for _, r := range records {
		key := Key(r[field])
		if _, ok := g.Members[key]; !ok {
			g.Keys = append(g.Keys, key)
		}
		g.Members[key] = append(g.Members[key], r)
	}
	return g
}

// UniqueOrdered returns the distinct non-nil values of field in order of
// first occurrence. Later duplicates are dropped without reordering.
func UniqueOrdered(records []models.Record, field string) []interface{} {
	var out []interface{}
	seen := make(map[interface{}]struct{})
	for _, r := range records {
		v, ok := r[field]
		if !ok || v == nil {
			continue
		}
		id := identity(v)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Index maps values to their position in an ordered value list, so rows can be
// placed at the axis position of their category.
type Index map[interface{}]int

// NewIndex builds an Index over values.
func NewIndex(values []interface{}) Index {
	idx := make(Index, len(values))
	for i, v := range values {
		id := identity(v)
		if _, dup := idx[id]; !dup {
			idx[id] = i
		}
	}
	return idx
}

// Lookup returns the position of v.
func (idx Index) Lookup(v interface{}) (int, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := idx[identity(v)]
	return i, ok
}

package models

import (
	"encoding/json"
	"sort"
	"strings"
)

// Option is an engine-native rendering specification. It is a plain JSON-like
// tree of maps, slices and scalars and is compared structurally.
type Option map[string]interface{}

// Keys returns the sorted top-level keys of the option.
func (o Option) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Series returns the series list of the option, or nil.
func (o Option) Series() []interface{} {
	s, _ := o["series"].([]interface{})
	return s
}

// FuncMarker wraps JSFunc source in its JSON encoding.
const FuncMarker = "__chartkit_fn__"

// JSFunc is the source of an engine-side JavaScript function such as a label
// formatter or a custom render item.
type JSFunc string

// MarshalJSON encodes the function source wrapped in FuncMarker so that
// consumers can turn it back into a function literal.
func (f JSFunc) MarshalJSON() ([]byte, error) {
	return json.Marshal(FuncMarker + string(f) + FuncMarker)
}

// UnwrapFunc reports whether s is a marker-wrapped function and returns its
// source.
func UnwrapFunc(s string) (string, bool) {
	if len(s) < 2*len(FuncMarker) || !strings.HasPrefix(s, FuncMarker) || !strings.HasSuffix(s, FuncMarker) {
		return "", false
	}
	return s[len(FuncMarker) : len(s)-len(FuncMarker)], true
}

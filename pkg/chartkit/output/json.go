// Package output serializes compiled specifications to JSON and to
// standalone HTML preview pages.
package output

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// ToJSON encodes opt. Engine functions stay wrapped in models.FuncMarker so
// the result is plain JSON.
func ToJSON(opt models.Option, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(opt); err != nil {
		return nil, chartErrors.Wrap(chartErrors.CodeSpecApply, err, "specification does not encode").
			With("keys", opt.Keys())
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var wrappedFunc = regexp.MustCompile(`"` + models.FuncMarker + `(?:[^"\\]|\\.)*` + models.FuncMarker + `"`)

// ToScript encodes opt as a JavaScript object literal, with engine functions
// as function literals.
func ToScript(opt models.Option, pretty bool) (string, error) {
	b, err := ToJSON(opt, pretty)
	if err != nil {
		return "", err
	}
	return UnwrapFuncs(string(b)), nil
}

// UnwrapFuncs replaces every marker-wrapped string literal of a JSON text by
// the function source it holds.
func UnwrapFuncs(js string) string {
	return wrappedFunc.ReplaceAllStringFunc(js, func(lit string) string {
		var s string
		if err := json.Unmarshal([]byte(lit), &s); err != nil {
			return lit
		}
		src, ok := models.UnwrapFunc(s)
		if !ok {
			return lit
		}
		return strings.ReplaceAll(src, "</script", `<\/script`)
	})
}

package compiler

import (
	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// ApplyOverride shallow-merges override over opt: every top-level key of
// override replaces the compiled value wholesale. Values are deep-copied so
// later changes to override do not leak into the specification. Callers are
// responsible for keeping replaced components consistent.
func ApplyOverride(opt models.Option, override map[string]interface{}) models.Option {
	for k, v := range override {
		copied, err := models.CloneValue(v)
		if err != nil {
			logging.Logger().Warn("override value not copied", "key", k, "error", err)
		}
		opt[k] = copied
	}
	return opt
}

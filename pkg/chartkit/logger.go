package chartkit

import (
	"log/slog"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
)

// SetLogger configures the logger used by chartkit. By default nothing is
// logged. Passing nil restores the silent default.
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

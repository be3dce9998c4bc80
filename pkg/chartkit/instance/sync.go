package instance

import (
	"log/slog"
	"reflect"
	"sync"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// Decision is the outcome of comparing a specification with the last one
// applied.
type Decision struct {
	// Apply is false when the specification equals the last applied one
	// on the same instance.
	Apply bool
	// NotMerge is forced to true when the instance changed.
	NotMerge bool
}

// Synchronizer pushes specifications to the live instance, suppressing
// redundant updates.
type Synchronizer struct {
	mu      sync.Mutex
	binding *Binding
	last    models.Option
}

// NewSynchronizer creates a Synchronizer with no applied specification.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

func (s *Synchronizer) logger() *slog.Logger {
	return logging.Logger().With("component", "sync")
}

// Decide compares opt with the last specification applied through s.
func (s *Synchronizer) Decide(b *Binding, opt models.Option, notMerge bool) Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decide(b, opt, notMerge)
}

func (s *Synchronizer) decide(b *Binding, opt models.Option, notMerge bool) Decision {
	if b != s.binding {
		return Decision{Apply: true, NotMerge: true}
	}
	if reflect.DeepEqual(opt, s.last) {
		return Decision{}
	}
	return Decision{Apply: true, NotMerge: notMerge}
}

// Apply pushes opt to the instance of b when it differs from the last
// applied specification. It reports whether the engine was called.
func (s *Synchronizer) Apply(b *Binding, opt models.Option, opts SetOptionOpts) (bool, error) {
	if b == nil {
		return false, nil
	}
	if b.Disposed() {
		return false, chartErrors.New(chartErrors.CodeDisposed, "specification not applied to a disposed instance").
			With("binding", b.ID.String())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.decide(b, opt, opts.NotMerge)
	if !d.Apply {
		s.logger().Debug("specification unchanged, skipped", "binding", b.ID.String())
		return false, nil
	}

	snapshot, err := opt.Clone()
	if err != nil {
		s.logger().Warn("specification snapshot failed", "error", err)
		snapshot = nil
	}
	if err := b.Instance.SetOption(opt, SetOptionOpts{NotMerge: d.NotMerge, LazyUpdate: opts.LazyUpdate}); err != nil {
		ce := chartErrors.Wrap(chartErrors.CodeSpecApply, err, "engine rejected the specification").
			With("notMerge", d.NotMerge).
			With("keys", opt.Keys())
		s.logger().Error("apply failed", "binding", b.ID.String(), "error", ce)
		return false, ce
	}

	s.binding, s.last = b, snapshot
	s.logger().Debug("specification applied", "binding", b.ID.String(), "notMerge", d.NotMerge)
	return true, nil
}

// ApplyTheme merges theme colors over the specification currently held by
// the instance, not the last one applied, so concurrent data updates
// survive.
func (s *Synchronizer) ApplyTheme(b *Binding, colors builder.ThemeColors) error {
	if b.Disposed() {
		return chartErrors.New(chartErrors.CodeDisposed, "theme not applied to a disposed instance")
	}
	if err := builder.ValidateThemeColors(colors); err != nil {
		s.logger().Warn("theme skipped", "error", err)
		return nil
	}

	current, err := b.Instance.GetOption()
	if err != nil {
		return chartErrors.Wrap(chartErrors.CodeSpecApply, err, "current specification could not be read")
	}
	themed := builder.ApplyThemeColors(current, colors)
	if err := b.Instance.SetOption(themed, SetOptionOpts{}); err != nil {
		ce := chartErrors.Wrap(chartErrors.CodeSpecApply, err, "engine rejected the theme").
			With("notMerge", false).
			With("keys", themed.Keys())
		s.logger().Error("theme apply failed", "error", ce)
		return ce
	}
	return nil
}

// Reset forgets the last applied specification, so the next Apply is a full
// replacement.
func (s *Synchronizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.binding, s.last = nil, nil
}

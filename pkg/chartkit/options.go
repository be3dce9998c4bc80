// Package chartkit compiles declarative chart configurations into rendering
// engine specifications and keeps one engine instance per container in sync
// with them.
package chartkit

import (
	"context"
	"time"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/instance"
)

// UpdateMode represents how a compiled specification reaches the engine.
type UpdateMode string

const (
	// UpdateMerge merges each specification into the one the instance holds.
	UpdateMerge UpdateMode = "merge"
	// UpdateReplace replaces the instance's specification on every apply.
	UpdateReplace UpdateMode = "replace"
)

// Options configures how a Chart talks to its instance.
type Options struct {
	// Mode specifies the update mode (merge, replace).
	Mode UpdateMode
	// LazyUpdate defers the engine redraw to its next frame.
	// If nil, defaults to false.
	LazyUpdate *bool
	// AutoResize follows container and viewport size changes.
	// If nil, defaults to true.
	AutoResize *bool
	// AutoSelect isolates a legend or series item on double click.
	// If nil, defaults to true when a double-click callback is set.
	AutoSelect *bool
}

// DefaultOptions returns default chart options.
func DefaultOptions() Options {
	return Options{
		Mode: UpdateMerge,
	}
}

// ShouldMerge returns whether specifications are merged into the instance.
func (o Options) ShouldMerge() bool {
	return o.Mode != UpdateReplace
}

// ShouldLazyUpdate returns whether engine redraws are deferred.
func (o Options) ShouldLazyUpdate() bool {
	if o.LazyUpdate != nil {
		return *o.LazyUpdate
	}
	return false
}

// ShouldAutoResize returns whether size changes resize the instance.
func (o Options) ShouldAutoResize() bool {
	if o.AutoResize != nil {
		return *o.AutoResize
	}
	return true
}

// ShouldAutoSelect returns whether double clicks isolate items.
func (o Options) ShouldAutoSelect(hasDoubleClick bool) bool {
	if o.AutoSelect != nil {
		return *o.AutoSelect
	}
	return hasDoubleClick
}

// ChartOption tunes a Chart at construction.
type ChartOption func(*Chart)

// WithOptions replaces the chart options.
func WithOptions(o Options) ChartOption {
	return func(c *Chart) {
		c.opts = o
	}
}

// WithClock sets the clock driving resize and click timers.
func WithClock(clock instance.Clock) ChartOption {
	return func(c *Chart) {
		c.clock = clock
	}
}

// WithSettleDelay sets how long initialization waits for a zero-size
// container to be laid out.
func WithSettleDelay(d time.Duration) ChartOption {
	return func(c *Chart) {
		c.managerOpts = append(c.managerOpts, instance.WithSettleDelay(d))
	}
}

// WithSleep replaces the wait used for the settle delay.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) ChartOption {
	return func(c *Chart) {
		c.managerOpts = append(c.managerOpts, instance.WithSleep(fn))
	}
}

// WithResizeDelay sets the resize debounce window.
func WithResizeDelay(d time.Duration) ChartOption {
	return func(c *Chart) {
		c.resizeDelay = d
	}
}

// WithClickDelay sets the double-click window.
func WithClickDelay(d time.Duration) ChartOption {
	return func(c *Chart) {
		c.clickDelay = d
	}
}

// WithHandlers registers engine event handlers by event name.
func WithHandlers(h instance.Handlers) ChartOption {
	return func(c *Chart) {
		c.handlers = h
	}
}

// WithSizeObserver sets the observer watching the container size.
func WithSizeObserver(o instance.SizeObserver) ChartOption {
	return func(c *Chart) {
		c.observer = o
	}
}

// WithViewport sets the listener for viewport resizes.
func WithViewport(v instance.ViewportListener) ChartOption {
	return func(c *Chart) {
		c.viewport = v
	}
}

// WithClickCallbacks sets the callbacks of item clicks. Either may be nil.
func WithClickCallbacks(single, double func(instance.Click)) ChartOption {
	return func(c *Chart) {
		c.onSingle, c.onDouble = single, double
	}
}

// WithSelectionChange sets the callback run after a shift click.
func WithSelectionChange(fn func(selected []string)) ChartOption {
	return func(c *Chart) {
		c.onSelection = fn
	}
}

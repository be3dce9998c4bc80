package instance

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
)

// DefaultResizeDelay is the resize debounce window.
const DefaultResizeDelay = 100 * time.Millisecond

// SizeObserver reports size changes of one container.
type SizeObserver interface {
	Observe(c Container, onChange func()) (stop func())
}

// ViewportListener reports window resizes. It is the fallback where
// per-element observation is unavailable.
type ViewportListener interface {
	Listen(onResize func()) (stop func())
}

// ResizeCoordinator debounces container size changes into calls to the
// resize operation of whatever instance is current.
type ResizeCoordinator struct {
	clock   Clock
	delay   time.Duration
	current func() *Binding

	mu     sync.Mutex
	timer  Timer
	gen    uint64
	stops  []func()
	closed bool
}

// NewResizeCoordinator creates a coordinator that resizes current().
func NewResizeCoordinator(clock Clock, delay time.Duration, current func() *Binding) *ResizeCoordinator {
	if clock == nil {
		clock = RealClock()
	}
	if delay <= 0 {
		delay = DefaultResizeDelay
	}
	return &ResizeCoordinator{
		clock:   clock,
		delay:   delay,
		current: current,
	}
}

func (r *ResizeCoordinator) logger() *slog.Logger {
	return logging.Logger().With("component", "resize")
}

// Attach starts observing c. The observer is preferred; the viewport
// listener is used when observer is nil. Attaching again replaces the
// previous observation.
func (r *ResizeCoordinator) Attach(c Container, observer SizeObserver, viewport ViewportListener) {
	r.stopObservers()

	var stop func()
	switch {
	case observer != nil:
		stop = observer.Observe(c, r.Notify)
	case viewport != nil:
		stop = viewport.Listen(r.Notify)
	default:
		r.logger().Debug("no size observation available", "container", c.Tag())
	}

	r.mu.Lock()
	r.closed = false
	if stop != nil {
		r.stops = append(r.stops, stop)
	}
	r.mu.Unlock()
}

// Notify records a size change. Changes within the debounce window are
// coalesced into one resize after the last of them.
func (r *ResizeCoordinator) Notify() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.gen++
	gen := r.gen
	r.timer = r.clock.AfterFunc(r.delay, func() { r.fire(gen) })
}

func (r *ResizeCoordinator) fire(gen uint64) {
	r.mu.Lock()
	if r.closed || r.gen != gen {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	r.mu.Unlock()

	b := r.current()
	if b.Disposed() {
		return
	}
	if err := b.Instance.Resize(); err != nil {
		r.logger().Warn("resize failed", "binding", b.ID.String(), "error", err)
	}
}

// Detach stops observation and cancels a pending resize.
func (r *ResizeCoordinator) Detach() {
	r.mu.Lock()
	r.closed = true
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.mu.Unlock()
	r.stopObservers()
}

func (r *ResizeCoordinator) stopObservers() {
	r.mu.Lock()
	stops := r.stops
	r.stops = nil
	r.mu.Unlock()
	for _, stop := range stops {
		stop()
	}
}

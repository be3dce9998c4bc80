package instance

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
)

// DefaultSettleDelay is how long initialization waits for a container that
// reports zero size before re-checking it once.
const DefaultSettleDelay = 50 * time.Millisecond

// State is the lifecycle state of a Manager.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateDisposed
	StateError
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateDisposed:
		return "disposed"
	case StateError:
		return "error"
	}
	return "uninitialized"
}

// Binding pairs a container with the live instance created for it.
type Binding struct {
	// ID identifies the binding in logs.
	ID        uuid.UUID
	Container Container
	Instance  Instance
	// Theme is the named theme the instance was created with.
	Theme string

	disposed atomic.Bool
}

// Disposed reports whether the instance of b has been torn down.
func (b *Binding) Disposed() bool {
	return b == nil || b.disposed.Load()
}

func (b *Binding) dispose() {
	if b.disposed.CompareAndSwap(false, true) {
		b.Instance.Dispose()
	}
}

// Manager owns the creation and disposal of the engine instance bound to a
// container. At most one live instance exists at any time.
type Manager struct {
	engine Engine
	settle time.Duration
	sleep  func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	state     State
	binding   *Binding
	err       error
	gen       uint64
	loaded    bool
	container Container
	theme     string
	onBound   []func(*Binding)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSettleDelay sets the zero-size settle delay.
func WithSettleDelay(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.settle = d
	}
}

// WithSleep replaces the function used to wait for the settle delay.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) ManagerOption {
	return func(m *Manager) {
		if fn != nil {
			m.sleep = fn
		}
	}
}

// NewManager creates a Manager for engine.
func NewManager(engine Engine, opts ...ManagerOption) *Manager {
	m := &Manager{
		engine: engine,
		settle: DefaultSettleDelay,
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) logger() *slog.Logger {
	return logging.Logger().With("component", "lifecycle")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// OnBound registers fn to run once after every successful initialization.
func (m *Manager) OnBound(fn func(*Binding)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onBound = append(m.onBound, fn)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the error of the last failed initialization.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Current returns the live binding, or nil.
func (m *Manager) Current() *Binding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.binding
}

// Init binds a new engine instance to c. A call supersedes any
// initialization still in flight and disposes the current instance first.
func (m *Manager) Init(ctx context.Context, c Container, theme string) (*Binding, error) {
	if c == nil {
		err := chartErrors.New(chartErrors.CodeContainerNotFound, "no container to bind the chart to").
			Suggest("mount the chart after its container element exists")
		m.mu.Lock()
		m.state, m.err = StateError, err
		m.mu.Unlock()
		m.logger().Error("initialization failed", "error", err)
		return nil, err
	}

	m.mu.Lock()
	m.gen++
	gen := m.gen
	old := m.binding
	m.binding = nil
	m.state, m.err = StateInitializing, nil
	m.container, m.theme = c, theme
	loaded := m.loaded
	m.mu.Unlock()

	if old != nil {
		old.dispose()
	}
	log := m.logger().With("container", c.Tag())
	log.Info("initializing")

	if !loaded {
		if err := m.engine.Load(ctx); err != nil {
			return nil, m.fail(gen, chartErrors.Wrap(chartErrors.CodeEngineLoad, err, "rendering engine could not be loaded").
				With("container", c.Tag()).
				Suggest("check that the engine script is reachable", "retry the initialization"))
		}
		m.mu.Lock()
		m.loaded = true
		m.mu.Unlock()
	}
	if err := m.checkCurrent(gen, c); err != nil {
		return nil, err
	}

	w, h := c.Size()
	if w == 0 && h == 0 {
		log.Debug("container has no size, waiting for layout", "delay", m.settle)
		if err := m.sleep(ctx, m.settle); err != nil {
			return nil, m.fail(gen, chartErrors.Wrap(chartErrors.CodeContainerZeroSize, err, "initialization cancelled while waiting for layout").
				With("container", c.Tag()))
		}
		if err := m.checkCurrent(gen, c); err != nil {
			return nil, err
		}
		w, h = c.Size()
		if w == 0 && h == 0 {
			log.Warn("container still has no size, initializing anyway", "code", string(chartErrors.CodeContainerZeroSize))
		}
	}

	if !c.Attached() {
		return nil, m.fail(gen, chartErrors.New(chartErrors.CodeContainerRemoved, "container was removed during initialization").
			With("container", c.Tag()).
			With("width", w).
			With("height", h))
	}

	inst, err := m.engine.Init(c, theme)
	if err != nil || inst == nil {
		ce := chartErrors.New(chartErrors.CodeNoInstance, "engine returned no instance").
			With("container", c.Tag()).
			With("width", w).
			With("height", h)
		ce.Cause = err
		return nil, m.fail(gen, ce)
	}

	b := &Binding{ID: uuid.New(), Container: c, Instance: inst, Theme: theme}
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		b.dispose()
		return nil, superseded(c)
	}
	m.binding = b
	m.state = StateReady
	listeners := append([]func(*Binding){}, m.onBound...)
	m.mu.Unlock()

	log.Info("instance bound", "binding", b.ID.String(), "width", w, "height", h)
	for _, fn := range listeners {
		fn(b)
	}
	return b, nil
}

// Retry re-attempts initialization from scratch on the last container.
func (m *Manager) Retry(ctx context.Context) (*Binding, error) {
	m.mu.Lock()
	c, theme := m.container, m.theme
	m.mu.Unlock()
	return m.Init(ctx, c, theme)
}

// Dispose tears down the live instance and cancels any initialization in
// flight. It is safe to call repeatedly.
func (m *Manager) Dispose() {
	m.mu.Lock()
	m.gen++
	b := m.binding
	m.binding = nil
	m.state = StateDisposed
	m.mu.Unlock()

	if b != nil {
		b.dispose()
		m.logger().Info("instance disposed", "binding", b.ID.String())
	}
}

// checkCurrent aborts an initialization that was superseded or whose
// container was detached while it was suspended.
func (m *Manager) checkCurrent(gen uint64, c Container) error {
	m.mu.Lock()
	current := m.gen == gen
	m.mu.Unlock()
	if !current {
		return superseded(c)
	}
	if !c.Attached() {
		return m.fail(gen, chartErrors.New(chartErrors.CodeContainerRemoved, "container was removed during initialization").
			With("container", c.Tag()))
	}
	return nil
}

func (m *Manager) fail(gen uint64, err *chartErrors.ChartError) error {
	m.mu.Lock()
	if m.gen == gen {
		m.state, m.err = StateError, err
	}
	m.mu.Unlock()
	m.logger().Error("initialization failed", "error", err)
	return err
}

func superseded(c Container) error {
	e := chartErrors.New(chartErrors.CodeDisposed, "initialization superseded").With("container", c.Tag())
	e.Recoverable = false
	return e
}

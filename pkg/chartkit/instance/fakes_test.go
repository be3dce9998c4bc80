package instance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves time forward and runs due timers in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeContainer struct {
	mu       sync.Mutex
	tag      string
	w, h     float64
	detached bool
}

func (c *fakeContainer) Tag() string { return c.tag }

func (c *fakeContainer) Size() (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.w, c.h
}

func (c *fakeContainer) Attached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.detached
}

func (c *fakeContainer) resize(w, h float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w, c.h = w, h
}

type setOptionCall struct {
	opt  models.Option
	opts SetOptionOpts
}

type fakeInstance struct {
	mu        sync.Mutex
	calls     []setOptionCall
	current   models.Option
	setErr    error
	resizes   int
	resizeErr error
	disposed  int
	handlers  map[HandlerID]string
	nextID    HandlerID
	actions   []map[string]interface{}
	dataURL   string
	loading   string
}

func newFakeInstance() *fakeInstance {
	return &fakeInstance{handlers: make(map[HandlerID]string)}
}

func (f *fakeInstance) SetOption(opt models.Option, opts SetOptionOpts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.calls = append(f.calls, setOptionCall{opt: opt, opts: opts})
	if opts.NotMerge || f.current == nil {
		f.current = models.Option{}
	}
	for k, v := range opt {
		f.current[k] = v
	}
	return nil
}

func (f *fakeInstance) GetOption() (models.Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := models.Option{}
	for k, v := range f.current {
		out[k] = v
	}
	return out, nil
}

func (f *fakeInstance) Resize() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resizes++
	return f.resizeErr
}

func (f *fakeInstance) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disposed++
}

func (f *fakeInstance) On(event string, h Handler) HandlerID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.handlers[f.nextID] = event
	return f.nextID
}

func (f *fakeInstance) Off(event string, id HandlerID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, id)
}

func (f *fakeInstance) DispatchAction(action map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeInstance) GetDataURL(opts ImageOptions) (string, error) {
	return f.dataURL, nil
}

func (f *fakeInstance) ShowLoading(text string) { f.loading = text }

func (f *fakeInstance) HideLoading() { f.loading = "" }

func (f *fakeInstance) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeEngine struct {
	mu        sync.Mutex
	loads     int
	loadErr   error
	initErr   error
	noInst    bool
	instances []*fakeInstance

	// beforeInit runs inside Init before the instance is created.
	beforeInit func()
}

func (e *fakeEngine) Load(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loads++
	return e.loadErr
}

func (e *fakeEngine) Init(c Container, theme string) (Instance, error) {
	if e.beforeInit != nil {
		e.beforeInit()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initErr != nil {
		return nil, e.initErr
	}
	if e.noInst {
		return nil, nil
	}
	inst := newFakeInstance()
	e.instances = append(e.instances, inst)
	return inst, nil
}

var errBoom = errors.New("boom")

func noSleep(ctx context.Context, d time.Duration) error {
	return nil
}

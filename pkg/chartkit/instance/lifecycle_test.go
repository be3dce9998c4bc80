package instance

import (
	"context"
	"testing"
	"time"

	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
)

func TestManagerInit(t *testing.T) {
	engine := &fakeEngine{}
	m := NewManager(engine, WithSleep(noSleep))
	bound := 0
	m.OnBound(func(*Binding) { bound++ })

	b, err := m.Init(context.Background(), &fakeContainer{tag: "div#chart", w: 400, h: 300}, "light")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if m.State() != StateReady {
		t.Errorf("State = %s, expected ready", m.State())
	}
	if m.Current() != b || b.Theme != "light" {
		t.Errorf("Expected binding to be current")
	}
	if bound != 1 {
		t.Errorf("Expected one bound callback, got %d", bound)
	}
}

func TestManagerZeroSizeSettles(t *testing.T) {
	engine := &fakeEngine{}
	c := &fakeContainer{tag: "div"}
	sleeps := 0
	m := NewManager(engine, WithSettleDelay(10*time.Millisecond), WithSleep(func(ctx context.Context, d time.Duration) error {
		sleeps++
		if d != 10*time.Millisecond {
			t.Errorf("Expected settle delay 10ms, got %v", d)
		}
		c.resize(200, 100)
		return nil
	}))

	if _, err := m.Init(context.Background(), c, ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if sleeps != 1 {
		t.Errorf("Expected one settle wait, got %d", sleeps)
	}
	if len(engine.instances) != 1 {
		t.Errorf("Expected exactly one instance, got %d", len(engine.instances))
	}
}

func TestManagerZeroSizeProceeds(t *testing.T) {
	engine := &fakeEngine{}
	m := NewManager(engine, WithSleep(noSleep))
	if _, err := m.Init(context.Background(), &fakeContainer{tag: "div"}, ""); err != nil {
		t.Fatalf("Expected initialization to proceed with zero size, got %v", err)
	}
	if len(engine.instances) != 1 {
		t.Errorf("Expected one instance, got %d", len(engine.instances))
	}
}

func TestManagerFailures(t *testing.T) {
	tests := []struct {
		name      string
		engine    *fakeEngine
		container Container
		code      chartErrors.Code
	}{
		{"no container", &fakeEngine{}, nil, chartErrors.CodeContainerNotFound},
		{"load failure", &fakeEngine{loadErr: errBoom}, &fakeContainer{w: 1, h: 1}, chartErrors.CodeEngineLoad},
		{"detached", &fakeEngine{}, &fakeContainer{w: 1, h: 1, detached: true}, chartErrors.CodeContainerRemoved},
		{"no instance", &fakeEngine{noInst: true}, &fakeContainer{w: 1, h: 1}, chartErrors.CodeNoInstance},
		{"init error", &fakeEngine{initErr: errBoom}, &fakeContainer{w: 1, h: 1}, chartErrors.CodeNoInstance},
	}

	for _, tt := range tests {
		m := NewManager(tt.engine, WithSleep(noSleep))
		_, err := m.Init(context.Background(), tt.container, "")
		if chartErrors.CodeOf(err) != tt.code {
			t.Errorf("%s: error = %v, expected code %s", tt.name, err, tt.code)
			continue
		}
		if !chartErrors.IsRecoverable(err) {
			t.Errorf("%s: expected a recoverable error", tt.name)
		}
		if m.State() != StateError {
			t.Errorf("%s: state = %s, expected error", tt.name, m.State())
		}
	}
}

func TestManagerContainerRemovedWhileSettling(t *testing.T) {
	c := &fakeContainer{tag: "div"}
	engine := &fakeEngine{}
	m := NewManager(engine, WithSleep(func(ctx context.Context, d time.Duration) error {
		c.detached = true
		return nil
	}))

	_, err := m.Init(context.Background(), c, "")
	if chartErrors.CodeOf(err) != chartErrors.CodeContainerRemoved {
		t.Fatalf("Expected container-removed, got %v", err)
	}
	if len(engine.instances) != 0 {
		t.Errorf("Expected no instance for a removed container")
	}
}

func TestManagerEngineLoadMemoized(t *testing.T) {
	engine := &fakeEngine{loadErr: errBoom}
	m := NewManager(engine, WithSleep(noSleep))
	c := &fakeContainer{w: 1, h: 1}

	if _, err := m.Init(context.Background(), c, ""); err == nil {
		t.Fatalf("Expected load failure")
	}
	engine.loadErr = nil
	if _, err := m.Retry(context.Background()); err != nil {
		t.Fatalf("Retry failed: %v", err)
	}
	if _, err := m.Init(context.Background(), c, ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if engine.loads != 2 {
		t.Errorf("Expected a failed load to be retried and a successful one memoized, got %d loads", engine.loads)
	}
}

func TestManagerReinitDisposesPrevious(t *testing.T) {
	engine := &fakeEngine{}
	m := NewManager(engine, WithSleep(noSleep))
	c := &fakeContainer{w: 1, h: 1}

	first, _ := m.Init(context.Background(), c, "")
	second, _ := m.Init(context.Background(), c, "dark")
	if !first.Disposed() || engine.instances[0].disposed != 1 {
		t.Errorf("Expected the first instance to be disposed")
	}
	if second.Disposed() || m.Current() != second {
		t.Errorf("Expected the second binding to be live")
	}
}

func TestManagerSupersededInit(t *testing.T) {
	engine := &fakeEngine{}
	m := NewManager(engine, WithSleep(noSleep))
	c := &fakeContainer{w: 1, h: 1}

	engine.beforeInit = func() {
		engine.beforeInit = nil
		m.Dispose()
	}
	_, err := m.Init(context.Background(), c, "")
	if chartErrors.CodeOf(err) != chartErrors.CodeDisposed {
		t.Fatalf("Expected superseded initialization, got %v", err)
	}
	if engine.instances[0].disposed != 1 {
		t.Errorf("Expected the late instance to be disposed")
	}
	if m.Current() != nil || m.State() != StateDisposed {
		t.Errorf("Expected no binding after dispose, state %s", m.State())
	}
}

func TestManagerDisposeReentrant(t *testing.T) {
	engine := &fakeEngine{}
	m := NewManager(engine, WithSleep(noSleep))
	if _, err := m.Init(context.Background(), &fakeContainer{w: 1, h: 1}, ""); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	m.Dispose()
	m.Dispose()
	if engine.instances[0].disposed != 1 {
		t.Errorf("Expected exactly one engine dispose, got %d", engine.instances[0].disposed)
	}
	if m.State() != StateDisposed {
		t.Errorf("State = %s, expected disposed", m.State())
	}
}

func TestManagerSettleCancelled(t *testing.T) {
	engine := &fakeEngine{}
	m := NewManager(engine)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Init(ctx, &fakeContainer{tag: "div"}, "")
	if chartErrors.CodeOf(err) != chartErrors.CodeContainerZeroSize {
		t.Errorf("Expected container-zero-size on cancellation, got %v", err)
	}
}

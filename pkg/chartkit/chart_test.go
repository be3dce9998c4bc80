package chartkit

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/builder"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/compiler"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/instance"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

type stepClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*stepTimer
}

type stepTimer struct {
	at   time.Time
	f    func()
	done bool
}

func (t *stepTimer) Stop() bool {
	active := !t.done
	t.done = true
	return active
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) AfterFunc(d time.Duration, f func()) instance.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &stepTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*stepTimer
	for _, t := range c.timers {
		if !t.done && !t.at.After(c.now) {
			t.done = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

func (c *stepClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

type box struct{ detached bool }

func (b *box) Tag() string { return "div#chart" }

func (b *box) Size() (float64, float64) { return 640, 480 }

func (b *box) Attached() bool { return !b.detached }

func noWait(context.Context, time.Duration) error { return nil }

type recorder struct {
	mu       sync.Mutex
	theme    string
	applies  []instance.SetOptionOpts
	current  models.Option
	handlers map[instance.HandlerID]registered
	nextID   instance.HandlerID
	actions  []map[string]interface{}
	disposed bool
	dataURL  string
}

type registered struct {
	event string
	fn    instance.Handler
}

func (r *recorder) SetOption(opt models.Option, opts instance.SetOptionOpts) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applies = append(r.applies, opts)
	if opts.NotMerge || r.current == nil {
		r.current = models.Option{}
	}
	for k, v := range opt {
		r.current[k] = v
	}
	return nil
}

func (r *recorder) GetOption() (models.Option, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := models.Option{}
	for k, v := range r.current {
		out[k] = v
	}
	return out, nil
}

func (r *recorder) Resize() error { return nil }

func (r *recorder) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposed = true
}

func (r *recorder) On(event string, h instance.Handler) instance.HandlerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.handlers[r.nextID] = registered{event: event, fn: h}
	return r.nextID
}

func (r *recorder) Off(event string, id instance.HandlerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, id)
}

func (r *recorder) DispatchAction(action map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	return nil
}

func (r *recorder) GetDataURL(opts instance.ImageOptions) (string, error) {
	return r.dataURL, nil
}

func (r *recorder) ShowLoading(string) {}

func (r *recorder) HideLoading() {}

// fire runs every handler registered for event.
func (r *recorder) fire(event string, params map[string]interface{}) {
	r.mu.Lock()
	var fns []instance.Handler
	for _, h := range r.handlers {
		if h.event == event {
			fns = append(fns, h.fn)
		}
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(params)
	}
}

type recordingEngine struct {
	mu        sync.Mutex
	instances []*recorder
}

func (e *recordingEngine) Load(context.Context) error { return nil }

func (e *recordingEngine) Init(c instance.Container, theme string) (instance.Instance, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := &recorder{theme: theme, handlers: make(map[instance.HandlerID]registered)}
	e.instances = append(e.instances, r)
	return r, nil
}

func (e *recordingEngine) last() *recorder {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.instances[len(e.instances)-1]
}

func lineConfig() compiler.Config {
	return compiler.Config{
		Data: []interface{}{
			map[string]interface{}{"date": "Jan", "s": "A", "v": 10},
			map[string]interface{}{"date": "Feb", "s": "A", "v": 20},
			map[string]interface{}{"date": "Jan", "s": "B", "v": 5},
		},
		XField:     "date",
		YField:     "v",
		GroupField: "s",
	}
}

func mount(t *testing.T, family compiler.Family, cfg compiler.Config, opts ...ChartOption) (*Chart, *recordingEngine) {
	t.Helper()
	engine := &recordingEngine{}
	opts = append([]ChartOption{WithSleep(noWait)}, opts...)
	c := New(engine, family, cfg, opts...)
	if err := c.Mount(context.Background(), &box{}); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	return c, engine
}

func TestOptionsResolution(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name       string
		opts       Options
		merge      bool
		lazy       bool
		autoResize bool
	}{
		{"defaults", DefaultOptions(), true, false, true},
		{"replace", Options{Mode: UpdateReplace}, false, false, true},
		{"overrides", Options{Mode: UpdateMerge, LazyUpdate: &yes, AutoResize: &no}, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.ShouldMerge(); got != tt.merge {
				t.Errorf("ShouldMerge() = %v, expected %v", got, tt.merge)
			}
			if got := tt.opts.ShouldLazyUpdate(); got != tt.lazy {
				t.Errorf("ShouldLazyUpdate() = %v, expected %v", got, tt.lazy)
			}
			if got := tt.opts.ShouldAutoResize(); got != tt.autoResize {
				t.Errorf("ShouldAutoResize() = %v, expected %v", got, tt.autoResize)
			}
		})
	}

	if DefaultOptions().ShouldAutoSelect(false) || !DefaultOptions().ShouldAutoSelect(true) {
		t.Error("AutoSelect should follow the presence of a double-click callback")
	}
	if (Options{AutoSelect: &no}).ShouldAutoSelect(true) {
		t.Error("Explicit AutoSelect should win")
	}
}

func TestMountAppliesOnce(t *testing.T) {
	c, engine := mount(t, compiler.FamilyLine, lineConfig())
	r := engine.last()

	if len(r.applies) != 1 || !r.applies[0].NotMerge {
		t.Fatalf("Expected one full replacement on mount, got %+v", r.applies)
	}
	if c.State() != instance.StateReady {
		t.Errorf("State = %v, expected ready", c.State())
	}
	if c.UnderlyingInstance() != r {
		t.Error("UnderlyingInstance should return the bound instance")
	}

	if err := c.Update(context.Background(), lineConfig()); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(r.applies) != 1 {
		t.Errorf("Expected unchanged update to be skipped, got %d applies", len(r.applies))
	}
}

func TestUpdateDataMerges(t *testing.T) {
	c, engine := mount(t, compiler.FamilyLine, lineConfig())
	r := engine.last()

	err := c.UpdateData(context.Background(), []interface{}{
		map[string]interface{}{"date": "Mar", "s": "A", "v": 1},
	})
	if err != nil {
		t.Fatalf("UpdateData failed: %v", err)
	}
	if len(r.applies) != 2 || r.applies[1].NotMerge {
		t.Fatalf("Expected a merged second apply, got %+v", r.applies)
	}
	xAxis := c.Spec()["xAxis"].(map[string]interface{})
	if !reflect.DeepEqual(xAxis["data"], []interface{}{"Mar"}) {
		t.Errorf("Category axis = %v, expected [Mar]", xAxis["data"])
	}
}

func TestReplaceModeNeverMerges(t *testing.T) {
	c, engine := mount(t, compiler.FamilyBar, lineConfig(), WithOptions(Options{Mode: UpdateReplace}))
	cfg := lineConfig()
	cfg.Title = "Sales"
	if err := c.Update(context.Background(), cfg); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	for i, o := range engine.last().applies {
		if !o.NotMerge {
			t.Errorf("Apply %d merged in replace mode", i)
		}
	}
}

func TestNamedThemeChangeRecreatesInstance(t *testing.T) {
	c, engine := mount(t, compiler.FamilyLine, lineConfig())
	first := engine.last()

	cfg := lineConfig()
	cfg.Theme = builder.Theme{Name: "dark"}
	if err := c.Update(context.Background(), cfg); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	second := engine.last()
	if first == second {
		t.Fatal("Expected a new instance after a named theme change")
	}
	if !first.disposed {
		t.Error("Expected the previous instance to be disposed")
	}
	if second.theme != "dark" {
		t.Errorf("New instance theme = %q, expected dark", second.theme)
	}
	if len(second.applies) != 1 || !second.applies[0].NotMerge {
		t.Errorf("Expected a full replacement on the new instance, got %+v", second.applies)
	}
}

func TestThemeObjectMergesOverCurrent(t *testing.T) {
	c, engine := mount(t, compiler.FamilyLine, lineConfig())
	r := engine.last()

	cfg := lineConfig()
	cfg.Theme = builder.Theme{Object: &builder.ThemeColors{Background: "#123456"}}
	if err := c.Update(context.Background(), cfg); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if len(engine.instances) != 1 {
		t.Errorf("Theme object should not recreate the instance")
	}
	current, _ := r.GetOption()
	if current["backgroundColor"] != "#123456" {
		t.Errorf("backgroundColor = %v, expected #123456", current["backgroundColor"])
	}

	cfg.Theme = builder.Theme{Object: &builder.ThemeColors{Background: "not-a-color"}}
	before := len(r.applies)
	if err := c.Update(context.Background(), cfg); err != nil {
		t.Fatalf("Invalid theme should be skipped, got %v", err)
	}
	current, _ = r.GetOption()
	if current["backgroundColor"] == "not-a-color" {
		t.Error("Invalid theme color reached the instance")
	}
	if len(r.applies) < before {
		t.Error("Applies went backwards")
	}
}

func TestUnmountTearsDown(t *testing.T) {
	clock := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	handlers := instance.Handlers{"click": func(map[string]interface{}) {}}
	var doubles int
	c, engine := mount(t, compiler.FamilyLine, lineConfig(),
		WithClock(clock),
		WithHandlers(handlers),
		WithClickCallbacks(nil, func(instance.Click) { doubles++ }))
	r := engine.last()

	c.HandleItemClick("A", instance.KindLegend, false)
	if clock.pending() == 0 {
		t.Fatal("Expected a pending click timer")
	}

	c.Unmount()
	c.Unmount()

	if !r.disposed {
		t.Error("Expected the instance to be disposed")
	}
	if len(r.handlers) != 0 {
		t.Errorf("Expected every handler unregistered, %d left", len(r.handlers))
	}
	if clock.pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", clock.pending())
	}
	if c.State() != instance.StateDisposed {
		t.Errorf("State = %v, expected disposed", c.State())
	}

	c.HandleItemClick("A", instance.KindLegend, false)
	if doubles != 0 {
		t.Error("Click state survived teardown")
	}
	if err := c.Resize(); chartErrors.CodeOf(err) != chartErrors.CodeDisposed {
		t.Errorf("Resize after unmount = %v, expected instance-disposed", err)
	}
}

func TestSeriesClickDisambiguation(t *testing.T) {
	clock := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	var singles, doubles []string
	var userClicks int
	_, engine := mount(t, compiler.FamilyLine, lineConfig(),
		WithClock(clock),
		WithHandlers(instance.Handlers{"click": func(map[string]interface{}) { userClicks++ }}),
		WithClickCallbacks(
			func(c instance.Click) { singles = append(singles, c.Name) },
			func(c instance.Click) { doubles = append(doubles, c.Name) }))
	r := engine.last()

	click := map[string]interface{}{"componentType": "series", "seriesName": "A"}
	r.fire("click", click)
	clock.Advance(100 * time.Millisecond)
	r.fire("click", click)

	if !reflect.DeepEqual(doubles, []string{"A"}) {
		t.Errorf("doubles = %v, expected [A]", doubles)
	}
	if userClicks != 2 {
		t.Errorf("Caller click handler ran %d times, expected 2", userClicks)
	}

	var hidden []interface{}
	for _, a := range r.actions {
		if a["type"] == "legendUnSelect" {
			hidden = append(hidden, a["name"])
		}
	}
	if !reflect.DeepEqual(hidden, []interface{}{"B"}) {
		t.Errorf("Double click should isolate A, hid %v", hidden)
	}

	r.fire("click", map[string]interface{}{"componentType": "series", "seriesName": "B"})
	clock.Advance(instance.DefaultClickDelay + time.Millisecond)
	if !reflect.DeepEqual(singles, []string{"B"}) {
		t.Errorf("singles = %v, expected [B]", singles)
	}
}

func TestLegendClickDisambiguation(t *testing.T) {
	clock := &stepClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	var doubles []string
	var legendEvents int
	_, engine := mount(t, compiler.FamilyLine, lineConfig(),
		WithClock(clock),
		WithHandlers(instance.Handlers{"legendselectchanged": func(map[string]interface{}) { legendEvents++ }}),
		WithClickCallbacks(nil, func(c instance.Click) {
			if c.Kind == instance.KindLegend {
				doubles = append(doubles, c.Name)
			}
		}))
	r := engine.last()

	toggled := map[string]interface{}{
		"name":     "A",
		"selected": map[string]interface{}{"A": false, "B": true},
	}
	r.fire("legendselectchanged", toggled)
	clock.Advance(100 * time.Millisecond)
	r.fire("legendselectchanged", toggled)

	if !reflect.DeepEqual(doubles, []string{"A"}) {
		t.Errorf("legend doubles = %v, expected [A]", doubles)
	}
	if legendEvents != 2 {
		t.Errorf("Caller legend handler ran %d times, expected 2", legendEvents)
	}

	var restored, hidden []interface{}
	for _, a := range r.actions[:2] {
		if a["type"] == "legendSelect" {
			restored = append(restored, a["name"])
		}
	}
	for _, a := range r.actions {
		if a["type"] == "legendUnSelect" {
			hidden = append(hidden, a["name"])
		}
	}
	if !reflect.DeepEqual(restored, []interface{}{"A", "A"}) {
		t.Errorf("Engine toggles should be undone, got %v", r.actions)
	}
	if !reflect.DeepEqual(hidden, []interface{}{"B"}) {
		t.Errorf("Double click should isolate A, hid %v", hidden)
	}
}

func TestSetHandlersReplacesLiveHandlers(t *testing.T) {
	var first, second int
	c, engine := mount(t, compiler.FamilyLine, lineConfig(),
		WithHandlers(instance.Handlers{"click": func(map[string]interface{}) { first++ }}))
	r := engine.last()

	c.SetHandlers(instance.Handlers{
		"click":     func(map[string]interface{}) { second++ },
		"mouseover": func(map[string]interface{}) {},
	})
	r.fire("click", map[string]interface{}{})

	if first != 0 || second != 1 {
		t.Errorf("first = %d, second = %d, expected 0 and 1", first, second)
	}
	if len(r.handlers) != 2 {
		t.Errorf("Expected 2 registrations, got %d", len(r.handlers))
	}
}

func TestShiftClickFromEventParams(t *testing.T) {
	var selected []string
	c, engine := mount(t, compiler.FamilyLine, lineConfig(),
		WithSelectionChange(func(s []string) { selected = s }))
	r := engine.last()

	r.fire("click", map[string]interface{}{
		"componentType": "series",
		"seriesName":    "B",
		"event":         map[string]interface{}{"event": map[string]interface{}{"shiftKey": true}},
	})
	if !reflect.DeepEqual(selected, []string{"B"}) {
		t.Errorf("selected = %v, expected [B]", selected)
	}
	if !reflect.DeepEqual(c.Selected(), []string{"B"}) {
		t.Errorf("Selected() = %v, expected [B]", c.Selected())
	}
}

func TestHighlightActions(t *testing.T) {
	c, engine := mount(t, compiler.FamilyLine, lineConfig())
	r := engine.last()

	one := 1
	if err := c.Highlight(3, &one); err != nil {
		t.Fatalf("Highlight failed: %v", err)
	}
	if err := c.ClearHighlight(); err != nil {
		t.Fatalf("ClearHighlight failed: %v", err)
	}

	var types []interface{}
	for _, a := range r.actions {
		types = append(types, a["type"])
	}
	expected := []interface{}{"highlight", "showTip", "downplay", "hideTip"}
	if !reflect.DeepEqual(types, expected) {
		t.Errorf("actions = %v, expected %v", types, expected)
	}
	if r.actions[0]["seriesIndex"] != 1 || r.actions[0]["dataIndex"] != 3 {
		t.Errorf("Unexpected highlight payload: %v", r.actions[0])
	}
}

func TestFocusTask(t *testing.T) {
	cfg := compiler.Config{Data: []interface{}{
		map[string]interface{}{"name": "build", "start": "2024-01-01", "end": "2024-01-11"},
	}}
	c, engine := mount(t, compiler.FamilyGantt, cfg)
	r := engine.last()

	if err := c.FocusTask("build"); err != nil {
		t.Fatalf("FocusTask failed: %v", err)
	}
	zoom := r.actions[len(r.actions)-1]
	if zoom["type"] != "dataZoom" {
		t.Fatalf("Expected a dataZoom action, got %v", zoom)
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(-24 * time.Hour)
	if zoom["startValue"] != start.UnixMilli() {
		t.Errorf("startValue = %v, expected %d", zoom["startValue"], start.UnixMilli())
	}

	if err := c.FocusTask("missing"); chartErrors.CodeOf(err) != chartErrors.CodeInvalidData {
		t.Errorf("FocusTask(missing) = %v, expected invalid-data-format", err)
	}
}

func TestExportImage(t *testing.T) {
	c, engine := mount(t, compiler.FamilyPie, compiler.Config{Data: []interface{}{
		map[string]interface{}{"name": "a", "value": 1},
	}})
	payload := []byte("\x89PNG fake")
	engine.last().dataURL = "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	if _, err := c.ExportImage("gif", instance.ImageOptions{}); chartErrors.CodeOf(err) != chartErrors.CodeExport {
		t.Errorf("ExportImage(gif) = %v, expected export-failed", err)
	}

	path := filepath.Join(t.TempDir(), "chart.png")
	if err := c.SaveAsImage(path, instance.ImageOptions{}); err != nil {
		t.Fatalf("SaveAsImage failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Saved %q, expected %q", got, payload)
	}
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"base64", "data:image/png;base64,aGVsbG8=", "hello", false},
		{"svg", "data:image/svg+xml;charset=utf-8,%3Csvg%2F%3E", "<svg/>", false},
		{"not a data url", "http://example.com/a.png", "", true},
		{"no payload", "data:image/png;base64", "", true},
		{"bad base64", "data:image/png;base64,@@@", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDataURL(tt.input)
			if tt.wantErr {
				var ce *chartErrors.ChartError
				if !errors.As(err, &ce) || ce.Code != chartErrors.CodeExport {
					t.Errorf("Expected export-failed, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeDataURL failed: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("DecodeDataURL() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestMountWithoutContainer(t *testing.T) {
	c := New(&recordingEngine{}, compiler.FamilyLine, lineConfig())
	err := c.Mount(context.Background(), nil)
	if chartErrors.CodeOf(err) != chartErrors.CodeContainerNotFound {
		t.Errorf("Mount(nil) = %v, expected container-not-found", err)
	}
	if c.State() != instance.StateError {
		t.Errorf("State = %v, expected error", c.State())
	}
}

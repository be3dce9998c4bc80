package instance

import (
	"sync"
	"time"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
)

// DefaultClickDelay is the double-click window.
const DefaultClickDelay = 300 * time.Millisecond

// ItemKind is the kind of a clicked item.
type ItemKind string

const (
	KindLegend ItemKind = "legend"
	KindSeries ItemKind = "series"
)

// Click is a resolved click gesture.
type Click struct {
	Name string
	Kind ItemKind
}

// Visibility shows and hides items by name.
type Visibility interface {
	Show(names []string)
	Hide(names []string)
}

// Disambiguator tells single, double and shift clicks on legend and series
// items apart. It tracks its own selection, independent of the engine's.
type Disambiguator struct {
	clock      Clock
	delay      time.Duration
	visibility Visibility

	// AutoSelect makes a double click isolate the item, or restore all
	// items when some are hidden.
	AutoSelect bool
	// Items lists every item name; hidden and shown sets are derived from it.
	Items func() []string
	// OnSingleClick runs when a click was not followed by a second one
	// within the delay.
	OnSingleClick func(Click)
	// OnDoubleClick runs on a double click.
	OnDoubleClick func(Click)
	// OnSelectionChange runs after a shift click with the selected names.
	OnSelectionChange func(selected []string)

	mu         sync.Mutex
	pending    bool
	last       Click
	lastAt     time.Time
	timer      Timer
	gen        uint64
	selected   []string
	allVisible bool
}

// NewDisambiguator creates a Disambiguator. visibility may be nil when no
// items should be shown or hidden.
func NewDisambiguator(clock Clock, delay time.Duration, visibility Visibility) *Disambiguator {
	if clock == nil {
		clock = RealClock()
	}
	if delay <= 0 {
		delay = DefaultClickDelay
	}
	return &Disambiguator{
		clock:      clock,
		delay:      delay,
		visibility: visibility,
		allVisible: true,
	}
}

// Click feeds one click on item name of the given kind.
func (d *Disambiguator) Click(name string, kind ItemKind, shift bool) {
	if shift {
		d.shiftClick(name)
		return
	}

	ev := Click{Name: name, Kind: kind}
	now := d.clock.Now()

	d.mu.Lock()
	if d.pending && d.last == ev && now.Sub(d.lastAt) <= d.delay {
		d.clearTracking()
		var show, hide []string
		if d.AutoSelect {
			show, hide = d.toggleIsolation(name)
		}
		cb := d.OnDoubleClick
		d.mu.Unlock()

		d.apply(show, hide)
		logging.Logger().Debug("double click", "item", name, "kind", string(kind))
		if cb != nil {
			cb(ev)
		}
		return
	}

	d.clearTracking()
	d.pending, d.last, d.lastAt = true, ev, now
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.expire(gen, ev) })
	d.mu.Unlock()
}

// expire resolves a pending click as a single click.
func (d *Disambiguator) expire(gen uint64, ev Click) {
	d.mu.Lock()
	if d.gen != gen || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.timer = nil
	cb := d.OnSingleClick
	d.mu.Unlock()

	if cb != nil {
		cb(ev)
	}
}

// toggleIsolation isolates name when every item is visible and restores all
// items otherwise.
func (d *Disambiguator) toggleIsolation(name string) (show, hide []string) {
	if d.allVisible {
		d.selected = []string{name}
		d.allVisible = false
		return []string{name}, d.others(d.selected)
	}
	d.selected = nil
	d.allVisible = true
	return d.items(), nil
}

func (d *Disambiguator) shiftClick(name string) {
	d.mu.Lock()
	var show, hide []string
	if i := indexOf(d.selected, name); i >= 0 {
		d.selected = append(d.selected[:i:i], d.selected[i+1:]...)
		if len(d.selected) == 0 {
			d.allVisible = true
			show = d.items()
		} else {
			hide = []string{name}
		}
	} else {
		d.selected = append(d.selected, name)
		if d.allVisible {
			d.allVisible = false
			hide = d.others(d.selected)
		} else {
			show = []string{name}
		}
	}
	selected := append([]string(nil), d.selected...)
	cb := d.OnSelectionChange
	d.mu.Unlock()

	d.apply(show, hide)
	if cb != nil {
		cb(selected)
	}
}

// Selected returns the shift-selected items in selection order.
func (d *Disambiguator) Selected() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.selected...)
}

// AllVisible reports whether no manual selection is in effect.
func (d *Disambiguator) AllVisible() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allVisible
}

// SetVisibility replaces the visibility target.
func (d *Disambiguator) SetVisibility(v Visibility) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.visibility = v
}

// Reset clears click tracking and selection and cancels the pending timer.
// It is called whenever the bound instance changes and on teardown.
func (d *Disambiguator) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearTracking()
	d.selected = nil
	d.allVisible = true
}

func (d *Disambiguator) clearTracking() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.pending = false
	d.last = Click{}
	d.lastAt = time.Time{}
}

func (d *Disambiguator) apply(show, hide []string) {
	d.mu.Lock()
	v := d.visibility
	d.mu.Unlock()
	if v == nil {
		return
	}
	if len(hide) > 0 {
		v.Hide(hide)
	}
	if len(show) > 0 {
		v.Show(show)
	}
}

func (d *Disambiguator) items() []string {
	if d.Items == nil {
		return nil
	}
	return d.Items()
}

func (d *Disambiguator) others(keep []string) []string {
	var out []string
	for _, n := range d.items() {
		if indexOf(keep, n) < 0 {
			out = append(out, n)
		}
	}
	return out
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// ActionVisibility shows and hides legend items of the current instance
// through engine actions.
type ActionVisibility struct {
	Current func() *Binding
}

var _ Visibility = ActionVisibility{}

func (a ActionVisibility) Show(names []string) {
	a.dispatch("legendSelect", names)
}

func (a ActionVisibility) Hide(names []string) {
	a.dispatch("legendUnSelect", names)
}

func (a ActionVisibility) dispatch(action string, names []string) {
	b := a.Current()
	if b.Disposed() {
		return
	}
	for _, n := range names {
		if err := b.Instance.DispatchAction(map[string]interface{}{"type": action, "name": n}); err != nil {
			logging.Logger().Warn("visibility action failed", "action", action, "item", n, "error", err)
		}
	}
}

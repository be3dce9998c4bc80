package chartkit

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/compiler"
	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/instance"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// Compile turns cfg into the engine specification of the given family.
func Compile(family compiler.Family, cfg compiler.Config) (models.Option, error) {
	return compiler.Compile(family, cfg)
}

// Chart binds one chart configuration to a container through an engine
// instance. Its methods are safe for concurrent use.
type Chart struct {
	family compiler.Family
	opts   Options

	clock       instance.Clock
	resizeDelay time.Duration
	clickDelay  time.Duration
	managerOpts []instance.ManagerOption
	handlers    instance.Handlers
	observer    instance.SizeObserver
	viewport    instance.ViewportListener
	onSingle    func(instance.Click)
	onDouble    func(instance.Click)
	onSelection func([]string)

	manager *instance.Manager
	sync    *instance.Synchronizer
	resize  *instance.ResizeCoordinator
	events  instance.EventBridge
	clicks  *instance.Disambiguator

	mu   sync.Mutex
	cfg  compiler.Config
	spec models.Option
}

// New creates a Chart of the given family. Nothing is rendered until Mount.
func New(engine instance.Engine, family compiler.Family, cfg compiler.Config, opts ...ChartOption) *Chart {
	c := &Chart{
		family: family,
		opts:   DefaultOptions(),
		cfg:    cfg,
	}
	for _, o := range opts {
		o(c)
	}
	if c.clock == nil {
		c.clock = instance.RealClock()
	}

	c.manager = instance.NewManager(engine, c.managerOpts...)
	c.sync = instance.NewSynchronizer()
	c.resize = instance.NewResizeCoordinator(c.clock, c.resizeDelay, c.manager.Current)
	c.clicks = instance.NewDisambiguator(c.clock, c.clickDelay, instance.ActionVisibility{Current: c.manager.Current})
	c.clicks.AutoSelect = c.opts.ShouldAutoSelect(c.onDouble != nil)
	c.clicks.Items = c.itemNames
	c.clicks.OnSingleClick = c.onSingle
	c.clicks.OnDoubleClick = c.onDouble
	c.clicks.OnSelectionChange = c.onSelection
	c.events.SetHandlers(c.eventHandlers())
	c.manager.OnBound(c.bound)
	return c
}

// bound runs after every successful initialization, before the first
// specification reaches the new instance.
func (c *Chart) bound(b *instance.Binding) {
	c.clicks.Reset()
	c.events.Bind(b)
	if c.opts.ShouldAutoResize() {
		c.resize.Attach(b.Container, c.observer, c.viewport)
	}
}

// eventHandlers adds click disambiguation for series items and legend items
// to the caller's handlers when click callbacks are set.
func (c *Chart) eventHandlers() instance.Handlers {
	c.mu.Lock()
	user := c.handlers
	c.mu.Unlock()

	h := make(instance.Handlers, len(user)+2)
	for name, fn := range user {
		h[name] = fn
	}
	if c.onSingle == nil && c.onDouble == nil && c.onSelection == nil {
		return h
	}
	onClick := h["click"]
	h["click"] = func(params map[string]interface{}) {
		if kind, _ := params["componentType"].(string); kind == "series" {
			if name, _ := params["seriesName"].(string); name != "" {
				c.clicks.Click(name, instance.KindSeries, shiftKey(params))
			}
		}
		if onClick != nil {
			onClick(params)
		}
	}
	onLegend := h[legendEvent]
	h[legendEvent] = func(params map[string]interface{}) {
		if name, _ := params["name"].(string); name != "" {
			if c.clicks.AutoSelect {
				c.restoreLegend(name, params)
			}
			c.clicks.Click(name, instance.KindLegend, shiftKey(params))
		}
		if onLegend != nil {
			onLegend(params)
		}
	}
	return h
}

// legendEvent is the engine event fired when a legend item is clicked.
const legendEvent = "legendselectchanged"

// restoreLegend undoes the engine's own toggle of a clicked legend item, so
// visibility changes only through the disambiguator.
func (c *Chart) restoreLegend(name string, params map[string]interface{}) {
	selected, _ := params["selected"].(map[string]interface{})
	shown, ok := selected[name].(bool)
	if !ok {
		return
	}
	action := "legendSelect"
	if shown {
		action = "legendUnSelect"
	}
	if err := c.dispatch(map[string]interface{}{"type": action, "name": name}); err != nil {
		logging.Logger().Warn("legend restore failed", "item", name, "error", err)
	}
}

// SetHandlers replaces the caller's engine event handlers. The live instance
// gets the new set at once; later instances get it when they are bound.
func (c *Chart) SetHandlers(h instance.Handlers) {
	c.mu.Lock()
	c.handlers = h
	c.mu.Unlock()
	c.events.SetHandlers(c.eventHandlers())
}

func shiftKey(params map[string]interface{}) bool {
	ev, _ := params["event"].(map[string]interface{})
	if inner, ok := ev["event"].(map[string]interface{}); ok {
		ev = inner
	}
	shift, _ := ev["shiftKey"].(bool)
	return shift
}

// Mount initializes an instance on container and applies the current
// configuration to it.
func (c *Chart) Mount(ctx context.Context, container instance.Container) error {
	b, err := c.manager.Init(ctx, container, c.themeName())
	if err != nil {
		return err
	}
	return c.applyAll(b)
}

// Retry re-attempts a failed initialization from scratch.
func (c *Chart) Retry(ctx context.Context) error {
	b, err := c.manager.Retry(ctx)
	if err != nil {
		return err
	}
	return c.applyAll(b)
}

// Update replaces the configuration. A change of named theme recreates the
// instance; a changed theme object is merged over the instance's
// specification after the update.
func (c *Chart) Update(ctx context.Context, cfg compiler.Config) error {
	c.mu.Lock()
	old := c.cfg
	c.cfg = cfg
	c.mu.Unlock()

	b := c.manager.Current()
	if b == nil {
		return nil
	}
	if old.Theme.BaseName() != cfg.Theme.BaseName() {
		logging.Logger().Info("named theme changed, recreating instance",
			"from", old.Theme.BaseName(), "to", cfg.Theme.BaseName())
		nb, err := c.manager.Init(ctx, b.Container, cfg.Theme.BaseName())
		if err != nil {
			return err
		}
		return c.applyAll(nb)
	}
	if err := c.apply(b); err != nil {
		return err
	}
	if cfg.Theme.IsObject() && !reflect.DeepEqual(old.Theme.Object, cfg.Theme.Object) {
		return c.applyTheme(b)
	}
	return nil
}

// UpdateData replaces the chart data. Explicit series are dropped so the new
// data takes effect.
func (c *Chart) UpdateData(ctx context.Context, data []interface{}) error {
	c.mu.Lock()
	cfg := c.cfg
	c.mu.Unlock()
	cfg.Data = data
	cfg.Series = nil
	return c.Update(ctx, cfg)
}

// Unmount disposes the instance, clears every pending timer and detaches
// every observer and handler. It is safe to call repeatedly.
func (c *Chart) Unmount() {
	c.resize.Detach()
	c.clicks.Reset()
	c.events.Unbind()
	c.manager.Dispose()
	c.sync.Reset()
}

// State returns the lifecycle state of the chart's instance.
func (c *Chart) State() instance.State {
	return c.manager.State()
}

// Err returns the error of the last failed initialization.
func (c *Chart) Err() error {
	return c.manager.Err()
}

// Spec returns the last compiled specification.
func (c *Chart) Spec() models.Option {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec
}

// UnderlyingInstance returns the live engine instance, or nil.
func (c *Chart) UnderlyingInstance() instance.Instance {
	b := c.manager.Current()
	if b == nil {
		return nil
	}
	return b.Instance
}

func (c *Chart) themeName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Theme.BaseName()
}

// applyAll applies the configuration to a fresh binding, followed by its
// theme object if one is set.
func (c *Chart) applyAll(b *instance.Binding) error {
	if err := c.apply(b); err != nil {
		return err
	}
	c.mu.Lock()
	object := c.cfg.Theme.IsObject()
	c.mu.Unlock()
	if object {
		return c.applyTheme(b)
	}
	return nil
}

func (c *Chart) apply(b *instance.Binding) error {
	c.mu.Lock()
	cfg := c.cfg
	c.mu.Unlock()

	spec, err := compiler.Compile(c.family, cfg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.spec = spec
	c.mu.Unlock()

	_, err = c.sync.Apply(b, spec, instance.SetOptionOpts{
		NotMerge:   !c.opts.ShouldMerge(),
		LazyUpdate: c.opts.ShouldLazyUpdate(),
	})
	return err
}

func (c *Chart) applyTheme(b *instance.Binding) error {
	c.mu.Lock()
	theme := c.cfg.Theme
	c.mu.Unlock()

	colors, err := theme.Resolve()
	if err != nil {
		logging.Logger().Warn("theme skipped", "error", err)
		return nil
	}
	return c.sync.ApplyTheme(b, colors)
}

// itemNames lists the legend items of the compiled specification, or the
// series names when it has no legend data.
func (c *Chart) itemNames() []string {
	spec := c.Spec()
	var names []string
	if legend, ok := spec["legend"].(map[string]interface{}); ok {
		if list, ok := legend["data"].([]interface{}); ok {
			for _, v := range list {
				switch v := v.(type) {
				case string:
					names = append(names, v)
				case map[string]interface{}:
					if n, ok := v["name"].(string); ok {
						names = append(names, n)
					}
				}
			}
		}
	}
	if len(names) > 0 {
		return names
	}
	for _, s := range spec.Series() {
		if m, ok := s.(map[string]interface{}); ok {
			if n, ok := m["name"].(string); ok {
				names = append(names, n)
			}
		}
	}
	return names
}

func (c *Chart) live() (*instance.Binding, error) {
	b := c.manager.Current()
	if b.Disposed() {
		return nil, chartErrors.New(chartErrors.CodeDisposed, "chart has no live instance").
			Suggest("mount the chart first")
	}
	return b, nil
}

func (c *Chart) dispatch(action map[string]interface{}) error {
	b, err := c.live()
	if err != nil {
		return err
	}
	return b.Instance.DispatchAction(action)
}

// Resize resizes the instance to its container immediately.
func (c *Chart) Resize() error {
	b, err := c.live()
	if err != nil {
		return err
	}
	return b.Instance.Resize()
}

// ShowLoading shows the engine loading overlay with an optional text.
func (c *Chart) ShowLoading(text string) {
	if b, err := c.live(); err == nil {
		b.Instance.ShowLoading(text)
	}
}

// HideLoading hides the loading overlay.
func (c *Chart) HideLoading() {
	if b, err := c.live(); err == nil {
		b.Instance.HideLoading()
	}
}

// HandleItemClick feeds a legend or series click to the double-click
// disambiguator.
func (c *Chart) HandleItemClick(name string, kind instance.ItemKind, shift bool) {
	c.clicks.Click(name, kind, shift)
}

// Selected returns the items picked by shift clicks.
func (c *Chart) Selected() []string {
	return c.clicks.Selected()
}

// Highlight highlights the data item at dataIndex, in every series or only
// in seriesIndex.
func (c *Chart) Highlight(dataIndex int, seriesIndex *int) error {
	action := map[string]interface{}{"type": "highlight", "dataIndex": dataIndex}
	if seriesIndex != nil {
		action["seriesIndex"] = *seriesIndex
	}
	if err := c.dispatch(action); err != nil {
		return err
	}
	tip := map[string]interface{}{"type": "showTip", "dataIndex": dataIndex, "seriesIndex": 0}
	if seriesIndex != nil {
		tip["seriesIndex"] = *seriesIndex
	}
	return c.dispatch(tip)
}

// ClearHighlight removes every highlight and hides the tooltip.
func (c *Chart) ClearHighlight() error {
	if err := c.dispatch(map[string]interface{}{"type": "downplay"}); err != nil {
		return err
	}
	return c.dispatch(map[string]interface{}{"type": "hideTip"})
}

// SelectSlice selects the pie slice called name.
func (c *Chart) SelectSlice(name string) error {
	return c.dispatch(map[string]interface{}{"type": "select", "seriesIndex": 0, "name": name})
}

// UnselectSlice clears the selection of the pie slice called name.
func (c *Chart) UnselectSlice(name string) error {
	return c.dispatch(map[string]interface{}{"type": "unselect", "seriesIndex": 0, "name": name})
}

// FocusNode highlights a sankey node together with its adjacent links.
func (c *Chart) FocusNode(name string) error {
	if err := c.dispatch(map[string]interface{}{"type": "downplay", "seriesIndex": 0}); err != nil {
		return err
	}
	return c.dispatch(map[string]interface{}{"type": "highlight", "seriesIndex": 0, "name": name})
}

// ZoomToRange zooms the time axis to [start, end].
func (c *Chart) ZoomToRange(start, end time.Time) error {
	if end.Before(start) {
		start, end = end, start
	}
	return c.dispatch(map[string]interface{}{
		"type":       "dataZoom",
		"startValue": start.UnixMilli(),
		"endValue":   end.UnixMilli(),
	})
}

// FocusTask highlights the gantt task called name and zooms to it with a
// margin of a tenth of its duration on each side.
func (c *Chart) FocusTask(name string) error {
	start, end, ok := c.taskRange(name)
	if !ok {
		return chartErrors.New(chartErrors.CodeInvalidData, "task not found").With("task", name)
	}
	if err := c.dispatch(map[string]interface{}{"type": "highlight", "seriesIndex": 0, "name": name}); err != nil {
		return err
	}
	margin := end.Sub(start) / 10
	return c.ZoomToRange(start.Add(-margin), end.Add(margin))
}

func (c *Chart) taskRange(name string) (time.Time, time.Time, bool) {
	series := c.Spec().Series()
	if len(series) == 0 {
		return time.Time{}, time.Time{}, false
	}
	s, _ := series[0].(map[string]interface{})
	items, _ := s["data"].([]interface{})
	for _, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok || m["name"] != name {
			continue
		}
		v, _ := m["value"].([]interface{})
		if len(v) < 3 {
			continue
		}
		from, ok1 := v[1].(int64)
		to, ok2 := v[2].(int64)
		if ok1 && ok2 {
			return time.UnixMilli(from), time.UnixMilli(to), true
		}
	}
	return time.Time{}, time.Time{}, false
}

var imageFormats = map[string]string{
	"png":  "png",
	"jpg":  "jpeg",
	"jpeg": "jpeg",
	"svg":  "svg",
}

// ExportImage renders the instance to a data URL in the given format
// (png, jpeg or svg).
func (c *Chart) ExportImage(format string, opts instance.ImageOptions) (string, error) {
	typ, ok := imageFormats[strings.ToLower(format)]
	if !ok {
		return "", chartErrors.New(chartErrors.CodeExport, "unsupported image format").
			With("format", format).
			Suggest("use png, jpeg or svg")
	}
	b, err := c.live()
	if err != nil {
		return "", err
	}
	opts.Type = typ
	if opts.PixelRatio <= 0 {
		opts.PixelRatio = 2
	}
	u, err := b.Instance.GetDataURL(opts)
	if err != nil {
		return "", chartErrors.Wrap(chartErrors.CodeExport, err, "engine could not export the chart").
			With("format", typ)
	}
	return u, nil
}

// SaveAsImage exports the instance and writes the image to filename. The
// format is opts.Type, or the file extension when it is empty.
func (c *Chart) SaveAsImage(filename string, opts instance.ImageOptions) error {
	format := opts.Type
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(filename), ".")
	}
	u, err := c.ExportImage(format, opts)
	if err != nil {
		return err
	}
	img, err := DecodeDataURL(u)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, img, 0o644); err != nil {
		return chartErrors.Wrap(chartErrors.CodeExport, err, "image could not be written").
			With("file", filename)
	}
	logging.Logger().Info("image saved", "file", filename, "bytes", len(img))
	return nil
}

// DecodeDataURL returns the payload of a base64 or percent-encoded data URL.
func DecodeDataURL(u string) ([]byte, error) {
	rest, ok := strings.CutPrefix(u, "data:")
	if !ok {
		return nil, chartErrors.New(chartErrors.CodeExport, "not a data URL")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, chartErrors.New(chartErrors.CodeExport, "data URL has no payload")
	}
	if strings.HasSuffix(meta, ";base64") {
		img, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, chartErrors.Wrap(chartErrors.CodeExport, err, "data URL payload is not base64")
		}
		return img, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, chartErrors.Wrap(chartErrors.CodeExport, err, fmt.Sprintf("data URL payload of %q does not decode", meta))
	}
	return []byte(text), nil
}

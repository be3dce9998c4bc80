//go:build js && wasm

package jsengine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"syscall/js"

	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/instance"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/logging"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/output"
)

// Engine creates instances through the engine's global object.
type Engine struct {
	// Global names the engine object, "echarts" when empty.
	Global string
	// ScriptURL is loaded when the global object is missing.
	ScriptURL string
	// StatURL, when set, loads the statistics extension and registers its
	// clustering and regression transforms.
	StatURL string
}

var _ instance.Engine = (*Engine)(nil)

func (e *Engine) global() js.Value {
	name := e.Global
	if name == "" {
		name = "echarts"
	}
	return js.Global().Get(name)
}

// Load injects the engine script unless the engine is already present.
func (e *Engine) Load(ctx context.Context) error {
	if g := e.global(); g.IsUndefined() || g.IsNull() {
		url := e.ScriptURL
		if url == "" {
			url = output.DefaultEngineURL
		}
		if err := loadScript(ctx, url); err != nil {
			return err
		}
	}
	if e.StatURL == "" {
		return nil
	}
	if stat := js.Global().Get("ecStat"); stat.IsUndefined() {
		if err := loadScript(ctx, e.StatURL); err != nil {
			return err
		}
	}
	return guard(func() {
		transforms := js.Global().Get("ecStat").Get("transform")
		e.global().Call("registerTransform", transforms.Get("clustering"))
		e.global().Call("registerTransform", transforms.Get("regression"))
	})
}

// loadScript appends a script element and waits for it to load.
func loadScript(ctx context.Context, url string) error {
	done := make(chan error, 1)
	doc := js.Global().Get("document")
	script := doc.Call("createElement", "script")

	onLoad := js.FuncOf(func(this js.Value, args []js.Value) any {
		done <- nil
		return nil
	})
	onError := js.FuncOf(func(this js.Value, args []js.Value) any {
		done <- fmt.Errorf("script %s failed to load", url)
		return nil
	})
	defer onLoad.Release()
	defer onError.Release()

	script.Call("addEventListener", "load", onLoad)
	script.Call("addEventListener", "error", onError)
	script.Set("src", url)
	doc.Get("head").Call("appendChild", script)
	logging.Logger().Debug("loading script", "url", url)

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Init creates an instance on c, which must be an *Element.
func (e *Engine) Init(c instance.Container, theme string) (instance.Instance, error) {
	el, ok := c.(*Element)
	if !ok {
		return nil, fmt.Errorf("container %s is not a DOM element", c.Tag())
	}
	var th any = js.Null()
	if theme != "" && theme != "light" {
		th = theme
	}
	var v js.Value
	if err := guard(func() { v = e.global().Call("init", el.Value, th) }); err != nil {
		return nil, err
	}
	if v.IsUndefined() || v.IsNull() {
		return nil, nil
	}
	return &Instance{v: v, funcs: make(map[instance.HandlerID]js.Func)}, nil
}

// Instance is a live engine instance.
type Instance struct {
	v js.Value

	mu     sync.Mutex
	nextID instance.HandlerID
	funcs  map[instance.HandlerID]js.Func
}

var _ instance.Instance = (*Instance)(nil)

// guard turns a JavaScript exception raised by fn into an error.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if jsErr, ok := r.(js.Error); ok {
				err = jsErr
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}

// object evaluates the JavaScript literal of opt.
func object(opt models.Option) (js.Value, error) {
	script, err := output.ToScript(opt, false)
	if err != nil {
		return js.Undefined(), err
	}
	var v js.Value
	err = guard(func() { v = js.Global().Get("Function").New("return " + script + ";").Invoke() })
	return v, err
}

func (i *Instance) SetOption(opt models.Option, opts instance.SetOptionOpts) error {
	obj, err := object(opt)
	if err != nil {
		return err
	}
	return guard(func() {
		i.v.Call("setOption", obj, map[string]any{"notMerge": opts.NotMerge, "lazyUpdate": opts.LazyUpdate})
	})
}

// GetOption returns the specification held by the engine. Functions do not
// survive the round trip.
func (i *Instance) GetOption() (models.Option, error) {
	var text string
	err := guard(func() {
		text = js.Global().Get("JSON").Call("stringify", i.v.Call("getOption")).String()
	})
	if err != nil {
		return nil, err
	}
	var opt models.Option
	if err := json.Unmarshal([]byte(text), &opt); err != nil {
		return nil, err
	}
	return opt, nil
}

func (i *Instance) Resize() error {
	return guard(func() { i.v.Call("resize") })
}

func (i *Instance) Dispose() {
	i.mu.Lock()
	for id, fn := range i.funcs {
		fn.Release()
		delete(i.funcs, id)
	}
	i.mu.Unlock()
	if err := guard(func() { i.v.Call("dispose") }); err != nil {
		logging.Logger().Warn("dispose failed", "error", err)
	}
}

func (i *Instance) On(event string, h instance.Handler) instance.HandlerID {
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			h(eventParams(args[0]))
		} else {
			h(map[string]interface{}{})
		}
		return nil
	})
	i.mu.Lock()
	i.nextID++
	id := i.nextID
	i.funcs[id] = fn
	i.mu.Unlock()
	i.v.Call("on", event, fn)
	return id
}

func (i *Instance) Off(event string, id instance.HandlerID) {
	i.mu.Lock()
	fn, ok := i.funcs[id]
	delete(i.funcs, id)
	i.mu.Unlock()
	if !ok {
		return
	}
	_ = guard(func() { i.v.Call("off", event, fn) })
	fn.Release()
}

func (i *Instance) DispatchAction(action map[string]interface{}) error {
	obj, err := object(models.Option(action))
	if err != nil {
		return err
	}
	return guard(func() { i.v.Call("dispatchAction", obj) })
}

func (i *Instance) GetDataURL(opts instance.ImageOptions) (string, error) {
	b, err := json.Marshal(opts)
	if err != nil {
		return "", err
	}
	var u string
	err = guard(func() {
		arg := js.Global().Get("JSON").Call("parse", string(b))
		u = i.v.Call("getDataURL", arg).String()
	})
	if err != nil {
		return "", chartErrors.Wrap(chartErrors.CodeExport, err, "engine could not export the chart")
	}
	return u, nil
}

func (i *Instance) ShowLoading(text string) {
	_ = guard(func() { i.v.Call("showLoading", "default", map[string]any{"text": text}) })
}

func (i *Instance) HideLoading() {
	_ = guard(func() { i.v.Call("hideLoading") })
}

// eventKeys are the event parameters copied to Go. The native event is
// reduced to its modifier keys.
var eventKeys = []string{
	"type", "componentType", "componentIndex", "seriesType", "seriesIndex",
	"seriesName", "name", "dataIndex", "dataType", "value", "color", "selected",
}

func eventParams(v js.Value) map[string]interface{} {
	out := make(map[string]interface{}, len(eventKeys)+1)
	if v.Type() != js.TypeObject {
		return out
	}
	for _, k := range eventKeys {
		if p := v.Get(k); !p.IsUndefined() {
			out[k] = toGo(p)
		}
	}
	if ev := v.Get("event"); ev.Type() == js.TypeObject {
		native := ev.Get("event")
		if native.Type() != js.TypeObject {
			native = ev
		}
		keys := make(map[string]interface{})
		for _, k := range []string{"shiftKey", "ctrlKey", "altKey", "metaKey"} {
			if b := native.Get(k); b.Type() == js.TypeBoolean {
				keys[k] = b.Bool()
			}
		}
		out["event"] = map[string]interface{}{"event": keys}
	}
	return out
}

// toGo converts scalars directly and plain data through JSON.
func toGo(v js.Value) interface{} {
	switch v.Type() {
	case js.TypeString:
		return v.String()
	case js.TypeNumber:
		return v.Float()
	case js.TypeBoolean:
		return v.Bool()
	case js.TypeObject:
		var out interface{}
		err := guard(func() {
			text := js.Global().Get("JSON").Call("stringify", v).String()
			_ = json.Unmarshal([]byte(text), &out)
		})
		if err != nil {
			return nil
		}
		return out
	}
	return nil
}

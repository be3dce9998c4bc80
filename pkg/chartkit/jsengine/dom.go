//go:build js && wasm

package jsengine

import (
	"syscall/js"

	chartErrors "github.com/ukaji3/chartkit-go/pkg/chartkit/errors"
	"github.com/ukaji3/chartkit-go/pkg/chartkit/instance"
)

// Element is a DOM element used as a chart container.
type Element struct {
	js.Value
}

var _ instance.Container = (*Element)(nil)

// ElementByID looks up the container element with the given id.
func ElementByID(id string) (*Element, error) {
	v := js.Global().Get("document").Call("getElementById", id)
	if v.IsNull() || v.IsUndefined() {
		return nil, chartErrors.New(chartErrors.CodeContainerNotFound, "no element with this id").
			With("id", id)
	}
	return &Element{Value: v}, nil
}

func (e *Element) Tag() string {
	if id := e.Get("id").String(); id != "" {
		return "#" + id
	}
	return e.Get("tagName").String()
}

func (e *Element) Size() (float64, float64) {
	return e.Get("clientWidth").Float(), e.Get("clientHeight").Float()
}

func (e *Element) Attached() bool {
	return e.Get("isConnected").Truthy()
}

// ResizeObserver observes containers with the browser ResizeObserver.
type ResizeObserver struct{}

var _ instance.SizeObserver = ResizeObserver{}

func (ResizeObserver) Observe(c instance.Container, onChange func()) (stop func()) {
	el, ok := c.(*Element)
	ctor := js.Global().Get("ResizeObserver")
	if !ok || ctor.IsUndefined() {
		return func() {}
	}
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		onChange()
		return nil
	})
	ro := ctor.New(cb)
	ro.Call("observe", el.Value)
	return func() {
		ro.Call("disconnect")
		cb.Release()
	}
}

// Window listens for viewport resizes.
type Window struct{}

var _ instance.ViewportListener = Window{}

func (Window) Listen(onResize func()) (stop func()) {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		onResize()
		return nil
	})
	win := js.Global()
	win.Call("addEventListener", "resize", cb)
	return func() {
		win.Call("removeEventListener", "resize", cb)
		cb.Release()
	}
}

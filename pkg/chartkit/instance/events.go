package instance

import (
	"sort"
	"sync"
)

// Handlers maps engine event names to caller callbacks.
type Handlers map[string]Handler

type registration struct {
	event string
	id    HandlerID
}

// EventBridge registers caller handlers on the live instance. Every change
// unregisters the full previous set before registering the new one.
type EventBridge struct {
	mu       sync.Mutex
	binding  *Binding
	handlers Handlers
	regs     []registration
}

// Bind moves the current handler set to b.
func (e *EventBridge) Bind(b *Binding) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unregister()
	e.binding = b
	e.register()
}

// SetHandlers replaces the handler set on the bound instance.
func (e *EventBridge) SetHandlers(h Handlers) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unregister()
	e.handlers = h
	e.register()
}

// Unbind unregisters every handler and forgets the instance.
func (e *EventBridge) Unbind() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.unregister()
	e.binding = nil
}

// Registered returns the number of live registrations.
func (e *EventBridge) Registered() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.regs)
}

func (e *EventBridge) unregister() {
	if e.binding != nil && !e.binding.Disposed() {
		for _, r := range e.regs {
			e.binding.Instance.Off(r.event, r.id)
		}
	}
	e.regs = nil
}

func (e *EventBridge) register() {
	if e.binding.Disposed() {
		return
	}
	events := make([]string, 0, len(e.handlers))
	for name, h := range e.handlers {
		if h != nil {
			events = append(events, name)
		}
	}
	sort.Strings(events)
	for _, name := range events {
		id := e.binding.Instance.On(name, e.handlers[name])
		e.regs = append(e.regs, registration{event: name, id: id})
	}
}

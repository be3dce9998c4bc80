// Package instance keeps a live rendering-engine instance bound to a UI
// container across mount, updates, resize and teardown.
//
// The engine itself is an external collaborator reached through the Engine,
// Instance and Container interfaces; the jsengine package binds them to the
// browser engine and tests use in-memory fakes.
package instance

import (
	"context"

	"github.com/ukaji3/chartkit-go/pkg/chartkit/models"
)

// Container is a UI element an engine instance can be bound to.
type Container interface {
	// Tag identifies the container in diagnostics (element id or tag name).
	Tag() string
	// Size returns the current layout size in pixels.
	Size() (width, height float64)
	// Attached reports whether the container is still part of the document.
	Attached() bool
}

// SetOptionOpts controls how a specification is applied.
type SetOptionOpts struct {
	// NotMerge replaces the previous specification instead of merging.
	NotMerge bool
	// LazyUpdate defers the redraw to the next frame.
	LazyUpdate bool
}

// ImageOptions controls image export.
type ImageOptions struct {
	// Type is "png", "jpeg" or "svg".
	Type              string   `json:"type,omitempty"`
	PixelRatio        float64  `json:"pixelRatio,omitempty"`
	BackgroundColor   string   `json:"backgroundColor,omitempty"`
	ExcludeComponents []string `json:"excludeComponents,omitempty"`
}

// Handler receives the parameters of an engine event.
type Handler func(params map[string]interface{})

// HandlerID identifies a registered handler.
type HandlerID int

// Instance is a live engine instance.
type Instance interface {
	SetOption(opt models.Option, opts SetOptionOpts) error
	GetOption() (models.Option, error)
	Resize() error
	Dispose()
	On(event string, h Handler) HandlerID
	Off(event string, id HandlerID)
	DispatchAction(action map[string]interface{}) error
	GetDataURL(opts ImageOptions) (string, error)
	ShowLoading(text string)
	HideLoading()
}

// Engine creates instances. Load may block (for example while a script is
// fetched) and is called before the first Init.
type Engine interface {
	Load(ctx context.Context) error
	Init(c Container, theme string) (Instance, error)
}

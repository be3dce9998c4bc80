// Package errors defines the typed error shared by every chartkit component.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code is a stable, machine-readable error code.
type Code string

const (
	// CodeEngineLoad indicates the rendering engine could not be loaded.
	CodeEngineLoad Code = "engine-load-failed"
	// CodeContainerNotFound indicates no container was supplied at mount.
	CodeContainerNotFound Code = "container-not-found"
	// CodeContainerRemoved indicates the container was detached mid-initialization.
	CodeContainerRemoved Code = "container-removed"
	// CodeContainerZeroSize indicates the container never reported a size.
	CodeContainerZeroSize Code = "container-zero-size"
	// CodeNoInstance indicates the engine returned no instance.
	CodeNoInstance Code = "no-instance"
	// CodeInvalidData indicates an input collection could not be interpreted.
	CodeInvalidData Code = "invalid-data-format"
	// CodeSpecApply indicates the engine rejected a specification.
	CodeSpecApply Code = "spec-apply-failed"
	// CodeInvalidTheme indicates a theme object could not be applied.
	CodeInvalidTheme Code = "invalid-theme"
	// CodeTransform indicates a clustering or regression transform failed.
	CodeTransform Code = "transform-failed"
	// CodeUnknownFamily indicates an unsupported chart family.
	CodeUnknownFamily Code = "unknown-family"
	// CodeDisposed indicates an operation on an instance that is no longer bound.
	CodeDisposed Code = "instance-disposed"
	// CodeExport indicates an image export failed.
	CodeExport Code = "export-failed"
)

// ChartError is the error type returned by chartkit operations.
type ChartError struct {
	// Code is the stable error code.
	Code Code
	// Message is a human readable description.
	Message string
	// Context carries structured diagnostics (dimensions, container tag, keys).
	Context map[string]interface{}
	// Cause is the underlying error, if any.
	Cause error
	// Recoverable reports whether retrying the operation can succeed.
	Recoverable bool
	// Suggestions lists remediation hints.
	Suggestions []string
}

func (e *ChartError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *ChartError) Unwrap() error {
	return e.Cause
}

// Is matches another *ChartError by code, so errors.Is(err, New(CodeX, ""))
// works as a code check.
func (e *ChartError) Is(target error) bool {
	var t *ChartError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// With returns e after adding a context entry.
func (e *ChartError) With(key string, value interface{}) *ChartError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Suggest appends remediation hints to e.
func (e *ChartError) Suggest(s ...string) *ChartError {
	e.Suggestions = append(e.Suggestions, s...)
	return e
}

// New creates a ChartError. Codes for instance initialization are recoverable
// by default.
func New(code Code, message string) *ChartError {
	return &ChartError{
		Code:        code,
		Message:     message,
		Recoverable: recoverableByDefault(code),
	}
}

// Wrap creates a ChartError with a cause.
func Wrap(code Code, cause error, message string) *ChartError {
	e := New(code, message)
	e.Cause = cause
	return e
}

// CodeOf returns the code of the first ChartError in err's chain, or "".
func CodeOf(err error) Code {
	var ce *ChartError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// IsRecoverable reports whether err is a recoverable ChartError.
func IsRecoverable(err error) bool {
	var ce *ChartError
	if errors.As(err, &ce) {
		return ce.Recoverable
	}
	return false
}

func recoverableByDefault(code Code) bool {
	switch code {
	case CodeEngineLoad, CodeContainerNotFound, CodeContainerRemoved,
		CodeContainerZeroSize, CodeNoInstance, CodeInvalidData,
		CodeInvalidTheme, CodeTransform:
		return true
	}
	return false
}

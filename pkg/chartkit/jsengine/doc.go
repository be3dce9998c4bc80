// Package jsengine binds the instance interfaces to the browser rendering
// engine through syscall/js. It is only built for js/wasm.
//
// Specifications cross the boundary as JavaScript source produced by the
// output package, so engine functions arrive as real functions.
package jsengine

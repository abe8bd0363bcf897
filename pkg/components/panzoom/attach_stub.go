//go:build !js || !wasm
// +build !js !wasm

package panzoom

import "errors"

// ErrUnsupported is returned by Attach outside the browser
var ErrUnsupported = errors.New("panzoom: DOM attachment requires js/wasm")

// Attach is only available in WASM builds; use NewHeadless elsewhere
func Attach(svg interface{}, opts *Options) (API, error) {
	return nil, ErrUnsupported
}

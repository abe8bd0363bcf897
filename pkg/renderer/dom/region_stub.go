//go:build !js || !wasm
// +build !js !wasm

package dom

import "errors"

// Region implements panel.Display over the host page (stub for non-WASM builds)
type Region struct{}

// NewRegion is only available in WASM builds
func NewRegion() (*Region, error) {
	return nil, errors.New("dom: region is only available in WASM builds")
}

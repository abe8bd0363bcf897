package panzoom

import "github.com/recera/graphpanel/pkg/svgdoc"

// Rect is a rectangle in SVG user units
type Rect = svgdoc.Rect

// Options configures pan/zoom behavior
type Options struct {
	// Zoom limits, relative to the fitted image (1 = fitted)
	MinZoom float64 // default 0.5
	MaxZoom float64 // default 10

	// ZoomScaleSensitivity is the zoom step per wheel notch or button press
	ZoomScaleSensitivity float64 // default 0.2

	// ControlIconsEnabled draws zoom in / reset / zoom out buttons on the image
	ControlIconsEnabled bool

	DisableMouseWheelZoom bool
	DisableDblClickZoom   bool
	DisablePan            bool

	// Interaction callbacks (optional)
	OnZoom func(zoom float64)
	OnPan  func(box Rect)
}

func (o *Options) withDefaults() Options {
	d := Options{
		MinZoom:              0.5,
		MaxZoom:              10,
		ZoomScaleSensitivity: 0.2,
	}
	if o == nil {
		return d
	}
	if o.MinZoom > 0 {
		d.MinZoom = o.MinZoom
	}
	if o.MaxZoom > 0 {
		d.MaxZoom = o.MaxZoom
	}
	if d.MaxZoom < d.MinZoom {
		d.MaxZoom = d.MinZoom
	}
	if o.ZoomScaleSensitivity > 0 {
		d.ZoomScaleSensitivity = o.ZoomScaleSensitivity
	}
	d.ControlIconsEnabled = o.ControlIconsEnabled
	d.DisableMouseWheelZoom = o.DisableMouseWheelZoom
	d.DisableDblClickZoom = o.DisableDblClickZoom
	d.DisablePan = o.DisablePan
	d.OnZoom = o.OnZoom
	d.OnPan = o.OnPan
	return d
}

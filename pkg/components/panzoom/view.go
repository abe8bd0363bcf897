package panzoom

import "math"

// View is the platform independent state of a pan/zoom instance. It pans
// and zooms by moving the SVG viewBox: Box is what gets written back to the
// element, Base is the content bounds the image started with. The element
// keeps the default preserveAspectRatio (xMidYMid meet), which View models
// when it maps screen pixels to user units.
type View struct {
	base   Rect
	box    Rect
	width  float64
	height float64
	o      Options
}

// NewView creates a view over content bounds base, fitted
func NewView(base Rect, opts *Options) *View {
	return &View{base: base, box: base, o: opts.withDefaults()}
}

// SetContainer records the container size in CSS pixels
func (v *View) SetContainer(width, height float64) {
	v.width = math.Max(0, width)
	v.height = math.Max(0, height)
}

// Container returns the container size in CSS pixels
func (v *View) Container() (width, height float64) { return v.width, v.height }

// Base returns the content bounds
func (v *View) Base() Rect { return v.base }

// Box returns the current viewBox
func (v *View) Box() Rect { return v.box }

// Zoom returns the zoom relative to the fitted image
func (v *View) Zoom() float64 {
	if v.box.W <= 0 {
		return 1
	}
	return v.base.W / v.box.W
}

// Fit shows the whole content at zoom 1
func (v *View) Fit() {
	v.box = v.base
}

// Center moves the box so the content center is the container center
func (v *View) Center() {
	cx := v.base.X + v.base.W/2
	cy := v.base.Y + v.base.H/2
	v.box.X = cx - v.box.W/2
	v.box.Y = cy - v.box.H/2
}

// Reset fits and centers
func (v *View) Reset() {
	v.Fit()
	v.Center()
}

// ZoomAt multiplies the zoom by factor, keeping the point at container
// fraction (fx, fy) fixed on screen. The result is clamped to the zoom
// limits; it reports whether the view changed.
func (v *View) ZoomAt(factor, fx, fy float64) bool {
	if v.base.Empty() || factor <= 0 {
		return false
	}
	zoom := v.Zoom()
	next := math.Min(v.o.MaxZoom, math.Max(v.o.MinZoom, zoom*factor))
	if next == zoom {
		return false
	}
	px, py := v.ToUser(fx, fy)
	w := v.base.W / next
	h := v.base.H / next
	ratio := w / v.box.W
	v.box = Rect{
		X: px - (px-v.box.X)*ratio,
		Y: py - (py-v.box.Y)*ratio,
		W: w,
		H: h,
	}
	return true
}

// ZoomIn zooms one step around the container center
func (v *View) ZoomIn() bool {
	return v.ZoomAt(1+v.o.ZoomScaleSensitivity, 0.5, 0.5)
}

// ZoomOut zooms out one step around the container center
func (v *View) ZoomOut() bool {
	return v.ZoomAt(1/(1+v.o.ZoomScaleSensitivity), 0.5, 0.5)
}

// WheelFactor converts a wheel deltaY into a zoom factor
func (v *View) WheelFactor(deltaY float64) float64 {
	steps := math.Max(-3, math.Min(3, deltaY/100))
	return math.Pow(1+v.o.ZoomScaleSensitivity, -steps)
}

// PanBy moves the content by dx, dy screen pixels
func (v *View) PanBy(dx, dy float64) {
	s := v.unitsPerPixel()
	v.box.X -= dx * s
	v.box.Y -= dy * s
}

// ToUser maps a container fraction to user units
func (v *View) ToUser(fx, fy float64) (x, y float64) {
	s := v.unitsPerPixel()
	if v.width <= 0 || v.height <= 0 {
		return v.box.X + fx*v.box.W, v.box.Y + fy*v.box.H
	}
	visW := v.width * s
	visH := v.height * s
	x0 := v.box.X - (visW-v.box.W)/2
	y0 := v.box.Y - (visH-v.box.H)/2
	return x0 + fx*visW, y0 + fy*visH
}

// ViewBox returns the current box as a viewBox attribute value
func (v *View) ViewBox() string {
	return v.box.String()
}

// unitsPerPixel is the scale of a meet-fitted viewBox
func (v *View) unitsPerPixel() float64 {
	if v.width <= 0 || v.height <= 0 {
		return 1
	}
	return math.Max(v.box.W/v.width, v.box.H/v.height)
}

package panzoom

// SizeFunc reports the current container size in CSS pixels (or cells)
type SizeFunc func() (width, height float64)

// Headless is an API without a DOM: terminal front ends and tests drive it
// and read Box back.
type Headless struct {
	view      *View
	size      SizeFunc
	o         Options
	destroyed bool
}

// NewHeadless creates a fitted, centered instance over base
func NewHeadless(base Rect, size SizeFunc, opts *Options) *Headless {
	h := &Headless{view: NewView(base, opts), size: size, o: opts.withDefaults()}
	h.Resize()
	h.view.Reset()
	return h
}

// View exposes the underlying state
func (h *Headless) View() *View { return h.view }

// Destroyed reports whether Destroy was called
func (h *Headless) Destroyed() bool { return h.destroyed }

func (h *Headless) Fit() {
	if h.destroyed {
		return
	}
	h.view.Fit()
	h.zoomed()
}

func (h *Headless) Center() {
	if h.destroyed {
		return
	}
	h.view.Center()
	h.panned()
}

func (h *Headless) Resize() {
	if h.destroyed || h.size == nil {
		return
	}
	h.view.SetContainer(h.size())
}

func (h *Headless) ZoomIn() {
	if !h.destroyed && h.view.ZoomIn() {
		h.zoomed()
	}
}

func (h *Headless) ZoomOut() {
	if !h.destroyed && h.view.ZoomOut() {
		h.zoomed()
	}
}

func (h *Headless) ZoomBy(factor float64) {
	if !h.destroyed && h.view.ZoomAt(factor, 0.5, 0.5) {
		h.zoomed()
	}
}

func (h *Headless) PanBy(dx, dy float64) {
	if h.destroyed || h.o.DisablePan {
		return
	}
	h.view.PanBy(dx, dy)
	h.panned()
}

func (h *Headless) Reset() {
	if h.destroyed {
		return
	}
	h.view.Reset()
	h.zoomed()
}

func (h *Headless) Zoom() float64 { return h.view.Zoom() }

func (h *Headless) Destroy() {
	h.destroyed = true
}

func (h *Headless) zoomed() {
	if h.o.OnZoom != nil {
		h.o.OnZoom(h.view.Zoom())
	}
}

func (h *Headless) panned() {
	if h.o.OnPan != nil {
		h.o.OnPan(h.view.Box())
	}
}

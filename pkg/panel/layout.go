package panel

// Box is the vertical extent of a page element
type Box struct {
	Height       float64
	MarginTop    float64
	MarginBottom float64
}

// Outer is the height including margins
func (b Box) Outer() float64 {
	return b.Height + b.MarginTop + b.MarginBottom
}

// Metrics is the page geometry the region height is derived from
type Metrics struct {
	ViewportHeight float64
	Header         Box
	Footer         Box
	// Padding of the region itself
	PaddingTop    float64
	PaddingBottom float64
}

// RegionHeight is the height left for the image region between header and
// footer. Width is never set; the region always spans its container.
func RegionHeight(m Metrics) float64 {
	h := m.ViewportHeight - m.Header.Outer() - m.PaddingTop - m.PaddingBottom - m.Footer.Outer()
	if h < 0 {
		return 0
	}
	return h
}

package panzoom

// API controls one pan/zoom instance bound to one displayed image.
// After Destroy every method is a no-op.
type API interface {
	// Fit scales the image to fill the container
	Fit()
	// Center centers the image in the container at the current zoom
	Center()
	// Resize re-reads the container size
	Resize()
	ZoomIn()
	ZoomOut()
	// ZoomBy multiplies the zoom by factor around the container center
	ZoomBy(factor float64)
	// PanBy moves the image by dx, dy screen pixels
	PanBy(dx, dy float64)
	// Reset fits and centers
	Reset()
	Zoom() float64
	// Destroy releases listeners and decorations
	Destroy()
}

// Note: the DOM-bound Controller implements API in WASM builds only; Headless
// implements it everywhere

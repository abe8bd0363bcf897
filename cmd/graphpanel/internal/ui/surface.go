package ui

import (
	"errors"
	"sync"

	"github.com/recera/graphpanel/pkg/components/panzoom"
	"github.com/recera/graphpanel/pkg/panel"
	"github.com/recera/graphpanel/pkg/renderservice"
	"github.com/recera/graphpanel/pkg/svgdoc"
)

// ErrNotImage is returned by the viewport factory for targets it cannot bind
var ErrNotImage = errors.New("ui: viewport target is not an svg image")

// Surface is a panel.Display for terminals. It measures in cells: one row
// of height, one column of width.
type Surface struct {
	mu sync.Mutex

	width, height int
	header        int
	footer        int

	graphs       []renderservice.Graph
	revision     int
	busy         bool
	message      string
	image        *svgdoc.Image
	regionHeight float64
}

// NewSurface returns a surface of width x height cells with header and
// footer rows reserved
func NewSurface(width, height, header, footer int) *Surface {
	return &Surface{width: width, height: height, header: header, footer: footer}
}

// SetSize records a terminal resize; call Controller.Resize afterwards
func (s *Surface) SetSize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width, s.height = width, height
}

func (s *Surface) SetOptions(graphs []renderservice.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graphs = append([]renderservice.Graph(nil), graphs...)
	s.revision++
}

func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.message = ""
	s.image = nil
}

func (s *Surface) ShowBusy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = true
	s.message = ""
	s.image = nil
}

func (s *Surface) ShowMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.message = msg
	s.image = nil
}

func (s *Surface) Install(img *svgdoc.Image) (panel.Target, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.message = ""
	s.image = img
	return img, nil
}

func (s *Surface) Metrics() panel.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return panel.Metrics{
		ViewportHeight: float64(s.height),
		Header:         panel.Box{Height: float64(s.header)},
		Footer:         panel.Box{Height: float64(s.footer)},
	}
}

func (s *Surface) SetRegionHeight(px float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.regionHeight = px
}

// Graphs returns the selector options and a counter that changes whenever
// they are replaced
func (s *Surface) Graphs() ([]renderservice.Graph, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graphs, s.revision
}

// Busy reports whether the progress indicator is showing
func (s *Surface) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Message returns the region text, if any
func (s *Surface) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}

// Image returns the installed image, if any
func (s *Surface) Image() *svgdoc.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// RegionSize is the width and height of the image region in cells
func (s *Surface) RegionSize() (width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.width), s.regionHeight
}

// Viewports returns a factory binding headless pan/zoom views to images
// installed on s
func (s *Surface) Viewports(opts panzoom.Options) panel.ViewportFactory {
	return func(target panel.Target) (panzoom.API, error) {
		img, ok := target.(*svgdoc.Image)
		if !ok || img == nil {
			return nil, ErrNotImage
		}
		if img.ViewBox.Empty() {
			return nil, errors.New("ui: image has no viewBox")
		}
		return panzoom.NewHeadless(img.ViewBox, s.RegionSize, &opts), nil
	}
}

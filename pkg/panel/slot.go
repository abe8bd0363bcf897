package panel

import (
	"errors"

	"github.com/recera/graphpanel/pkg/components/panzoom"
)

// Target is whatever a Display installed an image into: a js.Value in the
// browser, the image itself in terminal and headless front ends.
type Target any

// ViewportFactory creates a pan/zoom instance over an installed image
type ViewportFactory func(target Target) (panzoom.API, error)

// ViewportSlot owns the single live pan/zoom instance of a region. Attach
// always releases the previous instance first, so callers cannot leak one.
type ViewportSlot struct {
	factory ViewportFactory
	active  panzoom.API
}

// NewViewportSlot creates an empty slot
func NewViewportSlot(factory ViewportFactory) *ViewportSlot {
	return &ViewportSlot{factory: factory}
}

// Attach releases the current instance, then creates one bound to target
func (s *ViewportSlot) Attach(target Target) (panzoom.API, error) {
	s.Release()
	if s.factory == nil {
		return nil, errors.New("panel: no viewport factory")
	}
	api, err := s.factory(target)
	if err != nil {
		return nil, err
	}
	if api == nil {
		return nil, errors.New("panel: viewport factory returned nil")
	}
	s.active = api
	return api, nil
}

// Release destroys the current instance. It reports whether there was one.
func (s *ViewportSlot) Release() bool {
	if s.active == nil {
		return false
	}
	api := s.active
	s.active = nil
	api.Destroy()
	return true
}

// Active returns the live instance, or nil
func (s *ViewportSlot) Active() panzoom.API {
	return s.active
}

// Refit tells the live instance about a new container size and re-fits and
// re-centers it
func (s *ViewportSlot) Refit() bool {
	if s.active == nil {
		return false
	}
	s.active.Resize()
	s.active.Fit()
	s.active.Center()
	return true
}

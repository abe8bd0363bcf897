package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/recera/graphpanel/cmd/graphpanel/internal/ui"
	"github.com/recera/graphpanel/pkg/components/panzoom"
	"github.com/recera/graphpanel/pkg/panel"
	"github.com/recera/graphpanel/pkg/renderservice"
	"github.com/recera/graphpanel/pkg/scheduler"
)

// session drives a panel controller without a screen: the render command
// runs it on its own loop and waits on status changes
type session struct {
	loop     scheduler.Loop
	ctrl     *panel.Controller
	surface  *ui.Surface
	statuses chan panel.Status
	unsub    func()
	log      zerolog.Logger
}

type sessionConfig struct {
	Service panel.Service
	Loop    scheduler.Loop
	Backoff panel.Backoff
	PanZoom panzoom.Options
	Logger  zerolog.Logger
}

func newSession(cfg sessionConfig) (*session, error) {
	surface := ui.NewSurface(120, 40, 0, 0)
	ctrl, err := panel.New(panel.Config{
		Service:   cfg.Service,
		Display:   surface,
		Loop:      cfg.Loop,
		Viewports: surface.Viewports(cfg.PanZoom),
		Backoff:   cfg.Backoff,
		Logger:    &cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	s := &session{
		loop:     cfg.Loop,
		ctrl:     ctrl,
		surface:  surface,
		statuses: make(chan panel.Status, 64),
		log:      cfg.Logger,
	}
	s.unsub = ctrl.Status().Subscribe(func(st panel.Status) {
		select {
		case s.statuses <- st:
		default:
		}
	})
	return s, nil
}

// Graphs loads the graph list
func (s *session) Graphs(ctx context.Context) ([]renderservice.Graph, error) {
	s.loop.Post(func() { s.ctrl.Init(ctx) })
	st, err := s.wait(ctx, func(st panel.Status) bool {
		return st.Phase == panel.PhaseIdle || st.Terminal()
	})
	if err != nil {
		return nil, err
	}
	if st.Phase != panel.PhaseIdle {
		return nil, st.Err
	}
	graphs, _ := s.surface.Graphs()
	return graphs, nil
}

// Render submits req and blocks until the controller reaches a terminal
// phase or ctx ends
func (s *session) Render(ctx context.Context, req renderservice.Request, async bool) (panel.Status, error) {
	s.loop.Post(func() { s.ctrl.Submit(req, async) })
	st, err := s.wait(ctx, func(st panel.Status) bool {
		if st.Phase == panel.PhasePolling {
			s.log.Info().
				Int("attempt", st.Attempt).
				Dur("delay", st.Delay).
				Msgf("⏳ Waiting for %s", req.Graph)
		}
		return st.Terminal()
	})
	if err != nil {
		return st, err
	}
	switch st.Phase {
	case panel.PhaseReady:
		return st, nil
	case panel.PhaseTimedOut:
		return st, fmt.Errorf("%s: %w", req.Graph, panel.ErrTimedOut)
	}
	return st, st.Err
}

// Close abandons anything in flight
func (s *session) Close() {
	s.unsub()
	s.loop.Post(s.ctrl.Close)
}

func (s *session) wait(ctx context.Context, done func(panel.Status) bool) (panel.Status, error) {
	for {
		select {
		case <-ctx.Done():
			return panel.Status{}, ctx.Err()
		case st := <-s.statuses:
			if done(st) {
				return st, nil
			}
		}
	}
}

// Package panel implements the render panel controller: it fills the graph
// selector, submits render requests, polls asynchronous jobs with
// exponential backoff, and keeps at most one pan/zoom viewport alive over
// the displayed image.
//
// A Controller is single threaded. Every method must be called on its
// scheduler.Loop, and every service call comes back on that loop.
package panel

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/recera/graphpanel/pkg/components/panzoom"
	"github.com/recera/graphpanel/pkg/reactive"
	"github.com/recera/graphpanel/pkg/renderservice"
	"github.com/recera/graphpanel/pkg/scheduler"
	"github.com/recera/graphpanel/pkg/svgdoc"
)

var (
	// ErrEmptyResult is reported when a synchronous render returns no body
	ErrEmptyResult = errors.New("panel: render returned no result")
	// ErrNoGraph is reported when Submit is called without a graph
	ErrNoGraph = errors.New("panel: no graph selected")
)

// Service is the part of the Render Service the controller uses.
// *renderservice.Client implements it.
type Service interface {
	ListGraphs(ctx context.Context) ([]renderservice.Graph, error)
	RenderSVG(ctx context.Context, req renderservice.Request) ([]byte, error)
	SubmitSVG(ctx context.Context, req renderservice.Request) (renderservice.JobHandle, error)
	SVGResult(ctx context.Context, handle renderservice.JobHandle) ([]byte, error)
}

// Display is the region the controller draws into, together with the
// selector it fills
type Display interface {
	// SetOptions fills the selector, keeping the given order
	SetOptions(graphs []renderservice.Graph)
	// Clear empties and hides the region
	Clear()
	// ShowBusy shows a progress indicator in the region
	ShowBusy()
	// ShowMessage replaces the region content with text
	ShowMessage(msg string)
	// Install puts the image in the region and returns the element a
	// viewport can bind to
	Install(img *svgdoc.Image) (Target, error)
	// Metrics measures the page
	Metrics() Metrics
	// SetRegionHeight sets the height of the region
	SetRegionHeight(px float64)
}

// Config wires a Controller
type Config struct {
	Service   Service
	Display   Display
	Loop      scheduler.Loop
	Viewports ViewportFactory
	// Backoff defaults to DefaultBackoff
	Backoff Backoff
	// Logger defaults to a no-op logger
	Logger *zerolog.Logger
}

// Controller is the render panel controller
type Controller struct {
	svc     Service
	display Display
	loop    scheduler.Loop
	slot    *ViewportSlot
	backoff Backoff
	log     zerolog.Logger

	ctx        context.Context
	generation uint64
	job        *RenderJob
	timer      scheduler.Timer
	graphs     []renderservice.Graph
	status     *reactive.State[Status]
}

// New creates a controller. Call Init on the loop to fill the selector.
func New(cfg Config) (*Controller, error) {
	switch {
	case cfg.Service == nil:
		return nil, errors.New("panel: no service")
	case cfg.Display == nil:
		return nil, errors.New("panel: no display")
	case cfg.Loop == nil:
		return nil, errors.New("panel: no loop")
	case cfg.Viewports == nil:
		return nil, errors.New("panel: no viewport factory")
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("component", "panel").Logger()
	}
	return &Controller{
		svc:     cfg.Service,
		display: cfg.Display,
		loop:    cfg.Loop,
		slot:    NewViewportSlot(cfg.Viewports),
		backoff: cfg.Backoff.withDefaults(),
		log:     log,
		ctx:     context.Background(),
		status:  reactive.NewState(Status{}),
	}, nil
}

// Status is the observable state of the current operation
func (c *Controller) Status() *reactive.State[Status] {
	return c.status
}

// Graphs returns the list loaded by Init
func (c *Controller) Graphs() []renderservice.Graph {
	return c.graphs
}

// Viewport returns the live pan/zoom instance, or nil
func (c *Controller) Viewport() panzoom.API {
	return c.slot.Active()
}

// Init fetches the graph list and fills the selector in server order. ctx
// also bounds every later service call.
func (c *Controller) Init(ctx context.Context) {
	if ctx != nil {
		c.ctx = ctx
	}
	gen := c.generation
	ctx = c.ctx
	c.status.Set(Status{Phase: PhaseLoading})

	var graphs []renderservice.Graph
	var err error
	c.loop.Go(func() {
		graphs, err = c.svc.ListGraphs(ctx)
	}, func() {
		if err != nil {
			c.log.Error().Err(err).Msg("graph list failed")
			if gen == c.generation {
				c.fail(c.log, renderservice.Request{}, "", fmt.Errorf("list graphs: %w", err))
			}
			return
		}
		c.graphs = graphs
		c.display.SetOptions(graphs)
		c.log.Info().Int("graphs", len(graphs)).Msg("graph list loaded")
		if gen == c.generation {
			c.status.Set(Status{Phase: PhaseIdle})
		}
	})
}

// Submit starts a render of req. It never blocks: the outcome arrives on
// the loop and is reported through the display and Status.
func (c *Controller) Submit(req renderservice.Request, async bool) {
	c.generation++
	gen := c.generation
	c.abandonJob()
	c.slot.Release()
	c.display.Clear()

	id := uuid.NewString()
	log := c.log.With().
		Str("request", id).
		Str("graph", string(req.Graph)).
		Bool("async", async).
		Logger()

	if req.Graph == "" {
		c.fail(log, req, id, ErrNoGraph)
		return
	}
	log.Info().Str("root", req.RootNode).Msg("submit")
	c.status.Set(Status{Phase: PhaseLoading, Request: req, RequestID: id})
	ctx := c.ctx

	if !async {
		var body []byte
		var err error
		c.loop.Go(func() {
			body, err = c.svc.RenderSVG(ctx, req)
		}, func() {
			if gen != c.generation {
				log.Debug().Msg("discarding stale render")
				return
			}
			switch {
			case err != nil:
				c.fail(log, req, id, fmt.Errorf("render: %w", err))
			case len(body) == 0:
				c.fail(log, req, id, ErrEmptyResult)
			default:
				c.install(log, req, id, body)
			}
		})
		return
	}

	c.display.ShowBusy()
	var handle renderservice.JobHandle
	var err error
	c.loop.Go(func() {
		handle, err = c.svc.SubmitSVG(ctx, req)
	}, func() {
		if gen != c.generation {
			log.Debug().Msg("discarding stale submission")
			return
		}
		if err != nil {
			c.fail(log, req, id, fmt.Errorf("submit: %w", err))
			return
		}
		c.job = &RenderJob{Handle: handle, Delay: c.backoff.Initial, Generation: gen}
		log.Debug().Str("handle", string(handle)).Msg("job accepted")
		c.schedule(log, req, id, c.job)
	})
}

// Resize recomputes the region height and re-fits the live viewport
func (c *Controller) Resize() {
	c.display.SetRegionHeight(RegionHeight(c.display.Metrics()))
	if c.slot.Refit() {
		c.log.Debug().Msg("viewport refit")
	}
}

// Close abandons any job in flight and releases the viewport
func (c *Controller) Close() {
	c.generation++
	c.abandonJob()
	c.slot.Release()
}

// schedule arms the timer for the next poll of job
func (c *Controller) schedule(log zerolog.Logger, req renderservice.Request, id string, job *RenderJob) {
	c.status.Set(Status{
		Phase:     PhasePolling,
		Request:   req,
		RequestID: id,
		Delay:     job.Delay,
		Attempt:   job.Attempts + 1,
	})
	c.timer = c.loop.After(job.Delay, func() {
		c.poll(log, req, id, job)
	})
}

// poll issues one result request for job
func (c *Controller) poll(log zerolog.Logger, req renderservice.Request, id string, job *RenderJob) {
	if job.Generation != c.generation {
		return
	}
	c.timer = nil
	job.Attempts++
	log.Debug().
		Str("handle", string(job.Handle)).
		Dur("delay", job.Delay).
		Int("attempt", job.Attempts).
		Msg("poll")

	ctx := c.ctx
	var body []byte
	var err error
	c.loop.Go(func() {
		body, err = c.svc.SVGResult(ctx, job.Handle)
	}, func() {
		if job.Generation != c.generation {
			log.Debug().Msg("discarding stale poll result")
			return
		}
		if err != nil {
			c.job = nil
			c.fail(log, req, id, fmt.Errorf("poll %s: %w", job.Handle, err))
			return
		}
		if len(body) > 0 {
			c.job = nil
			c.install(log, req, id, body)
			return
		}
		next, ok := c.backoff.Next(job.Delay)
		if !ok {
			c.job = nil
			log.Warn().Int("attempts", job.Attempts).Msg("render timed out")
			c.display.ShowMessage(MsgTimedOut)
			c.status.Set(Status{Phase: PhaseTimedOut, Request: req, RequestID: id, Err: ErrTimedOut})
			return
		}
		job.Delay = next
		c.schedule(log, req, id, job)
	})
}

// install shows a rendered document and binds a new viewport to it
func (c *Controller) install(log zerolog.Logger, req renderservice.Request, id string, body []byte) {
	img, err := svgdoc.Extract(body)
	if err != nil {
		c.fail(log, req, id, err)
		return
	}
	target, err := c.display.Install(img)
	if err != nil {
		c.fail(log, req, id, fmt.Errorf("install image: %w", err))
		return
	}
	c.display.SetRegionHeight(RegionHeight(c.display.Metrics()))
	if _, err := c.slot.Attach(target); err != nil {
		// the image stays usable without pan/zoom
		log.Warn().Err(err).Msg("viewport unavailable")
	}
	log.Info().Str("viewBox", img.ViewBox.String()).Msg("render ready")
	c.status.Set(Status{Phase: PhaseReady, Request: req, RequestID: id, Image: img})
}

func (c *Controller) fail(log zerolog.Logger, req renderservice.Request, id string, err error) {
	log.Error().Err(err).Msg("render failed")
	c.display.ShowMessage(MsgFailed)
	c.status.Set(Status{Phase: PhaseFailed, Request: req, RequestID: id, Err: err})
}

func (c *Controller) abandonJob() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.job != nil {
		c.log.Debug().Str("handle", string(c.job.Handle)).Msg("abandoning job")
		c.job = nil
	}
}

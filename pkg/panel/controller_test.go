package panel

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/graphpanel/pkg/components/panzoom"
	"github.com/recera/graphpanel/pkg/renderservice"
	"github.com/recera/graphpanel/pkg/scheduler"
	"github.com/recera/graphpanel/pkg/svgdoc"
)

const sizedSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="640" height="480" viewBox="0 0 640 480"><circle r="4"/></svg>`

// fakeService answers from canned values and records when each poll was
// issued on the manual clock
type fakeService struct {
	loop *scheduler.Manual

	graphs  []renderservice.Graph
	listErr error

	render    []byte
	renderErr error
	renders   int

	handle    renderservice.JobHandle
	submitErr error

	// result answers the n-th poll (1-based)
	result func(n int, handle renderservice.JobHandle) ([]byte, error)
	polls  []time.Duration
}

func (f *fakeService) ListGraphs(context.Context) ([]renderservice.Graph, error) {
	return f.graphs, f.listErr
}

func (f *fakeService) RenderSVG(context.Context, renderservice.Request) ([]byte, error) {
	f.renders++
	return f.render, f.renderErr
}

func (f *fakeService) SubmitSVG(context.Context, renderservice.Request) (renderservice.JobHandle, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	if f.handle == "" {
		return renderservice.JobHandle(uuid.NewString()), nil
	}
	return f.handle, nil
}

func (f *fakeService) SVGResult(_ context.Context, h renderservice.JobHandle) ([]byte, error) {
	f.polls = append(f.polls, f.loop.Now())
	if f.result == nil {
		return nil, nil
	}
	return f.result(len(f.polls), h)
}

// delays converts poll instants into the waits that preceded them
func (f *fakeService) delays(start time.Duration) []time.Duration {
	var out []time.Duration
	prev := start
	for _, at := range f.polls {
		out = append(out, at-prev)
		prev = at
	}
	return out
}

type fakeDisplay struct {
	options  []renderservice.Graph
	visible  bool
	busy     bool
	message  string
	images   []*svgdoc.Image
	metrics  Metrics
	heights  []float64
	clears   int
	failNext error
}

func (d *fakeDisplay) SetOptions(g []renderservice.Graph) { d.options = g }

func (d *fakeDisplay) Clear() {
	d.clears++
	d.visible = false
	d.busy = false
	d.message = ""
}

func (d *fakeDisplay) ShowBusy() { d.busy = true }

func (d *fakeDisplay) ShowMessage(msg string) {
	d.busy = false
	d.visible = true
	d.message = msg
}

func (d *fakeDisplay) Install(img *svgdoc.Image) (Target, error) {
	if d.failNext != nil {
		err := d.failNext
		d.failNext = nil
		return nil, err
	}
	d.busy = false
	d.visible = true
	d.message = ""
	d.images = append(d.images, img)
	return img, nil
}

func (d *fakeDisplay) Metrics() Metrics { return d.metrics }

func (d *fakeDisplay) SetRegionHeight(px float64) { d.heights = append(d.heights, px) }

func (d *fakeDisplay) lastHeight() float64 {
	if len(d.heights) == 0 {
		return -1
	}
	return d.heights[len(d.heights)-1]
}

// viewports counts live instances across the whole test
type viewports struct {
	live    int
	max     int
	created []*fakeViewport
}

func (v *viewports) factory(t Target) (panzoom.API, error) {
	vp := &fakeViewport{owner: v, target: t}
	v.created = append(v.created, vp)
	v.live++
	if v.live > v.max {
		v.max = v.live
	}
	return vp, nil
}

type fakeViewport struct {
	owner     *viewports
	target    Target
	destroyed bool
	resized   int
	fitted    int
	centered  int
}

func (f *fakeViewport) Fit() { f.fitted++ }
func (f *fakeViewport) Center() { f.centered++ }
func (f *fakeViewport) Resize() { f.resized++ }
func (f *fakeViewport) ZoomIn() {}
func (f *fakeViewport) ZoomOut() {}
func (f *fakeViewport) ZoomBy(float64) {}
func (f *fakeViewport) PanBy(_, _ float64) {}
func (f *fakeViewport) Reset() {}
func (f *fakeViewport) Zoom() float64 { return 1 }
func (f *fakeViewport) Destroy() {
	if !f.destroyed {
		f.destroyed = true
		f.owner.live--
	}
}

type harness struct {
	loop    *scheduler.Manual
	svc     *fakeService
	display *fakeDisplay
	vps     *viewports
	ctrl    *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	loop := scheduler.NewManual()
	h := &harness{
		loop:    loop,
		svc:     &fakeService{loop: loop, render: []byte(sizedSVG)},
		display: &fakeDisplay{metrics: Metrics{ViewportHeight: 800}},
		vps:     &viewports{},
	}
	ctrl, err := New(Config{
		Service:   h.svc,
		Display:   h.display,
		Loop:      loop,
		Viewports: h.vps.factory,
	})
	require.NoError(t, err)
	h.ctrl = ctrl
	return h
}

func (h *harness) phase() Phase { return h.ctrl.Status().Get().Phase }

var g1 = renderservice.Request{Graph: "g1"}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestInit_PopulatesOptionsInServerOrder(t *testing.T) {
	h := newHarness(t)
	h.svc.graphs = []renderservice.Graph{{Ref: "g1", Label: "Graph One"}, {Ref: "g2", Label: "Graph Two"}}

	h.ctrl.Init(context.Background())
	h.loop.RunPending()

	assert.Equal(t, h.svc.graphs, h.display.options)
	assert.Equal(t, h.svc.graphs, h.ctrl.Graphs())
	assert.Equal(t, PhaseIdle, h.phase())
}

func TestInit_ListFailureShowsFailed(t *testing.T) {
	h := newHarness(t)
	h.svc.listErr = errors.New("connection refused")

	h.ctrl.Init(context.Background())
	h.loop.RunPending()

	assert.Nil(t, h.display.options)
	assert.Equal(t, MsgFailed, h.display.message)
	assert.Equal(t, PhaseFailed, h.phase())
}

func TestInit_AgainstRenderService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/"+renderservice.PathList, r.URL.Path)
		_, _ = w.Write([]byte(`{"g1":"Graph One","g2":"Graph Two"}`))
	}))
	defer srv.Close()
	client, err := renderservice.New(srv.URL + "/rest/")
	require.NoError(t, err)

	display := &fakeDisplay{}
	loop := scheduler.NewManual()
	vps := &viewports{}
	ctrl, err := New(Config{Service: client, Display: display, Loop: loop, Viewports: vps.factory})
	require.NoError(t, err)

	ctrl.Init(context.Background())
	loop.RunPending()

	require.Len(t, display.options, 2)
	assert.Equal(t, renderservice.Graph{Ref: "g1", Label: "Graph One"}, display.options[0])
	assert.Equal(t, renderservice.Graph{Ref: "g2", Label: "Graph Two"}, display.options[1])
}

func TestSubmit_SyncInstallsStrippedImage(t *testing.T) {
	h := newHarness(t)
	h.display.metrics = Metrics{
		ViewportHeight: 800,
		Header:         Box{Height: 60, MarginBottom: 10},
		Footer:         Box{Height: 30},
		PaddingTop:     5,
		PaddingBottom:  5,
	}

	h.ctrl.Submit(g1, false)
	h.loop.RunPending()

	require.Len(t, h.display.images, 1)
	img := h.display.images[0]
	assert.NotContains(t, img.Markup, "width=")
	assert.NotContains(t, img.Markup, "height=")
	assert.Contains(t, img.Markup, `viewBox="0 0 640 480"`)

	assert.Equal(t, 690.0, h.display.lastHeight())
	require.Len(t, h.vps.created, 1)
	assert.Same(t, img, h.vps.created[0].target)
	assert.Equal(t, 1, h.vps.live)

	st := h.ctrl.Status().Get()
	assert.Equal(t, PhaseReady, st.Phase)
	assert.Same(t, img, st.Image)
	assert.NotEmpty(t, st.RequestID)
}

func TestSubmit_SyncEmptyBodyFails(t *testing.T) {
	h := newHarness(t)
	h.svc.render = nil

	h.ctrl.Submit(g1, false)
	h.loop.RunPending()

	assert.Equal(t, MsgFailed, h.display.message)
	assert.ErrorIs(t, h.ctrl.Status().Get().Err, ErrEmptyResult)
	assert.Empty(t, h.vps.created)
}

func TestSubmit_SyncServiceErrorFails(t *testing.T) {
	h := newHarness(t)
	h.svc.renderErr = &renderservice.Error{Op: "render", StatusCode: http.StatusServiceUnavailable}

	h.ctrl.Submit(g1, false)
	h.loop.RunPending()

	assert.Equal(t, MsgFailed, h.display.message)
	assert.ErrorIs(t, h.ctrl.Status().Get().Err, renderservice.ErrBusy)
}

func TestSubmit_MarkupWithoutSVGFails(t *testing.T) {
	h := newHarness(t)
	h.svc.render = []byte("<p>nothing here</p>")

	h.ctrl.Submit(g1, false)
	h.loop.RunPending()

	assert.Equal(t, MsgFailed, h.display.message)
	assert.ErrorIs(t, h.ctrl.Status().Get().Err, svgdoc.ErrNoSVG)
}

func TestSubmit_NoGraph(t *testing.T) {
	h := newHarness(t)

	h.ctrl.Submit(renderservice.Request{}, false)

	assert.Equal(t, MsgFailed, h.display.message)
	assert.ErrorIs(t, h.ctrl.Status().Get().Err, ErrNoGraph)
	assert.Zero(t, h.svc.renders)
}

func TestSubmit_AtMostOneLiveViewport(t *testing.T) {
	h := newHarness(t)
	h.svc.result = func(n int, _ renderservice.JobHandle) ([]byte, error) {
		if n%2 == 0 {
			return []byte(sizedSVG), nil
		}
		return nil, nil
	}

	for i := 0; i < 5; i++ {
		h.ctrl.Submit(g1, false)
		h.loop.RunPending()
		assert.Equal(t, 1, h.vps.live)

		h.ctrl.Submit(g1, true)
		// the previous viewport goes away before anything else happens
		assert.Equal(t, 0, h.vps.live)
		h.loop.Settle(10)
		assert.Equal(t, 1, h.vps.live)
	}

	assert.Equal(t, 1, h.vps.max)
	assert.Len(t, h.vps.created, 10)
	for _, vp := range h.vps.created[:9] {
		assert.True(t, vp.destroyed)
	}
	assert.False(t, h.vps.created[9].destroyed)
}

func TestSubmit_ClearsRegionFirst(t *testing.T) {
	h := newHarness(t)
	h.svc.renderErr = errors.New("boom")
	h.ctrl.Submit(g1, false)
	h.loop.RunPending()
	require.Equal(t, MsgFailed, h.display.message)

	h.svc.renderErr = nil
	h.ctrl.Submit(g1, false)
	assert.Equal(t, 2, h.display.clears)
	assert.False(t, h.display.visible)
	assert.Empty(t, h.display.message)
}

func TestAsync_BackoffDoublesUntilCeiling(t *testing.T) {
	h := newHarness(t)

	h.ctrl.Submit(g1, true)
	assert.True(t, h.display.busy)
	fired := h.loop.Settle(100)

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
	}
	assert.Equal(t, want, h.svc.delays(0))
	assert.Equal(t, len(want), fired)
	for _, d := range h.svc.delays(0) {
		assert.Less(t, d, 64*time.Second)
	}
	assert.Equal(t, want, DefaultBackoff.Delays())
}

func TestAsync_TimesOutWithoutFurtherPolls(t *testing.T) {
	h := newHarness(t)

	h.ctrl.Submit(g1, true)
	h.loop.Settle(100)

	assert.Equal(t, MsgTimedOut, h.display.message)
	st := h.ctrl.Status().Get()
	assert.Equal(t, PhaseTimedOut, st.Phase)
	assert.ErrorIs(t, st.Err, ErrTimedOut)
	assert.Zero(t, h.loop.PendingTimers())

	polls := len(h.svc.polls)
	h.loop.Advance(10 * time.Minute)
	assert.Len(t, h.svc.polls, polls)
	assert.Empty(t, h.vps.created)
}

func TestAsync_PollFailureStopsImmediately(t *testing.T) {
	h := newHarness(t)
	h.svc.result = func(n int, _ renderservice.JobHandle) ([]byte, error) {
		if n == 3 {
			return nil, &renderservice.Error{Op: "result", StatusCode: http.StatusInternalServerError}
		}
		return nil, nil
	}

	h.ctrl.Submit(g1, true)
	h.loop.Settle(100)

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, h.svc.delays(0))
	assert.Equal(t, MsgFailed, h.display.message)
	assert.Equal(t, PhaseFailed, h.phase())
	assert.Zero(t, h.loop.PendingTimers())

	h.loop.Advance(time.Minute)
	assert.Len(t, h.svc.polls, 3)
}

func TestAsync_ResultInstallsImage(t *testing.T) {
	h := newHarness(t)
	h.svc.handle = "job-1"
	var handles []renderservice.JobHandle
	h.svc.result = func(n int, hd renderservice.JobHandle) ([]byte, error) {
		handles = append(handles, hd)
		if n == 3 {
			return []byte(sizedSVG), nil
		}
		return nil, nil
	}

	var phases []Phase
	h.ctrl.Status().Subscribe(func(s Status) { phases = append(phases, s.Phase) })

	h.ctrl.Submit(g1, true)
	h.loop.Settle(100)

	assert.Equal(t, []renderservice.JobHandle{"job-1", "job-1", "job-1"}, handles)
	require.Len(t, h.display.images, 1)
	assert.NotContains(t, h.display.images[0].Markup, "width=")
	assert.Equal(t, 1, h.vps.live)
	assert.False(t, h.display.busy)
	assert.Equal(t, []Phase{PhaseLoading, PhasePolling, PhasePolling, PhasePolling, PhaseReady}, phases)
}

func TestAsync_SubmitFailureDoesNotPoll(t *testing.T) {
	h := newHarness(t)
	h.svc.submitErr = errors.New("refused")

	h.ctrl.Submit(g1, true)
	h.loop.Settle(100)

	assert.Equal(t, MsgFailed, h.display.message)
	assert.Empty(t, h.svc.polls)
	assert.Zero(t, h.loop.PendingTimers())
}

func TestAsync_ResubmitAbandonsPendingJob(t *testing.T) {
	h := newHarness(t)

	h.ctrl.Submit(g1, true)
	h.loop.Advance(1500 * time.Millisecond)
	require.Len(t, h.svc.polls, 1)
	require.Equal(t, 1, h.loop.PendingTimers())

	h.ctrl.Submit(renderservice.Request{Graph: "g2"}, false)
	assert.Zero(t, h.loop.PendingTimers())
	h.loop.Settle(100)

	assert.Len(t, h.svc.polls, 1)
	assert.Equal(t, PhaseReady, h.phase())
	assert.Equal(t, renderservice.GraphRef("g2"), h.ctrl.Status().Get().Request.Graph)
}

// holdingLoop delays continuations until release is called, so a test can
// resubmit while a service call is in flight
type holdingLoop struct {
	*scheduler.Manual
	held []scheduler.Task
}

func (l *holdingLoop) Go(work func(), then scheduler.Task) {
	work()
	l.held = append(l.held, then)
}

func (l *holdingLoop) release() {
	held := l.held
	l.held = nil
	for _, t := range held {
		l.Post(t)
	}
	l.RunPending()
}

func TestSubmit_StaleResultIsDiscarded(t *testing.T) {
	loop := &holdingLoop{Manual: scheduler.NewManual()}
	svc := &fakeService{loop: loop.Manual, render: []byte(sizedSVG)}
	display := &fakeDisplay{}
	vps := &viewports{}
	ctrl, err := New(Config{Service: svc, Display: display, Loop: loop, Viewports: vps.factory})
	require.NoError(t, err)

	ctrl.Submit(g1, false)
	svc.render = []byte(`<svg viewBox="0 0 1 1"></svg>`)
	ctrl.Submit(renderservice.Request{Graph: "g2"}, false)
	loop.release()

	require.Len(t, display.images, 1)
	assert.Equal(t, svgdoc.Rect{W: 1, H: 1}, display.images[0].ViewBox)
	assert.Equal(t, 1, vps.live)
	assert.Equal(t, 1, vps.max)
}

func TestResize_RecomputesHeightAndRefits(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Submit(g1, false)
	h.loop.RunPending()
	require.Len(t, h.vps.created, 1)
	vp := h.vps.created[0]
	fitted, centered := vp.fitted, vp.centered

	h.display.metrics = Metrics{ViewportHeight: 500, Header: Box{Height: 50}, Footer: Box{Height: 50}}
	h.ctrl.Resize()

	assert.Equal(t, 400.0, h.display.lastHeight())
	assert.Equal(t, 1, vp.resized)
	assert.Equal(t, fitted+1, vp.fitted)
	assert.Equal(t, centered+1, vp.centered)
}

func TestResize_WithoutViewport(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Resize()
	assert.Equal(t, 800.0, h.display.lastHeight())
	assert.Nil(t, h.ctrl.Viewport())
}

func TestInstallFailureShowsFailed(t *testing.T) {
	h := newHarness(t)
	h.display.failNext = errors.New("no region")

	h.ctrl.Submit(g1, false)
	h.loop.RunPending()

	assert.Equal(t, MsgFailed, h.display.message)
	assert.Empty(t, h.vps.created)
}

func TestClose_ReleasesEverything(t *testing.T) {
	h := newHarness(t)
	h.ctrl.Submit(g1, false)
	h.loop.RunPending()
	h.ctrl.Submit(g1, true)
	h.loop.RunPending()
	require.Equal(t, 1, h.loop.PendingTimers())

	h.ctrl.Close()

	assert.Zero(t, h.loop.PendingTimers())
	assert.Zero(t, h.vps.live)
}

func TestLogsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	loop := scheduler.NewManual()
	svc := &fakeService{loop: loop, render: []byte(sizedSVG)}
	vps := &viewports{}
	ctrl, err := New(Config{Service: svc, Display: &fakeDisplay{}, Loop: loop, Viewports: vps.factory, Logger: &logger})
	require.NoError(t, err)

	ctrl.Submit(g1, false)
	loop.RunPending()

	id := ctrl.Status().Get().RequestID
	require.NotEmpty(t, id)
	out := buf.String()
	assert.Contains(t, out, `"request":"`+id+`"`)
	assert.Contains(t, out, `"component":"panel"`)
	assert.Equal(t, 2, strings.Count(out, id))
}

func TestAsync_EndToEndWithRenderService(t *testing.T) {
	polls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		switch r.URL.Path {
		case "/" + renderservice.PathStdSVGAsync:
			assert.Equal(t, "g1", r.PostForm.Get(renderservice.FieldGraphID))
			_, _ = w.Write([]byte("job-42\n"))
		case "/" + renderservice.PathSVGAsyncResult:
			assert.Equal(t, "job-42", r.PostForm.Get(renderservice.FieldUUID))
			polls++
			if polls < 3 {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			_, _ = w.Write([]byte(sizedSVG))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	client, err := renderservice.New(srv.URL)
	require.NoError(t, err)

	loop := scheduler.NewManual()
	display := &fakeDisplay{}
	vps := &viewports{}
	ctrl, err := New(Config{Service: client, Display: display, Loop: loop, Viewports: vps.factory})
	require.NoError(t, err)

	ctrl.Submit(g1, true)
	loop.Settle(100)

	assert.Equal(t, 3, polls)
	assert.Equal(t, 7*time.Second, loop.Now())
	assert.Equal(t, PhaseReady, ctrl.Status().Get().Phase)
	require.Len(t, display.images, 1)
}

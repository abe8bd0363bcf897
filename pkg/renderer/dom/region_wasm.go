//go:build js && wasm
// +build js,wasm

// Package dom binds the render panel to the browser document.
package dom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"syscall/js"

	"github.com/recera/graphpanel/pkg/components"
	"github.com/recera/graphpanel/pkg/page"
	"github.com/recera/graphpanel/pkg/panel"
	"github.com/recera/graphpanel/pkg/renderer/html"
	"github.com/recera/graphpanel/pkg/renderservice"
	"github.com/recera/graphpanel/pkg/svgdoc"
)

// Region implements panel.Display over the host page
type Region struct {
	document js.Value
	window   js.Value

	form   js.Value
	sel    js.Value
	async  js.Value
	root   js.Value
	region js.Value
	header js.Value
	footer js.Value

	spinner string
	funcs   []listener
}

type listener struct {
	target js.Value
	event  string
	fn     js.Func
}

// NewRegion looks up the page elements
func NewRegion() (*Region, error) {
	document := js.Global().Get("document")
	r := &Region{
		document: document,
		window:   js.Global().Get("window"),
		form:     document.Call("getElementById", page.FormID),
		sel:      document.Call("querySelector", `select[name="`+page.SelectName+`"]`),
		async:    document.Call("querySelector", `input[name="`+page.AsyncName+`"]`),
		root:     document.Call("querySelector", `input[name="`+page.RootNodeName+`"]`),
		region:   document.Call("getElementById", page.RegionID),
		header:   document.Call("getElementById", page.HeaderID),
		footer:   document.Call("getElementById", page.FooterID),
	}
	switch {
	case !r.form.Truthy():
		return nil, fmt.Errorf("dom: #%s not found", page.FormID)
	case !r.sel.Truthy():
		return nil, fmt.Errorf("dom: select[name=%s] not found", page.SelectName)
	case !r.region.Truthy():
		return nil, fmt.Errorf("dom: #%s not found", page.RegionID)
	}

	spinner, err := html.RenderToString(components.LoadingSpinner(components.SpinnerProps{Size: "large", Text: "Rendering..."}))
	if err != nil {
		return nil, err
	}
	r.spinner = spinner
	return r, nil
}

// ServiceBase returns the base URL the page was served with
func (r *Region) ServiceBase() string {
	v := r.document.Get("body").Call("getAttribute", page.ServiceAttr)
	if !v.Truthy() {
		return ""
	}
	return v.String()
}

// SetOptions replaces the selector options, keeping the given order
func (r *Region) SetOptions(graphs []renderservice.Graph) {
	r.sel.Set("innerHTML", "")
	for _, g := range graphs {
		opt := r.document.Call("createElement", "option")
		opt.Set("value", string(g.Ref))
		opt.Set("textContent", g.Label)
		r.sel.Call("appendChild", opt)
	}
}

// Clear empties the region and fades it out
func (r *Region) Clear() {
	r.region.Get("classList").Call("remove", page.VisibleClass)
	r.region.Set("innerHTML", "")
}

// ShowBusy shows the spinner
func (r *Region) ShowBusy() {
	r.region.Set("innerHTML", r.spinner)
	r.region.Get("classList").Call("add", page.VisibleClass)
}

// ShowMessage shows text in place of an image
func (r *Region) ShowMessage(msg string) {
	markup, err := html.RenderToString(components.Message(msg))
	if err != nil {
		r.region.Set("textContent", msg)
	} else {
		r.region.Set("innerHTML", markup)
	}
	r.region.Get("classList").Call("add", page.VisibleClass)
}

// Install swaps the image in and returns its <svg> element
func (r *Region) Install(img *svgdoc.Image) (panel.Target, error) {
	r.region.Set("innerHTML", img.Markup)
	svg := r.region.Call("querySelector", "svg")
	if !svg.Truthy() {
		r.region.Set("innerHTML", "")
		return nil, errors.New("dom: installed markup has no svg element")
	}
	r.region.Get("classList").Call("add", page.VisibleClass)
	return svg, nil
}

// Metrics measures the header, footer and region padding
func (r *Region) Metrics() panel.Metrics {
	style := r.window.Call("getComputedStyle", r.region)
	return panel.Metrics{
		ViewportHeight: r.window.Get("innerHeight").Float(),
		Header:         r.box(r.header),
		Footer:         r.box(r.footer),
		PaddingTop:     px(style.Get("paddingTop").String()),
		PaddingBottom:  px(style.Get("paddingBottom").String()),
	}
}

func (r *Region) box(el js.Value) panel.Box {
	if !el.Truthy() {
		return panel.Box{}
	}
	style := r.window.Call("getComputedStyle", el)
	return panel.Box{
		Height:       el.Call("getBoundingClientRect").Get("height").Float(),
		MarginTop:    px(style.Get("marginTop").String()),
		MarginBottom: px(style.Get("marginBottom").String()),
	}
}

// SetRegionHeight sets the region height; the width stays at 100%
func (r *Region) SetRegionHeight(height float64) {
	r.region.Get("style").Set("height", strconv.FormatFloat(height, 'f', -1, 64)+"px")
}

// OnSubmit intercepts the form submission. The page never navigates.
func (r *Region) OnSubmit(fn func(req renderservice.Request, async bool)) {
	r.on(r.form, "submit", func(e js.Value) {
		e.Call("preventDefault")
		req := renderservice.Request{Graph: renderservice.GraphRef(r.sel.Get("value").String())}
		if r.root.Truthy() {
			req.RootNode = strings.TrimSpace(r.root.Get("value").String())
		}
		async := r.async.Truthy() && r.async.Get("checked").Bool()
		fn(req, async)
	})
}

// OnResize calls fn on every window resize
func (r *Region) OnResize(fn func()) {
	r.on(r.window, "resize", func(js.Value) { fn() })
}

func (r *Region) on(target js.Value, event string, handle func(e js.Value)) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var e js.Value
		if len(args) > 0 {
			e = args[0]
		}
		handle(e)
		return nil
	})
	target.Call("addEventListener", event, fn)
	r.funcs = append(r.funcs, listener{target: target, event: event, fn: fn})
}

// Release removes the handlers installed by OnSubmit and OnResize
func (r *Region) Release() {
	for _, l := range r.funcs {
		l.target.Call("removeEventListener", l.event, l.fn)
		l.fn.Release()
	}
	r.funcs = nil
}

// px parses a computed CSS length such as "16px"
func px(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil {
		return 0
	}
	return f
}

//go:build js && wasm
// +build js,wasm

package panzoom

import (
	"errors"
	"syscall/js"

	"github.com/recera/graphpanel/pkg/svgdoc"
)

const svgNS = "http://www.w3.org/2000/svg"

// Controller binds a View to an <svg> element in the document
type Controller struct {
	svg       js.Value
	view      *View
	o         Options
	listeners []listener
	icons     js.Value
	dragging  bool
	lastX     float64
	lastY     float64
	destroyed bool
}

type listener struct {
	target js.Value
	event  string
	fn     js.Func
}

// Attach enables pan/zoom on svg. The element must already be in the
// document and carry a viewBox.
func Attach(svg js.Value, opts *Options) (*Controller, error) {
	if !svg.Truthy() {
		return nil, errors.New("panzoom: no svg element")
	}
	base, ok := svgdoc.ParseViewBox(svg.Call("getAttribute", "viewBox").String())
	if !ok {
		return nil, errors.New("panzoom: svg element has no usable viewBox")
	}

	c := &Controller{svg: svg, view: NewView(base, opts), o: opts.withDefaults()}
	svg.Get("style").Set("cursor", "grab")
	svg.Get("style").Set("touchAction", "none")
	c.Resize()
	c.view.Reset()
	c.apply()

	if !c.o.DisableMouseWheelZoom {
		c.on(svg, "wheel", func(e js.Value) {
			e.Call("preventDefault")
			fx, fy := c.fraction(e)
			if c.view.ZoomAt(c.view.WheelFactor(e.Get("deltaY").Float()), fx, fy) {
				c.zoomed()
			}
		})
	}
	if !c.o.DisableDblClickZoom {
		c.on(svg, "dblclick", func(e js.Value) {
			fx, fy := c.fraction(e)
			if c.view.ZoomAt(1+c.o.ZoomScaleSensitivity, fx, fy) {
				c.zoomed()
			}
		})
	}
	if !c.o.DisablePan {
		window := js.Global().Get("window")
		c.on(svg, "pointerdown", func(e js.Value) {
			if e.Get("button").Int() != 0 {
				return
			}
			c.dragging = true
			c.lastX = e.Get("clientX").Float()
			c.lastY = e.Get("clientY").Float()
			svg.Get("style").Set("cursor", "grabbing")
		})
		c.on(window, "pointermove", func(e js.Value) {
			if !c.dragging {
				return
			}
			x := e.Get("clientX").Float()
			y := e.Get("clientY").Float()
			c.view.PanBy(x-c.lastX, y-c.lastY)
			c.lastX, c.lastY = x, y
			c.panned()
		})
		c.on(window, "pointerup", func(js.Value) {
			c.dragging = false
			svg.Get("style").Set("cursor", "grab")
		})
	}
	if c.o.ControlIconsEnabled {
		c.addIcons()
	}
	return c, nil
}

func (c *Controller) on(target js.Value, event string, handle func(e js.Value)) {
	fn := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		if c.destroyed || len(args) == 0 {
			return nil
		}
		handle(args[0])
		return nil
	})
	target.Call("addEventListener", event, fn)
	c.listeners = append(c.listeners, listener{target: target, event: event, fn: fn})
}

func (c *Controller) fraction(e js.Value) (fx, fy float64) {
	rect := c.svg.Call("getBoundingClientRect")
	w := rect.Get("width").Float()
	h := rect.Get("height").Float()
	if w <= 0 || h <= 0 {
		return 0.5, 0.5
	}
	return (e.Get("clientX").Float() - rect.Get("left").Float()) / w,
		(e.Get("clientY").Float() - rect.Get("top").Float()) / h
}

func (c *Controller) apply() {
	if c.destroyed {
		return
	}
	c.svg.Call("setAttribute", "viewBox", c.view.ViewBox())
}

func (c *Controller) zoomed() {
	c.apply()
	if c.o.OnZoom != nil {
		c.o.OnZoom(c.view.Zoom())
	}
}

func (c *Controller) panned() {
	c.apply()
	if c.o.OnPan != nil {
		c.o.OnPan(c.view.Box())
	}
}

// addIcons draws the zoom buttons in screen space: a nested <svg> without a
// viewBox stays unaffected by ours.
func (c *Controller) addIcons() {
	doc := js.Global().Get("document")
	el := func(tag string, attrs map[string]string) js.Value {
		n := doc.Call("createElementNS", svgNS, tag)
		for k, v := range attrs {
			n.Call("setAttribute", k, v)
		}
		return n
	}

	group := el("svg", map[string]string{"class": "panzoom-controls", "x": "8", "y": "8", "width": "28", "height": "88", "overflow": "visible"})
	button := func(y string, label string, action func()) {
		b := el("g", map[string]string{"class": "panzoom-control", "transform": "translate(0 " + y + ")", "style": "cursor:pointer"})
		b.Call("appendChild", el("rect", map[string]string{"width": "24", "height": "24", "rx": "4", "fill": "#fff", "stroke": "#888"}))
		t := el("text", map[string]string{"x": "12", "y": "17", "text-anchor": "middle", "font-size": "16", "font-family": "sans-serif"})
		t.Set("textContent", label)
		b.Call("appendChild", t)
		c.on(b, "click", func(e js.Value) {
			e.Call("stopPropagation")
			action()
		})
		c.on(b, "pointerdown", func(e js.Value) { e.Call("stopPropagation") })
		group.Call("appendChild", b)
	}
	button("0", "+", c.ZoomIn)
	button("30", "↺", c.Reset)
	button("60", "−", c.ZoomOut)

	// The icons would move with our viewBox if appended to the image itself,
	// so they go on the image's parent, over its top-left corner.
	parent := c.svg.Get("parentNode")
	if !parent.Truthy() {
		return
	}
	holder := doc.Call("createElement", "div")
	holder.Set("className", "panzoom-icons")
	holder.Get("style").Set("position", "absolute")
	holder.Get("style").Set("left", "0")
	holder.Get("style").Set("top", "0")
	frame := el("svg", map[string]string{"width": "40", "height": "104"})
	frame.Call("appendChild", group)
	holder.Call("appendChild", frame)
	parent.Get("style").Set("position", "relative")
	parent.Call("appendChild", holder)
	c.icons = holder
}

func (c *Controller) Fit() {
	if c.destroyed {
		return
	}
	c.view.Fit()
	c.zoomed()
}

func (c *Controller) Center() {
	if c.destroyed {
		return
	}
	c.view.Center()
	c.panned()
}

// Resize re-reads the rendered size of the element
func (c *Controller) Resize() {
	if c.destroyed {
		return
	}
	rect := c.svg.Call("getBoundingClientRect")
	c.view.SetContainer(rect.Get("width").Float(), rect.Get("height").Float())
}

func (c *Controller) ZoomIn() {
	if !c.destroyed && c.view.ZoomIn() {
		c.zoomed()
	}
}

func (c *Controller) ZoomOut() {
	if !c.destroyed && c.view.ZoomOut() {
		c.zoomed()
	}
}

func (c *Controller) ZoomBy(factor float64) {
	if !c.destroyed && c.view.ZoomAt(factor, 0.5, 0.5) {
		c.zoomed()
	}
}

func (c *Controller) PanBy(dx, dy float64) {
	if c.destroyed || c.o.DisablePan {
		return
	}
	c.view.PanBy(dx, dy)
	c.panned()
}

func (c *Controller) Reset() {
	if c.destroyed {
		return
	}
	c.view.Reset()
	c.zoomed()
}

func (c *Controller) Zoom() float64 { return c.view.Zoom() }

// Destroy removes listeners and control icons. The element itself is left
// in place with its current viewBox.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	for _, l := range c.listeners {
		l.target.Call("removeEventListener", l.event, l.fn)
		l.fn.Release()
	}
	c.listeners = nil
	if c.icons.Truthy() {
		c.icons.Call("remove")
		c.icons = js.Undefined()
	}
	c.svg.Get("style").Set("cursor", "")
}

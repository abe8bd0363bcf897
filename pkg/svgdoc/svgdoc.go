// Package svgdoc pulls the SVG root out of a rendered graph response and
// prepares it for display: explicit sizing is removed so the page decides
// the size, and a viewBox is guaranteed so the image can be fitted.
package svgdoc

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoSVG is returned when the markup carries no svg element
var ErrNoSVG = errors.New("no svg element in markup")

// Rect is a rectangle in SVG user units
type Rect struct {
	X, Y, W, H float64
}

// Empty reports whether r has no area
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// String formats r as a viewBox attribute value
func (r Rect) String() string {
	return strings.Join([]string{fmtNum(r.X), fmtNum(r.Y), fmtNum(r.W), fmtNum(r.H)}, " ")
}

// Image is an SVG document ready to be installed in the display region
type Image struct {
	// Markup is the serialized svg element, without width and height
	Markup string
	// ViewBox is the content bounds; zero when neither a viewBox nor a
	// numeric width/height was present
	ViewBox Rect
	// Width and Height are the sizing attributes that were stripped, if numeric
	Width, Height float64
}

// Extract finds the outermost svg element in markup and returns it with its
// width and height attributes removed. When the svg has no viewBox but had
// numeric sizing, a viewBox of "0 0 width height" is added in their place.
func Extract(markup []byte) (*Image, error) {
	if len(bytes.TrimSpace(markup)) == 0 {
		return nil, ErrNoSVG
	}
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(bytes.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	svg := findSVG(nodes)
	if svg == nil {
		return nil, ErrNoSVG
	}

	img := &Image{}
	img.Width, _ = parseLength(attr(svg, "width"))
	img.Height, _ = parseLength(attr(svg, "height"))
	StripSizing(svg)

	if vb, ok := ParseViewBox(attr(svg, "viewBox")); ok {
		img.ViewBox = vb
	} else if img.Width > 0 && img.Height > 0 {
		img.ViewBox = Rect{W: img.Width, H: img.Height}
		setAttr(svg, "viewBox", img.ViewBox.String())
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, svg); err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	img.Markup = buf.String()
	return img, nil
}

// StripSizing removes explicit width and height attributes from an element
func StripSizing(n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && (a.Key == "width" || a.Key == "height") {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// ParseViewBox parses "minx miny width height", separated by spaces and/or commas
func ParseViewBox(s string) (Rect, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return Rect{}, false
	}
	var v [4]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Rect{}, false
		}
		v[i] = n
	}
	r := Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}
	if r.Empty() {
		return Rect{}, false
	}
	return r, true
}

// findSVG walks breadth first so the shallowest svg wins over nested ones
func findSVG(roots []*html.Node) *html.Node {
	queue := append([]*html.Node(nil), roots...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.Type == html.ElementNode && n.DataAtom == atom.Svg {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			queue = append(queue, c)
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// parseLength accepts unitless and px lengths; anything relative is rejected
func parseLength(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

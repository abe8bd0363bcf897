package builder

import (
	"strings"

	"github.com/recera/graphpanel/pkg/vdom"
)

// ElementBuilder builds one vdom element fluently
type ElementBuilder struct {
	tag   string
	props vdom.Props
	kids  []*vdom.VNode
}

// New starts an element with the given tag
func New(tag string) *ElementBuilder {
	return &ElementBuilder{tag: tag, props: vdom.Props{}}
}

// Document elements
func Html() *ElementBuilder   { return New("html") }
func Head() *ElementBuilder   { return New("head") }
func Body() *ElementBuilder   { return New("body") }
func Meta() *ElementBuilder   { return New("meta") }
func Title() *ElementBuilder  { return New("title") }
func Link() *ElementBuilder   { return New("link") }
func Script() *ElementBuilder { return New("script") }
func Style() *ElementBuilder  { return New("style") }

// Layout elements
func Header() *ElementBuilder { return New("header") }
func Footer() *ElementBuilder { return New("footer") }
func Main() *ElementBuilder   { return New("main") }
func Div() *ElementBuilder    { return New("div") }
func Span() *ElementBuilder   { return New("span") }
func H1() *ElementBuilder     { return New("h1") }
func P() *ElementBuilder      { return New("p") }

// Form elements
func Form() *ElementBuilder   { return New("form") }
func Label() *ElementBuilder  { return New("label") }
func Select() *ElementBuilder { return New("select") }
func Option() *ElementBuilder { return New("option") }
func Input() *ElementBuilder  { return New("input") }
func Button() *ElementBuilder { return New("button") }

// SVG elements
func Svg() *ElementBuilder    { return New("svg") }
func Circle() *ElementBuilder { return New("circle") }

// ID sets the id attribute
func (b *ElementBuilder) ID(id string) *ElementBuilder {
	b.props["id"] = id
	return b
}

// Class adds to the class attribute
func (b *ElementBuilder) Class(classes ...string) *ElementBuilder {
	var parts []string
	if existing, ok := b.props["class"].(string); ok && existing != "" {
		parts = append(parts, existing)
	}
	for _, c := range classes {
		if c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) > 0 {
		b.props["class"] = strings.Join(parts, " ")
	}
	return b
}

// StyleAttr sets the inline style attribute
func (b *ElementBuilder) StyleAttr(style string) *ElementBuilder {
	b.props["style"] = style
	return b
}

// Text appends a text child
func (b *ElementBuilder) Text(text string) *ElementBuilder {
	b.kids = append(b.kids, vdom.NewText(text))
	return b
}

// Children appends child nodes; nil children are skipped
func (b *ElementBuilder) Children(children ...*vdom.VNode) *ElementBuilder {
	b.kids = append(b.kids, children...)
	return b
}

// Build returns the finished node
func (b *ElementBuilder) Build() *vdom.VNode {
	return vdom.NewElement(b.tag, b.props, b.kids...)
}

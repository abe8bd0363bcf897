// Package vdom is the tree the host page and the components are built as
// before the html renderer turns them into markup.
package vdom

// VKind represents the type of virtual node
type VKind uint8

const (
	// KindElement represents a DOM element node
	KindElement VKind = iota
	// KindText represents a text node
	KindText
	// KindFragment represents a fragment (multiple children without parent)
	KindFragment
)

// Props represents the attributes of a VNode
type Props map[string]any

// VNode represents a virtual DOM node
// Once built it should never be modified
type VNode struct {
	Kind VKind

	// Tag is the element tag name (e.g., "div", "svg")
	// Only used when Kind == KindElement
	Tag string

	Props Props

	// Kids contains child nodes
	// For KindText, this is nil
	Kids []VNode

	// Text content (only used when Kind == KindText)
	Text string
}

// NewElement creates a new element VNode. Nil children are skipped.
func NewElement(tag string, props Props, children ...*VNode) *VNode {
	return &VNode{
		Kind:  KindElement,
		Tag:   tag,
		Props: props,
		Kids:  values(children),
	}
}

// NewText creates a new text VNode
func NewText(text string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: text,
	}
}

// NewFragment creates a new fragment VNode
func NewFragment(children ...*VNode) *VNode {
	return &VNode{
		Kind: KindFragment,
		Kids: values(children),
	}
}

func values(children []*VNode) []VNode {
	kids := make([]VNode, 0, len(children))
	for _, child := range children {
		if child != nil {
			kids = append(kids, *child)
		}
	}
	return kids
}

// IsElement returns true if this is an element node
func (v VNode) IsElement() bool {
	return v.Kind == KindElement
}

// IsText returns true if this is a text node
func (v VNode) IsText() bool {
	return v.Kind == KindText
}

// Attr returns the string form of an attribute, or "" when unset
func (v VNode) Attr(key string) string {
	if v.Props == nil {
		return ""
	}
	if s, ok := v.Props[key].(string); ok {
		return s
	}
	return ""
}

// Find returns the first element, depth first, for which match is true
func (v *VNode) Find(match func(*VNode) bool) *VNode {
	if v.Kind == KindElement && match(v) {
		return v
	}
	for i := range v.Kids {
		if found := v.Kids[i].Find(match); found != nil {
			return found
		}
	}
	return nil
}

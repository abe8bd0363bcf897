package html

import (
	"errors"
	"strings"
	"testing"

	"github.com/recera/graphpanel/pkg/vdom"
)

func TestRender_TextNodes(t *testing.T) {
	tests := []struct {
		name     string
		node     *vdom.VNode
		expected string
	}{
		{
			name:     "simple text",
			node:     vdom.NewText("Timed out"),
			expected: "Timed out",
		},
		{
			name:     "text with HTML entities",
			node:     vdom.NewText("<script>alert('xss')</script>"),
			expected: "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;",
		},
		{
			name:     "text with quotes",
			node:     vdom.NewText(`"Graph" & 'Label'`),
			expected: "&#34;Graph&#34; &amp; &#39;Label&#39;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := RenderToString(tt.node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("RenderToString() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestRender_Elements(t *testing.T) {
	tests := []struct {
		name     string
		node     *vdom.VNode
		expected string
	}{
		{
			name:     "empty div",
			node:     vdom.NewElement("div", nil),
			expected: "<div></div>",
		},
		{
			name: "attributes in name order",
			node: vdom.NewElement("div", vdom.Props{
				"id":    "graph",
				"class": "region",
			}),
			expected: `<div class="region" id="graph"></div>`,
		},
		{
			name: "select with options",
			node: vdom.NewElement("select", vdom.Props{"name": "graphs"},
				vdom.NewElement("option", vdom.Props{"value": "g1", "selected": true}, vdom.NewText("Graph One")),
				vdom.NewElement("option", vdom.Props{"value": "g2"}, vdom.NewText("Graph Two")),
			),
			expected: `<select name="graphs"><option selected value="g1">Graph One</option><option value="g2">Graph Two</option></select>`,
		},
		{
			name: "void element with boolean attributes",
			node: vdom.NewElement("input", vdom.Props{
				"type":     "checkbox",
				"checked":  true,
				"disabled": false,
			}),
			expected: `<input checked type="checkbox">`,
		},
		{
			name: "script content is not escaped",
			node: vdom.NewElement("script", nil,
				vdom.NewText(`if (a < b && c) { go.run("x") }`),
			),
			expected: `<script>if (a < b && c) { go.run("x") }</script>`,
		},
		{
			name: "fragment",
			node: vdom.NewFragment(
				vdom.NewElement("h1", nil, vdom.NewText("Title")),
				nil,
				vdom.NewElement("p", nil, vdom.NewText("Content")),
			),
			expected: "<h1>Title</h1><p>Content</p>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := RenderToString(tt.node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("RenderToString() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestRender_XSSPrevention(t *testing.T) {
	tests := []struct {
		name    string
		node    *vdom.VNode
		notWant string
	}{
		{
			name:    "script in text",
			node:    vdom.NewElement("div", nil, vdom.NewText("<script>alert('xss')</script>")),
			notWant: "<script>",
		},
		{
			name:    "script in attribute",
			node:    vdom.NewElement("option", vdom.Props{"value": `"><script>alert('xss')</script>`}),
			notWant: "<script>",
		},
		{
			name:    "javascript URL",
			node:    vdom.NewElement("a", vdom.Props{"href": " JavaScript:alert('xss')"}, vdom.NewText("Link")),
			notWant: "alert",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := RenderToString(tt.node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strings.Contains(result, tt.notWant) {
				t.Errorf("Result should not contain %q, got: %q", tt.notWant, result)
			}
		})
	}
}

func TestRender_Document(t *testing.T) {
	var buf strings.Builder
	node := vdom.NewElement("html", nil,
		vdom.NewElement("head", nil,
			vdom.NewElement("meta", vdom.Props{"charset": "utf-8"}),
			vdom.NewElement("title", nil, vdom.NewText("Graphs")),
		),
		vdom.NewElement("body", nil),
	)
	if err := NewRenderer(&buf).Document(node); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `<!DOCTYPE html>` + "\n" + `<html><head><meta charset="utf-8"><title>Graphs</title></head><body></body></html>`
	if buf.String() != want {
		t.Errorf("Document() = %q, want %q", buf.String(), want)
	}
}

type failingWriter struct{ n int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++
	if w.n > 2 {
		return 0, errors.New("disk full")
	}
	return len(p), nil
}

func TestRender_StopsOnWriteError(t *testing.T) {
	w := &failingWriter{}
	node := vdom.NewElement("div", nil, vdom.NewText("a"), vdom.NewText("b"), vdom.NewText("c"))
	if err := NewRenderer(w).Render(node); err == nil {
		t.Fatal("expected write error")
	}
	if w.n != 3 {
		t.Errorf("writes after failure: got %d calls, want 3", w.n)
	}
}

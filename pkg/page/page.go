// Package page builds the HTML page that hosts the browser client. The
// element names it exports are what the DOM binding looks up.
package page

import (
	"fmt"
	"io"
	"strconv"

	"github.com/recera/graphpanel/pkg/builder"
	"github.com/recera/graphpanel/pkg/components"
	"github.com/recera/graphpanel/pkg/renderer/html"
	"github.com/recera/graphpanel/pkg/vdom"
)

// Element names shared with the DOM binding
const (
	FormID       = "render-form"
	SelectName   = "graphs"
	AsyncName    = "async"
	RootNodeName = "rootNodeId"
	RegionID     = "graph"
	HeaderID     = "page-header"
	FooterID     = "page-footer"

	// VisibleClass is toggled on the region to fade it in and out
	VisibleClass = "is-visible"
	// ServiceAttr on <body> carries the Render Service base URL, which may
	// be relative to the page
	ServiceAttr = "data-service-base"
)

// Asset paths served next to the page
const (
	WasmPath     = "/app.wasm"
	WasmExecPath = "/wasm_exec.js"
	ReloadPath   = "/__reload"
)

// Options configures the page
type Options struct {
	Title string
	// ServiceBase is the Render Service base URL as seen by the browser
	ServiceBase string
	// RootNodeInput adds the optional root node field
	RootNodeInput bool
	// LiveReload connects to the dev server's reload channel
	LiveReload bool
}

const stylesheet = `
html, body { margin: 0; height: 100%; font-family: system-ui, sans-serif; }
header, footer { padding: 8px 16px; background: #f4f4f5; }
form { display: flex; gap: 12px; align-items: center; flex-wrap: wrap; }
.form-field, .form-checkbox-container { display: flex; gap: 6px; align-items: center; }
#graph { width: 100%; padding: 8px 0; overflow: hidden;
  opacity: 0; transition: opacity 0.4s ease-in-out; }
#graph.is-visible { opacity: 1; }
#graph > svg { width: 100%; height: 100%; display: block; }
.region-message { text-align: center; color: #52525b; }
.spinner-track { animation: spin 1s linear infinite; transform-origin: center; }
@keyframes spin { to { transform: rotate(360deg); } }
`

// Build returns the page tree
func Build(opts Options) *vdom.VNode {
	if opts.Title == "" {
		opts.Title = "Graph viewer"
	}

	fields := []*vdom.VNode{
		components.Select(components.SelectProps{
			Name:        SelectName,
			Label:       "Graph",
			Placeholder: "Loading graphs...",
			Required:    true,
		}),
	}
	if opts.RootNodeInput {
		fields = append(fields, components.TextInput(components.TextInputProps{
			Name:        RootNodeName,
			Label:       "Root node",
			Placeholder: "optional",
		}))
	}
	fields = append(fields,
		components.Checkbox(components.CheckboxProps{Name: AsyncName, Label: "Asynchronous"}),
		components.SubmitButton("Render"),
	)

	return builder.Html().Attr("lang", "en").Children(
		builder.Head().Children(
			builder.Meta().Charset("utf-8").Build(),
			builder.Meta().Name("viewport").Attr("content", "width=device-width, initial-scale=1").Build(),
			builder.Title().Text(opts.Title).Build(),
			builder.Style().Text(stylesheet).Build(),
			builder.Script().Src(WasmExecPath).Build(),
		).Build(),
		builder.Body().Attr(ServiceAttr, opts.ServiceBase).Children(
			builder.Header().ID(HeaderID).Children(
				builder.H1().Text(opts.Title).Build(),
				builder.Form().ID(FormID).Action("#").Method("post").Children(fields...).Build(),
			).Build(),
			builder.Main().Children(
				builder.Div().ID(RegionID).Class("region").Build(),
			).Build(),
			builder.Footer().ID(FooterID).Children(
				builder.Span().Text("Drag to pan, scroll or double-click to zoom.").Build(),
			).Build(),
			builder.Script().Text(bootScript(opts)).Build(),
		).Build(),
	).Build()
}

func bootScript(opts Options) string {
	s := fmt.Sprintf(`const go = new Go();
WebAssembly.instantiateStreaming(fetch(%s), go.importObject)
  .then((r) => go.run(r.instance))
  .catch((err) => console.error("graphpanel: wasm load failed", err));
`, strconv.Quote(WasmPath))
	if opts.LiveReload {
		s += fmt.Sprintf(`(() => {
  const proto = location.protocol === "https:" ? "wss://" : "ws://";
  const ws = new WebSocket(proto + location.host + %s);
  ws.onmessage = (e) => { if (e.data === "reload") location.reload(); };
})();
`, strconv.Quote(ReloadPath))
	}
	return s
}

// Write renders the page as a complete document
func Write(w io.Writer, opts Options) error {
	return html.NewRenderer(w).Document(Build(opts))
}

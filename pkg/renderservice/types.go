package renderservice

// GraphRef names a graph known to the Render Service. It is opaque to the
// client and passed back verbatim.
type GraphRef string

// JobHandle identifies an asynchronous render job on the service
type JobHandle string

// Graph is one entry of the graph list, in the order the service sent it
type Graph struct {
	Ref   GraphRef
	Label string
}

// Request describes a render
type Request struct {
	Graph GraphRef
	// RootNode selects the rooted layout when non-empty
	RootNode string
}

// Rooted reports whether the request targets the rooted endpoints
func (r Request) Rooted() bool { return r.RootNode != "" }

// Format is the output format of a render
type Format int

const (
	// FormatSVG renders an SVG document
	FormatSVG Format = iota
	// FormatPDF renders a PDF document
	FormatPDF
)

func (f Format) String() string {
	if f == FormatPDF {
		return "pdf"
	}
	return "svg"
}

// Endpoint paths relative to the service base URL
const (
	PathList = "graph/list"

	PathStdSVG         = "graph/stdSvg"
	PathStdSVGAsync    = "graph/stdSvgAsync"
	PathRootySVG       = "graph/rootySvg"
	PathRootySVGAsync  = "graph/rootySvgAsync"
	PathSVGAsyncResult = "graph/getSvgAsyncResult"
	PathStdPDF         = "graph/stdPdf"
	PathStdPDFAsync    = "graph/stdPdfAsync"
	PathRootyPDF       = "graph/rootyPdf"
	PathRootyPDFAsync  = "graph/rootyPdfAsync"
	PathPDFAsyncResult = "graph/getPdfAsyncResult"
)

// Form field names
const (
	FieldGraphID    = "graphId"
	FieldRootNodeID = "rootNodeId"
	FieldUUID       = "uuid"
)

func renderPath(f Format, rooted, async bool) string {
	switch {
	case f == FormatPDF && rooted && async:
		return PathRootyPDFAsync
	case f == FormatPDF && rooted:
		return PathRootyPDF
	case f == FormatPDF && async:
		return PathStdPDFAsync
	case f == FormatPDF:
		return PathStdPDF
	case rooted && async:
		return PathRootySVGAsync
	case rooted:
		return PathRootySVG
	case async:
		return PathStdSVGAsync
	default:
		return PathStdSVG
	}
}

func resultPath(f Format) string {
	if f == FormatPDF {
		return PathPDFAsyncResult
	}
	return PathSVGAsyncResult
}

// Package renderservice is the HTTP client for the Render Service: the
// server that lays out graphs and exports them as SVG or PDF. The client
// only consumes its contract; nothing here renders a graph.
package renderservice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds a single request when no http.Client is supplied
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is kept in Error.Message
const maxErrorBody = 512

// Client talks to one Render Service instance
type Client struct {
	base    *url.URL
	http    *http.Client
	log     zerolog.Logger
	timeout time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request tracing
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout sets the per-request timeout of the default http.Client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the service rooted at baseURL, e.g.
// "http://localhost:8080/gephi-server/rest/". The URL must be absolute.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		base:    u,
		log:     zerolog.Nop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// BaseURL returns the normalized service root
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ListGraphs fetches the graphs the service knows, in server order
func (c *Client) ListGraphs(ctx context.Context) ([]Graph, error) {
	body, err := c.do(ctx, "list", http.MethodGet, PathList, nil)
	if err != nil {
		return nil, err
	}
	graphs, err := ParseGraphList(body)
	if err != nil {
		return nil, &Error{Op: "list", Endpoint: PathList, StatusCode: http.StatusOK, Err: err}
	}
	c.log.Debug().Int("graphs", len(graphs)).Msg("graph list fetched")
	return graphs, nil
}

// ParseGraphList decodes a graph/list response. JSON objects are unordered
// by definition, so the document order is read token by token instead of
// going through a map.
func ParseGraphList(data []byte) ([]Graph, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidList
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return nil, ErrInvalidList
	}
	var graphs []Graph
	res.ForEach(func(key, value gjson.Result) bool {
		graphs = append(graphs, Graph{Ref: GraphRef(key.String()), Label: value.String()})
		return true
	})
	return graphs, nil
}

// Render runs a synchronous render. A nil result with a nil error means the
// service had nothing to return.
func (c *Client) Render(ctx context.Context, f Format, req Request) ([]byte, error) {
	path := renderPath(f, req.Rooted(), false)
	body, err := c.do(ctx, "render", http.MethodPost, path, requestForm(req))
	if err != nil {
		return nil, err
	}
	return nonEmpty(body), nil
}

// Submit starts an asynchronous render and returns its job handle
func (c *Client) Submit(ctx context.Context, f Format, req Request) (JobHandle, error) {
	path := renderPath(f, req.Rooted(), true)
	body, err := c.do(ctx, "submit", http.MethodPost, path, requestForm(req))
	if err != nil {
		return "", err
	}
	handle := JobHandle(strings.TrimSpace(string(body)))
	if handle == "" {
		return "", &Error{Op: "submit", Endpoint: path, StatusCode: http.StatusOK, Message: "empty job handle"}
	}
	c.log.Debug().Str("job", string(handle)).Str("graph", string(req.Graph)).Msg("render job submitted")
	return handle, nil
}

// Result polls an asynchronous job. A nil result with a nil error means the
// job is not finished yet.
func (c *Client) Result(ctx context.Context, f Format, handle JobHandle) ([]byte, error) {
	form := url.Values{FieldUUID: {string(handle)}}
	body, err := c.do(ctx, "result", http.MethodPost, resultPath(f), form)
	if err != nil {
		return nil, err
	}
	return nonEmpty(body), nil
}

// RenderSVG renders req synchronously as SVG
func (c *Client) RenderSVG(ctx context.Context, req Request) ([]byte, error) {
	return c.Render(ctx, FormatSVG, req)
}

// SubmitSVG starts an asynchronous SVG render
func (c *Client) SubmitSVG(ctx context.Context, req Request) (JobHandle, error) {
	return c.Submit(ctx, FormatSVG, req)
}

// SVGResult polls an asynchronous SVG render
func (c *Client) SVGResult(ctx context.Context, handle JobHandle) ([]byte, error) {
	return c.Result(ctx, FormatSVG, handle)
}

func requestForm(req Request) url.Values {
	form := url.Values{FieldGraphID: {string(req.Graph)}}
	if req.Rooted() {
		form.Set(FieldRootNodeID, req.RootNode)
	}
	return form
}

func nonEmpty(body []byte) []byte {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return body
}

// do performs one request and classifies the response
func (c *Client) do(ctx context.Context, op, method, path string, form url.Values) ([]byte, error) {
	target := c.base.ResolveReference(&url.URL{Path: path})

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, &Error{Op: op, Endpoint: path, Err: err}
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("endpoint", path).Msg("request failed")
		return nil, &Error{Op: op, Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Endpoint: path, StatusCode: resp.StatusCode, Err: err}
	}
	c.log.Debug().
		Str("endpoint", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Dur("took", time.Since(start)).
		Msg("render service call")

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil
	default:
		msg := strings.TrimSpace(string(data))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		return nil, &Error{Op: op, Endpoint: path, StatusCode: resp.StatusCode, Message: msg}
	}
}

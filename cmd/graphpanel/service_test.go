package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/recera/graphpanel/cmd/graphpanel/internal/config"
	"github.com/recera/graphpanel/pkg/renderservice"
)

const testSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="640" height="480"><circle r="4"/></svg>`

// fakeRenderService answers under /rest/ like a Render Service; async jobs
// are ready on the second poll
type fakeRenderService struct {
	*httptest.Server
	renders atomic.Int32
	polls   atomic.Int32
}

func newFakeRenderService(t *testing.T) *fakeRenderService {
	t.Helper()
	f := &fakeRenderService{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/rest/")
		if r.Method == http.MethodPost {
			assert.NoError(t, r.ParseForm())
		}
		switch path {
		case renderservice.PathList:
			_, _ = w.Write([]byte(`{"g-net":"Network","g-tree":"Family tree","g-tree2":"Family trees"}`))
		case renderservice.PathStdSVG, renderservice.PathRootySVG:
			f.renders.Add(1)
			_, _ = w.Write([]byte(testSVG))
		case renderservice.PathStdPDF:
			f.renders.Add(1)
			_, _ = w.Write([]byte("%PDF-1.4 sync"))
		case renderservice.PathStdSVGAsync, renderservice.PathStdPDFAsync:
			f.renders.Add(1)
			_, _ = w.Write([]byte("job-" + r.PostForm.Get(renderservice.FieldGraphID)))
		case renderservice.PathSVGAsyncResult, renderservice.PathPDFAsyncResult:
			if f.polls.Add(1)%2 == 1 {
				return
			}
			if path == renderservice.PathPDFAsyncResult {
				_, _ = w.Write([]byte("%PDF-1.4 async"))
				return
			}
			_, _ = w.Write([]byte(testSVG))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.Close)
	return f
}

// testApp returns an app talking to base with a fast backoff
func testApp(t *testing.T, base string) *app {
	t.Helper()
	cfg := config.Default()
	cfg.Service.BaseURL = base
	cfg.Service.Timeout = 5 * time.Second
	cfg.Poll.Initial = 5 * time.Millisecond
	cfg.Poll.Ceiling = 320 * time.Millisecond
	cfg.Build.CacheDir = t.TempDir()
	return &app{cfg: cfg, log: zerolog.Nop()}
}

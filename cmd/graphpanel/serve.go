package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/recera/graphpanel/cmd/graphpanel/internal/config"
	"github.com/recera/graphpanel/pkg/live"
	"github.com/recera/graphpanel/pkg/page"
)

const debounceDelay = 100 * time.Millisecond

type devServer struct {
	cfg *config.Config
	log zerolog.Logger

	page     []byte
	wasmFile string
	wasmExec []byte
	proxy    *httputil.ReverseProxy
	live     *live.Server

	// rebuild runs after a debounced batch of source changes
	rebuild func(ctx context.Context) error
}

func newServeCommand(a *app) *cobra.Command {
	var port int
	var host string
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the development server",
		Long: `Serves the render panel page and its WebAssembly client, forwards Render
Service calls made by the page, and reloads the page when client sources change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Dev.Port = port
			}
			if cmd.Flags().Changed("host") {
				a.cfg.Dev.Host = host
			}
			if noWatch {
				a.cfg.Dev.Watch = false
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd.Context(), a)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run the dev server on (default dev.port)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind the dev server to (default dev.host)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not rebuild on source changes")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	workDir, err := os.MkdirTemp("", "graphpanel-dev-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(workDir)

	s, err := newDevServer(a.cfg, a.log, filepath.Join(workDir, "app.wasm"))
	if err != nil {
		return err
	}

	builder := newWasmBuilder(".", a.cfg.Build.CacheDir, a.log)
	if s.wasmExec, err = wasmExecJS(ctx); err != nil {
		return err
	}
	if _, err := builder.Build(ctx, s.wasmFile); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}
	s.rebuild = func(ctx context.Context) error {
		_, err := builder.Build(ctx, s.wasmFile)
		return err
	}

	if a.cfg.Dev.Watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		defer watcher.Close()
		if err := addWatchDirs(watcher, "."); err != nil {
			return fmt.Errorf("failed to setup watcher: %w", err)
		}
		go s.watch(ctx, watcher)
	}

	srv := &http.Server{
		Addr:    a.cfg.DevAddr(),
		Handler: s.Handler(),
	}
	go func() {
		<-ctx.Done()
		a.log.Info().Msg("🛑 Shutting down dev server...")
		s.live.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	a.log.Info().
		Str("service", a.cfg.Service.BaseURL).
		Msgf("✨ Dev server running at http://%s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newDevServer(cfg *config.Config, log zerolog.Logger, wasmFile string) (*devServer, error) {
	target, err := url.Parse(cfg.Service.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid service URL: %w", err)
	}

	var buf bytes.Buffer
	if err := page.Write(&buf, page.Options{
		ServiceBase:   cfg.Dev.ProxyPrefix,
		RootNodeInput: true,
		LiveReload:    cfg.Dev.Watch,
	}); err != nil {
		return nil, err
	}

	s := &devServer{
		cfg:      cfg,
		log:      log,
		page:     buf.Bytes(),
		wasmFile: wasmFile,
		live:     live.NewServer(log),
	}
	s.proxy = s.newProxy(target)
	return s, nil
}

// Handler routes page, assets, the reload channel and the service proxy
func (s *devServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(page.WasmPath, s.serveWASM)
	mux.HandleFunc(page.WasmExecPath, s.serveWasmExec)
	mux.HandleFunc(page.ReloadPath, s.live.HandleWebSocket)
	mux.Handle(s.cfg.Dev.ProxyPrefix, s.proxy)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/", s.servePage)
	return mux
}

// newProxy forwards prefix-relative paths to the same path under target
func (s *devServer) newProxy(target *url.URL) *httputil.ReverseProxy {
	prefix := s.cfg.Dev.ProxyPrefix
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.Out.URL.Path = "/" + strings.TrimPrefix(r.In.URL.Path, prefix)
			r.Out.URL.RawPath = ""
			r.SetURL(target)
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			s.log.Warn().Err(err).Str("path", r.URL.Path).Msg("Render Service unreachable")
			http.Error(w, "Render Service unreachable", http.StatusBadGateway)
		},
	}
}

func (s *devServer) servePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(s.page)
}

func (s *devServer) serveWASM(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/wasm")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, s.wasmFile)
}

func (s *devServer) serveWasmExec(w http.ResponseWriter, r *http.Request) {
	if len(s.wasmExec) == 0 {
		http.Error(w, "wasm_exec.js unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(s.wasmExec)
}

// addWatchDirs watches root and its subdirectories, skipping hidden,
// underscore-prefixed and output directories
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "node_modules" || name == "dist") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func isSourceFile(path string) bool {
	switch filepath.Ext(path) {
	case ".go", ".mod", ".sum":
		return true
	}
	return false
}

// watch rebuilds once source changes have been quiet for debounceDelay and
// then reloads connected pages
func (s *devServer) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	pending := 0
	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addWatchDirs(watcher, event.Name)
				}
			}
			if !isSourceFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			pending++
			debounce.Reset(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn().Err(err).Msg("Watcher error")

		case <-debounce.C:
			if pending == 0 {
				continue
			}
			s.log.Info().Int("changes", pending).Msg("🔄 Sources changed, rebuilding...")
			pending = 0
			if s.rebuild != nil {
				if err := s.rebuild(ctx); err != nil {
					s.log.Error().Err(err).Msg("❌ Rebuild failed")
					continue
				}
			}
			s.log.Info().Int("pages", s.live.Reload()).Msg("🔁 Reloading pages")
		}
	}
}

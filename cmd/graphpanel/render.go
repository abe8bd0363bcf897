package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/recera/graphpanel/cmd/graphpanel/internal/ui"
	"github.com/recera/graphpanel/internal/cache"
	"github.com/recera/graphpanel/pkg/panel"
	"github.com/recera/graphpanel/pkg/renderservice"
	"github.com/recera/graphpanel/pkg/scheduler"
)

type renderOptions struct {
	async    bool
	rootNode string
	out      string
	pdf      bool
	useCache bool
}

func newRenderCommand(a *app) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render GRAPH",
		Short: "Render one graph and write the result",
		Long: `Renders GRAPH (a graph reference or label) through the Render Service and
writes the SVG, or PDF with --pdf, to stdout or --out. With --async the render
runs as a background job polled with exponential backoff.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runRender(ctx, a, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.async, "async", "a", false, "Render as a polled background job")
	cmd.Flags().StringVarP(&opts.rootNode, "root", "r", "", "Render the subgraph rooted at this node")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&opts.pdf, "pdf", false, "Render PDF instead of SVG")
	cmd.Flags().BoolVar(&opts.useCache, "cache", false, "Reuse and store results in the render cache")

	return cmd
}

func runRender(ctx context.Context, a *app, query string, opts renderOptions) error {
	client, err := a.client()
	if err != nil {
		return err
	}

	loop := scheduler.NewScheduler()
	loop.SetErrorHandler(func(err interface{}) bool {
		a.log.Error().Interface("panic", err).Msg("render loop task failed")
		return false
	})
	loop.Start()
	defer loop.Stop()

	s, err := newSession(sessionConfig{
		Service: client,
		Loop:    loop,
		Backoff: a.cfg.Backoff(),
		PanZoom: a.cfg.PanZoom(),
		Logger:  a.log,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	graphs, err := s.Graphs(ctx)
	if err != nil {
		return fmt.Errorf("list graphs: %w", err)
	}
	g, err := resolveGraph(graphs, query)
	if err != nil {
		return err
	}
	req := renderservice.Request{Graph: g.Ref, RootNode: opts.rootNode}
	format := renderservice.FormatSVG
	if opts.pdf {
		format = renderservice.FormatPDF
	}
	log := a.log.With().Str("graph", string(g.Ref)).Str("format", format.String()).Logger()

	var store cache.Store
	key := cache.RenderKey(client.BaseURL(), format, req)
	if opts.useCache {
		store, err = cache.Open(ctx, a.cfg.CacheOptions())
		if err != nil {
			return fmt.Errorf("open render cache: %w", err)
		}
		defer store.Close()

		data, ok, err := store.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("render cache read failed")
		} else if ok {
			log.Info().Msg("⚡ Using cached render")
			return writeOutput(opts.out, data)
		}
	}

	log.Info().Str("label", g.Label).Bool("async", opts.async).Msg("🎨 Rendering")
	var data []byte
	if opts.pdf {
		data, err = renderPDF(ctx, client, a.cfg.Backoff(), req, opts.async)
	} else {
		var st panel.Status
		st, err = s.Render(ctx, req, opts.async)
		if err == nil {
			data = []byte(st.Image.Markup + "\n")
		}
	}
	if err != nil {
		return err
	}

	if store != nil {
		if err := store.Put(ctx, key, data); err != nil {
			log.Warn().Err(err).Msg("render cache write failed")
		} else {
			log.Debug().Msg("💾 Cached render")
		}
	}
	if err := writeOutput(opts.out, data); err != nil {
		return err
	}
	if opts.out != "" {
		fmt.Fprintln(os.Stderr, ui.Success("✅ Wrote "+opts.out))
	}
	return nil
}

// renderPDF fetches a PDF directly from the service. PDFs are never
// displayed, so no controller is involved; async jobs follow the same
// backoff as the panel.
func renderPDF(ctx context.Context, client *renderservice.Client, b panel.Backoff, req renderservice.Request, async bool) ([]byte, error) {
	if !async {
		data, err := client.Render(ctx, renderservice.FormatPDF, req)
		if err != nil {
			return nil, err
		}
		if data == nil {
			return nil, panel.ErrEmptyResult
		}
		return data, nil
	}
	handle, err := client.Submit(ctx, renderservice.FormatPDF, req)
	if err != nil {
		return nil, err
	}
	return panel.Await(ctx, b, func(ctx context.Context) ([]byte, error) {
		return client.Result(ctx, renderservice.FormatPDF, handle)
	})
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

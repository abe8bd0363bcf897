//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"syscall/js"

	"github.com/rs/zerolog"

	"github.com/recera/graphpanel/pkg/components/panzoom"
	"github.com/recera/graphpanel/pkg/debug"
	"github.com/recera/graphpanel/pkg/panel"
	"github.com/recera/graphpanel/pkg/renderer/dom"
	"github.com/recera/graphpanel/pkg/renderservice"
	"github.com/recera/graphpanel/pkg/scheduler"
)

// defaultServiceBase is used when the page does not name the Render Service
const defaultServiceBase = "/gephi-server/rest/"

var errNotElement = errors.New("viewport target is not a DOM element")

var (
	document js.Value
	window   js.Value
	log      zerolog.Logger
)

func main() {
	document = js.Global().Get("document")
	window = js.Global().Get("window")
	log = zerolog.New(zerolog.ConsoleWriter{Out: debug.Console{}, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}).
		With().Str("app", "graphpanel").Logger()

	if strings.Contains(window.Get("location").Get("search").String(), "debug") {
		debug.EnableLogging()
	}

	loop := scheduler.NewScheduler()
	loop.SetErrorHandler(func(err interface{}) bool {
		log.Error().Interface("panic", err).Msg("task panicked")
		return true
	})
	loop.Start()

	log.Info().Msg("🚀 client starting")

	if document.Get("readyState").String() != "loading" {
		loop.Post(func() { onReady(loop) })
	} else {
		var ready js.Func
		ready = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			loop.Post(func() { onReady(loop) })
			ready.Release()
			return nil
		})
		document.Call("addEventListener", "DOMContentLoaded", ready)
	}

	// Keep the WASM runtime alive
	select {}
}

func onReady(loop *scheduler.Scheduler) {
	region, err := dom.NewRegion()
	if err != nil {
		log.Error().Err(err).Msg("page is missing elements")
		return
	}

	base, err := resolveBase(region.ServiceBase())
	if err != nil {
		log.Error().Err(err).Msg("bad service base URL")
		region.ShowMessage(panel.MsgFailed)
		return
	}
	client, err := renderservice.New(base, renderservice.WithLogger(log))
	if err != nil {
		log.Error().Err(err).Msg("render service client")
		region.ShowMessage(panel.MsgFailed)
		return
	}

	ctrl, err := panel.New(panel.Config{
		Service:   client,
		Display:   region,
		Loop:      loop,
		Viewports: attachViewport,
		Logger:    &log,
	})
	if err != nil {
		log.Error().Err(err).Msg("controller")
		return
	}

	region.OnSubmit(func(req renderservice.Request, async bool) {
		loop.Post(func() { ctrl.Submit(req, async) })
	})
	region.OnResize(func() {
		loop.Post(ctrl.Resize)
	})
	ctrl.Init(context.Background())
	log.Info().Str("service", base).Msg("ready")
}

// attachViewport binds pan/zoom to the installed <svg> element
func attachViewport(target panel.Target) (panzoom.API, error) {
	svg, ok := target.(js.Value)
	if !ok {
		return nil, errNotElement
	}
	c, err := panzoom.Attach(svg, &panzoom.Options{ControlIconsEnabled: true})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// resolveBase resolves a possibly relative base URL against the page URL
func resolveBase(base string) (string, error) {
	if base == "" {
		base = defaultServiceBase
	}
	page, err := url.Parse(window.Get("location").Get("href").String())
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return page.ResolveReference(ref).String(), nil
}

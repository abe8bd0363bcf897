package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/recera/graphpanel/pkg/page"
)

func newBuildCommand(a *app) *cobra.Command {
	var output, serviceBase, title string
	var rootInput bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the browser client for deployment",
		Long: `Compiles the browser client to WebAssembly and writes it to the output
directory together with index.html and wasm_exec.js.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = a.cfg.Build.Output
			}
			if serviceBase == "" {
				serviceBase = a.cfg.Service.BaseURL
			}
			return runBuild(cmd, a, output, page.Options{
				Title:         title,
				ServiceBase:   serviceBase,
				RootNodeInput: rootInput,
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default build.output)")
	cmd.Flags().StringVar(&serviceBase, "service-base", "", "Render Service base URL as seen by the browser; may be relative")
	cmd.Flags().StringVar(&title, "title", "", "Page title")
	cmd.Flags().BoolVar(&rootInput, "root-input", false, "Add the root node field to the form")
	return cmd
}

func runBuild(cmd *cobra.Command, a *app, output string, opts page.Options) error {
	ctx := cmd.Context()
	a.log.Info().Str("output", output).Msg("🚀 Building graphpanel client...")

	if err := os.RemoveAll(output); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	builder := newWasmBuilder(".", a.cfg.Build.CacheDir, a.log)
	if _, err := builder.Build(ctx, filepath.Join(output, filepath.Base(page.WasmPath))); err != nil {
		return err
	}

	a.log.Info().Msg("📄 Copying wasm_exec.js...")
	js, err := wasmExecJS(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(output, filepath.Base(page.WasmExecPath)), js, 0o644); err != nil {
		return fmt.Errorf("failed to write wasm_exec.js: %w", err)
	}

	f, err := os.Create(filepath.Join(output, "index.html"))
	if err != nil {
		return fmt.Errorf("failed to create index.html: %w", err)
	}
	defer f.Close()
	if err := page.Write(f, opts); err != nil {
		return fmt.Errorf("failed to write index.html: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	a.log.Info().Msg("✅ Build complete")
	return nil
}

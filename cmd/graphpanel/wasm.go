package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/recera/graphpanel/internal/cache"
)

// clientPackage is the browser client's main package
const clientPackage = "./app/client"

// wasmBuilder compiles the browser client, reusing earlier builds of the
// same sources
type wasmBuilder struct {
	mu    sync.Mutex
	dir   string
	pkg   string
	cache *cache.Disk
	log   zerolog.Logger
}

func newWasmBuilder(dir, cacheDir string, log zerolog.Logger) *wasmBuilder {
	b := &wasmBuilder{dir: dir, pkg: clientPackage, log: log}
	c, err := cache.NewDisk(cache.DiskConfig{Dir: filepath.Join(cacheDir, "wasm"), MaxSize: 256 << 20})
	if err != nil {
		log.Warn().Err(err).Msg("⚠️  Build cache unavailable")
	} else {
		b.cache = c
	}
	return b
}

// Build writes the client to out. It reports whether a cached build was used.
func (b *wasmBuilder) Build(ctx context.Context, out string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return false, fmt.Errorf("failed to create output directory: %w", err)
	}

	var key string
	if b.cache != nil {
		sources, err := cache.KeyFromDir(b.dir, ".go", "go.mod", "go.sum")
		if err != nil {
			b.log.Warn().Err(err).Msg("⚠️  Cache key generation failed")
		} else {
			key = "wasm:" + cache.Key(sources, runtime.Version())
			if data, ok, err := b.cache.Get(ctx, key); err == nil && ok {
				if err := os.WriteFile(out, data, 0o644); err == nil {
					b.log.Info().Msg("⚡ Using cached WASM build")
					return true, nil
				}
			}
		}
	}

	b.log.Info().Msg("🔨 Building WASM client...")
	cmd := exec.CommandContext(ctx, "go", "build", "-o", out, b.pkg)
	cmd.Dir = b.dir
	cmd.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	if output, err := cmd.CombinedOutput(); err != nil {
		return false, fmt.Errorf("WASM build failed: %w\nOutput: %s", err, output)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return false, err
	}
	b.log.Info().Msgf("📦 WASM size: %.2f KB", float64(len(data))/1024)
	if b.cache != nil && key != "" {
		if err := b.cache.Put(ctx, key, data); err != nil {
			b.log.Warn().Err(err).Msg("⚠️  Failed to cache WASM build")
		} else {
			b.log.Debug().Msg("💾 Cached WASM build")
		}
	}
	return false, nil
}

// wasmExecJS returns the Go toolchain's wasm_exec.js
func wasmExecJS(ctx context.Context) ([]byte, error) {
	root, err := exec.CommandContext(ctx, "go", "env", "GOROOT").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve GOROOT: %w", err)
	}
	goroot := strings.TrimSpace(string(root))
	for _, rel := range []string{"lib/wasm/wasm_exec.js", "misc/wasm/wasm_exec.js"} {
		data, err := os.ReadFile(filepath.Join(goroot, rel))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("wasm_exec.js not found under %s", goroot)
}

// Package cache stores build artifacts and render results by key. The disk
// store backs `graphpanel build`; `graphpanel render --cache` uses Redis
// when a URL is configured and the disk store otherwise.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/recera/graphpanel/pkg/renderservice"
)

// Store is a byte cache keyed by string
type Store interface {
	// Get returns the cached value; ok is false on a miss
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and tunes a store
type Options struct {
	// RedisURL selects the Redis store when set
	RedisURL string
	// Dir is the disk store directory
	Dir string
	// TTL bounds the age of entries; zero keeps them forever
	TTL time.Duration
	// MaxSize bounds the disk store in bytes; zero means unbounded
	MaxSize int64
}

// Open returns the store opts describes
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.RedisURL != "" {
		return NewRedis(ctx, opts.RedisURL, opts.TTL)
	}
	return NewDisk(DiskConfig{Dir: opts.Dir, MaxAge: opts.TTL, MaxSize: opts.MaxSize})
}

// Key generates a cache key from inputs
func Key(inputs ...string) string {
	h := sha256.New()
	for _, input := range inputs {
		h.Write([]byte(input))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// RenderKey names the result of rendering req with service base
func RenderKey(base string, f renderservice.Format, req renderservice.Request) string {
	return "render:" + Key(base, f.String(), string(req.Graph), req.RootNode)
}

// KeyFromDir hashes the names and contents of every file under root whose
// name ends in one of exts, in path order
func KeyFromDir(root string, exts ...string) (string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		for _, ext := range exts {
			if strings.HasSuffix(path, ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk %s: %w", root, err)
	}
	sort.Strings(files)

	h := sha256.New()
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		rel, _ := filepath.Rel(root, file)
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

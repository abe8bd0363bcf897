package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

const indexVersion = "1"

// Disk is a Store of files under one directory with a JSON index. When the
// size bound is reached the least recently used entries are evicted.
type Disk struct {
	mu      sync.Mutex
	dir     string
	index   *Index
	maxSize int64
	maxAge  time.Duration
	stats   Stats
	now     func() time.Time
}

// Index tracks all cached entries
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry represents a single cached artifact
type Entry struct {
	Key         string    `json:"key"`
	File        string    `json:"file"`
	Size        int64     `json:"size"`
	Created     time.Time `json:"created"`
	LastAccess  time.Time `json:"last_access"`
	AccessCount int       `json:"access_count"`
}

// Stats tracks cache performance metrics
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	TotalSize  int64 `json:"total_size"`
	EntryCount int   `json:"entry_count"`
}

// DiskConfig holds disk store configuration
type DiskConfig struct {
	Dir     string        // default: $HOME/.cache/graphpanel
	MaxSize int64         // bytes; 0 means unbounded
	MaxAge  time.Duration // 0 means entries never expire
}

// DefaultDir is the disk store directory used when none is configured
func DefaultDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "graphpanel")
	}
	return filepath.Join(os.TempDir(), "graphpanel-cache")
}

// NewDisk opens or creates a disk store. A missing or corrupt index starts
// the store empty; expired entries are dropped on open.
func NewDisk(config DiskConfig) (*Disk, error) {
	if config.Dir == "" {
		config.Dir = DefaultDir()
	}
	if err := os.MkdirAll(filepath.Join(config.Dir, "artifacts"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	d := &Disk{
		dir:     config.Dir,
		maxSize: config.MaxSize,
		maxAge:  config.MaxAge,
		now:     time.Now,
		index:   newIndex(),
	}
	if err := d.loadIndex(); err != nil {
		d.index = newIndex()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for key, entry := range d.index.Entries {
		if d.isExpired(entry) {
			d.removeLocked(key, entry)
		}
	}
	d.refreshStatsLocked()
	return d, nil
}

func newIndex() *Index {
	return &Index{Version: indexVersion, Entries: make(map[string]*Entry), Updated: time.Now()}
}

// Get retrieves a cached artifact
func (d *Disk) Get(_ context.Context, key string) ([]byte, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.index.Entries[key]
	if !ok {
		d.stats.Misses++
		return nil, false, nil
	}
	if d.isExpired(entry) {
		d.removeLocked(key, entry)
		d.stats.Misses++
		return nil, false, d.saveIndexLocked()
	}

	data, err := os.ReadFile(filepath.Join(d.dir, "artifacts", entry.File))
	if err != nil {
		// file is gone; forget the entry
		d.removeLocked(key, entry)
		d.stats.Misses++
		return nil, false, d.saveIndexLocked()
	}

	entry.LastAccess = d.now()
	entry.AccessCount++
	d.stats.Hits++
	return data, true, d.saveIndexLocked()
}

// Put stores an artifact, evicting least recently used entries if needed
func (d *Disk) Put(_ context.Context, key string, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	size := int64(len(data))
	if old, ok := d.index.Entries[key]; ok {
		d.removeLocked(key, old)
	}
	d.evictLocked(size)

	file := sanitizeKey(key)
	if err := os.WriteFile(filepath.Join(d.dir, "artifacts", file), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	now := d.now()
	d.index.Entries[key] = &Entry{
		Key:        key,
		File:       file,
		Size:       size,
		Created:    now,
		LastAccess: now,
	}
	d.refreshStatsLocked()
	return d.saveIndexLocked()
}

// Delete removes an entry
func (d *Disk) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.index.Entries[key]
	if !ok {
		return nil
	}
	d.removeLocked(key, entry)
	return d.saveIndexLocked()
}

// Clear removes all cached entries
func (d *Disk) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	artifacts := filepath.Join(d.dir, "artifacts")
	if err := os.RemoveAll(artifacts); err != nil {
		return fmt.Errorf("failed to clear artifacts: %w", err)
	}
	if err := os.MkdirAll(artifacts, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	d.index = newIndex()
	d.stats = Stats{}
	return d.saveIndexLocked()
}

// Stats returns cache statistics
func (d *Disk) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// Close implements Store
func (d *Disk) Close() error { return nil }

func (d *Disk) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(d.dir, "index.json"))
	if err != nil {
		return err
	}
	var index Index
	if err := sonic.Unmarshal(data, &index); err != nil {
		return err
	}
	if index.Version != indexVersion || index.Entries == nil {
		return fmt.Errorf("cache index version %q not supported", index.Version)
	}
	d.index = &index
	return nil
}

func (d *Disk) saveIndexLocked() error {
	d.index.Updated = d.now()
	data, err := sonic.ConfigStd.MarshalIndent(d.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d.dir, "index.json"), data, 0o644)
}

func (d *Disk) isExpired(entry *Entry) bool {
	if d.maxAge <= 0 {
		return false
	}
	return d.now().Sub(entry.Created) > d.maxAge
}

// evictLocked drops least recently used entries until needed more bytes fit
func (d *Disk) evictLocked(needed int64) {
	if d.maxSize <= 0 {
		return
	}
	for d.stats.TotalSize+needed > d.maxSize && len(d.index.Entries) > 0 {
		var oldestKey string
		var oldest *Entry
		for key, entry := range d.index.Entries {
			if oldest == nil || entry.LastAccess.Before(oldest.LastAccess) {
				oldestKey, oldest = key, entry
			}
		}
		d.removeLocked(oldestKey, oldest)
		d.stats.Evictions++
	}
}

func (d *Disk) removeLocked(key string, entry *Entry) {
	os.Remove(filepath.Join(d.dir, "artifacts", entry.File))
	delete(d.index.Entries, key)
	d.refreshStatsLocked()
}

func (d *Disk) refreshStatsLocked() {
	var total int64
	for _, entry := range d.index.Entries {
		total += entry.Size
	}
	d.stats.TotalSize = total
	d.stats.EntryCount = len(d.index.Entries)
}

// sanitizeKey makes a key safe to use as a file name
func sanitizeKey(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, key)
	if len(safe) > 64 {
		safe = safe[:64]
	}
	return safe + "_" + Key(key)[:12]
}

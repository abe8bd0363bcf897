package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(LoadOptions{Dir: t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/gephi-server/rest/", c.Service.BaseURL)
	assert.Equal(t, 30*time.Second, c.Service.Timeout)
	assert.Equal(t, time.Second, c.Poll.Initial)
	assert.Equal(t, 64*time.Second, c.Poll.Ceiling)
	assert.Equal(t, 5173, c.Dev.Port)
	assert.Equal(t, "/rest/", c.Dev.ProxyPrefix)
	assert.True(t, c.Viewport.ControlIcons)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 10*time.Minute, c.Cache.TTL)
}

func TestLoad_FileEnvAndOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`
service:
  base_url: http://render.internal/rest/
poll:
  initial: 500ms
dev:
  port: 9000
log:
  level: debug
`), 0o644))

	t.Setenv("GRAPHPANEL_DEV_PORT", "9100")
	t.Setenv("GRAPHPANEL_LOG_FORMAT", "json")

	c, err := Load(LoadOptions{
		Dir:       dir,
		Overrides: map[string]any{"log.level": "warn"},
	})
	require.NoError(t, err)

	assert.Equal(t, "http://render.internal/rest/", c.Service.BaseURL)
	assert.Equal(t, 500*time.Millisecond, c.Poll.Initial)
	assert.Equal(t, 9100, c.Dev.Port, "env beats file")
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "warn", c.Log.Level, "flags beat everything")
	assert.Equal(t, 64*time.Second, c.Poll.Ceiling, "unset keys keep defaults")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("GRAPHPANEL_CACHE_REDIS_URL=redis://localhost:6379/2\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("GRAPHPANEL_CACHE_REDIS_URL") })

	c, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, "redis://localhost:6379/2", c.Cache.RedisURL)
	assert.Equal(t, "redis://localhost:6379/2", c.CacheOptions().RedisURL)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(LoadOptions{Dir: t.TempDir(), File: filepath.Join(t.TempDir(), "nope.yaml")})
	assert.Error(t, err)
}

func TestLoad_InvalidRejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`
poll:
  initial: 2m
  ceiling: 1m
`), 0o644))

	_, err := Load(LoadOptions{Dir: dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll.initial")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative base url", func(c *Config) { c.Service.BaseURL = "/rest/" }},
		{"zero timeout", func(c *Config) { c.Service.Timeout = 0 }},
		{"zero initial", func(c *Config) { c.Poll.Initial = 0 }},
		{"initial equals ceiling", func(c *Config) { c.Poll.Initial = c.Poll.Ceiling }},
		{"inverted zoom", func(c *Config) { c.Viewport.MaxZoom = 0.1 }},
		{"bad port", func(c *Config) { c.Dev.Port = 70000 }},
		{"bad proxy prefix", func(c *Config) { c.Dev.ProxyPrefix = "rest" }},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }},
	}
	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	c := Default()
	c.Service.BaseURL = "http://example.test/rest/"
	c.Poll.Initial = 250 * time.Millisecond
	require.NoError(t, Save(c, path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "base_url: http://example.test/rest/")
	assert.Contains(t, string(data), "initial: 250ms")

	loaded, err := Load(LoadOptions{Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, c.Service, loaded.Service)
	assert.Equal(t, c.Poll, loaded.Poll)

	assert.Error(t, Save(c, path, false), "refuses to overwrite")
	assert.NoError(t, Save(c, path, true))
}

func TestDerivedOptions(t *testing.T) {
	c := Default()
	assert.Equal(t, "localhost:5173", c.DevAddr())
	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 4 * time.Second,
		8 * time.Second, 16 * time.Second, 32 * time.Second,
	}, c.Backoff().Delays())

	pz := c.PanZoom()
	assert.Equal(t, 0.5, pz.MinZoom)
	assert.True(t, pz.ControlIconsEnabled)
}

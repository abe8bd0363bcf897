package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/recera/graphpanel/internal/cache"
	"github.com/recera/graphpanel/internal/logger"
	"github.com/recera/graphpanel/pkg/components/panzoom"
	"github.com/recera/graphpanel/pkg/panel"
)

// FileName is the project config file looked up in the working directory
const FileName = "graphpanel.yaml"

// EnvPrefix prefixes environment overrides, e.g. GRAPHPANEL_SERVICE_BASE_URL
const EnvPrefix = "GRAPHPANEL"

// Config represents graphpanel.yaml
type Config struct {
	Service  ServiceConfig  `mapstructure:"service" yaml:"service"`
	Poll     PollConfig     `mapstructure:"poll" yaml:"poll"`
	Viewport ViewportConfig `mapstructure:"viewport" yaml:"viewport"`
	Dev      DevConfig      `mapstructure:"dev" yaml:"dev"`
	Build    BuildConfig    `mapstructure:"build" yaml:"build"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Log      logger.Config  `mapstructure:"log" yaml:"log"`
}

// ServiceConfig locates the Render Service
type ServiceConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// PollConfig is the backoff policy for asynchronous renders
type PollConfig struct {
	Initial time.Duration `mapstructure:"initial" yaml:"initial"`
	Ceiling time.Duration `mapstructure:"ceiling" yaml:"ceiling"`
}

// ViewportConfig tunes pan/zoom
type ViewportConfig struct {
	MinZoom      float64 `mapstructure:"min_zoom" yaml:"min_zoom"`
	MaxZoom      float64 `mapstructure:"max_zoom" yaml:"max_zoom"`
	ZoomStep     float64 `mapstructure:"zoom_step" yaml:"zoom_step"`
	ControlIcons bool    `mapstructure:"control_icons" yaml:"control_icons"`
}

// DevConfig contains development server configuration
type DevConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
	// ProxyPrefix is the path under which the dev server forwards to the
	// Render Service; the page uses it as its service base
	ProxyPrefix string `mapstructure:"proxy_prefix" yaml:"proxy_prefix"`
	Watch       bool   `mapstructure:"watch" yaml:"watch"`
}

// BuildConfig contains build output settings
type BuildConfig struct {
	Output   string `mapstructure:"output" yaml:"output"`
	CacheDir string `mapstructure:"cache_dir" yaml:"cache_dir"`
}

// CacheConfig selects the render result cache
type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url" yaml:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Backoff returns the polling policy
func (c *Config) Backoff() panel.Backoff {
	return panel.Backoff{Initial: c.Poll.Initial, Ceiling: c.Poll.Ceiling}
}

// PanZoom returns the viewport options
func (c *Config) PanZoom() panzoom.Options {
	return panzoom.Options{
		MinZoom:              c.Viewport.MinZoom,
		MaxZoom:              c.Viewport.MaxZoom,
		ZoomScaleSensitivity: c.Viewport.ZoomStep,
		ControlIconsEnabled:  c.Viewport.ControlIcons,
	}
}

// CacheOptions returns the render cache selection
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		RedisURL: c.Cache.RedisURL,
		Dir:      filepath.Join(c.Build.CacheDir, "renders"),
		TTL:      c.Cache.TTL,
	}
}

// DevAddr is the dev server listen address
func (c *Config) DevAddr() string {
	return fmt.Sprintf("%s:%d", c.Dev.Host, c.Dev.Port)
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL: "http://localhost:8080/gephi-server/rest/",
			Timeout: 30 * time.Second,
		},
		Poll: PollConfig{
			Initial: panel.DefaultBackoff.Initial,
			Ceiling: panel.DefaultBackoff.Ceiling,
		},
		Viewport: ViewportConfig{
			MinZoom:      0.5,
			MaxZoom:      10,
			ZoomStep:     0.2,
			ControlIcons: true,
		},
		Dev: DevConfig{
			Host:        "localhost",
			Port:        5173,
			ProxyPrefix: "/rest/",
			Watch:       true,
		},
		Build: BuildConfig{
			Output:   "dist",
			CacheDir: cache.DefaultDir(),
		},
		Cache: CacheConfig{
			TTL: 10 * time.Minute,
		},
		Log: logger.Config{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// LoadOptions says where to look for configuration
type LoadOptions struct {
	// File is an explicit config file; when empty graphpanel.yaml in Dir is
	// used if present
	File string
	// Dir is the project directory (default ".")
	Dir string
	// Overrides are keys set from command line flags
	Overrides map[string]any
}

// Load merges defaults, the config file, .env, the environment and
// overrides, in increasing precedence
func Load(opts LoadOptions) (*Config, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}

	// .env never overrides variables already in the environment
	if err := godotenv.Load(filepath.Join(opts.Dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("yaml")
	switch {
	case opts.File != "":
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	default:
		path := filepath.Join(opts.Dir, FileName)
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("service.base_url", d.Service.BaseURL)
	v.SetDefault("service.timeout", d.Service.Timeout)
	v.SetDefault("poll.initial", d.Poll.Initial)
	v.SetDefault("poll.ceiling", d.Poll.Ceiling)
	v.SetDefault("viewport.min_zoom", d.Viewport.MinZoom)
	v.SetDefault("viewport.max_zoom", d.Viewport.MaxZoom)
	v.SetDefault("viewport.zoom_step", d.Viewport.ZoomStep)
	v.SetDefault("viewport.control_icons", d.Viewport.ControlIcons)
	v.SetDefault("dev.host", d.Dev.Host)
	v.SetDefault("dev.port", d.Dev.Port)
	v.SetDefault("dev.proxy_prefix", d.Dev.ProxyPrefix)
	v.SetDefault("dev.watch", d.Dev.Watch)
	v.SetDefault("build.output", d.Build.Output)
	v.SetDefault("build.cache_dir", d.Build.CacheDir)
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("service.base_url %q is not an absolute URL", c.Service.BaseURL)
	}
	if c.Service.Timeout <= 0 {
		return fmt.Errorf("service.timeout must be positive, got %s", c.Service.Timeout)
	}
	if c.Poll.Initial <= 0 || c.Poll.Ceiling <= 0 {
		return fmt.Errorf("poll.initial and poll.ceiling must be positive")
	}
	if c.Poll.Initial >= c.Poll.Ceiling {
		return fmt.Errorf("poll.initial (%s) must be below poll.ceiling (%s)", c.Poll.Initial, c.Poll.Ceiling)
	}
	if c.Viewport.MinZoom <= 0 || c.Viewport.MaxZoom < c.Viewport.MinZoom {
		return fmt.Errorf("viewport zoom range [%g, %g] is invalid", c.Viewport.MinZoom, c.Viewport.MaxZoom)
	}
	if c.Dev.Port <= 0 || c.Dev.Port > 65535 {
		return fmt.Errorf("dev.port %d out of range", c.Dev.Port)
	}
	if len(c.Dev.ProxyPrefix) < 2 || !strings.HasPrefix(c.Dev.ProxyPrefix, "/") || !strings.HasSuffix(c.Dev.ProxyPrefix, "/") {
		return fmt.Errorf("dev.proxy_prefix %q must start and end with /", c.Dev.ProxyPrefix)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

// Marshal encodes c as YAML
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Save writes c to path, refusing to overwrite unless force is set
func Save(c *Config, path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

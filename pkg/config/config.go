// Package config loads runtime settings for the customizer server and CLI.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-uistate/components/toast"
	"github.com/goliatone/go-uistate/pkg/persist"
	"github.com/goliatone/go-uistate/pkg/remote"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GO_UISTATE_"

const (
	defaultAddr     = ":9876"
	defaultBasePath = "/admin"
	defaultBackend  = "memory"
	defaultCodec    = "json"
	defaultDir      = "~/.local/share/go-uistate"
	defaultPrefix   = "uistate:"
)

// ErrUnknownBackend reports a storage backend name Open does not recognize.
var ErrUnknownBackend = errors.New("config: unknown storage backend")

// Duration decodes TOML strings such as "5s" or "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("config: duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full runtime configuration.
type Config struct {
	Server  Server  `toml:"server" yaml:"server"`
	Storage Storage `toml:"storage" yaml:"storage"`
	Remote  Remote  `toml:"remote" yaml:"remote"`
	Catalog Catalog `toml:"catalog" yaml:"catalog"`
	Toast   Toast   `toml:"toast" yaml:"toast"`
	Table   Table   `toml:"table" yaml:"table"`
	Log     Log     `toml:"log" yaml:"log"`
}

type Server struct {
	Addr     string `toml:"addr" yaml:"addr"`
	BasePath string `toml:"base_path" yaml:"base_path"`
}

// Storage selects the persistence backend: memory, file, redis or sqlite.
type Storage struct {
	Backend       string   `toml:"backend" yaml:"backend"`
	Codec         string   `toml:"codec" yaml:"codec"`
	Dir           string   `toml:"dir" yaml:"dir"`
	DSN           string   `toml:"dsn" yaml:"dsn"`
	RedisAddr     string   `toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string   `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int      `toml:"redis_db" yaml:"redis_db"`
	Prefix        string   `toml:"prefix" yaml:"prefix"`
	TTL           Duration `toml:"ttl" yaml:"ttl"`
}

// Remote enables snapshot mirroring when BaseURL is set.
type Remote struct {
	BaseURL string   `toml:"base_url" yaml:"base_url"`
	Path    string   `toml:"path" yaml:"path"`
	APIKey  string   `toml:"api_key" yaml:"api_key"`
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

type Catalog struct {
	Manifest      string `toml:"manifest" yaml:"manifest"`
	DefaultLayout string `toml:"default_layout" yaml:"default_layout"`
	DefaultTheme  string `toml:"default_theme" yaml:"default_theme"`
}

type Toast struct {
	DefaultDuration Duration `toml:"default_duration" yaml:"default_duration"`
	MaxVisible      int      `toml:"max_visible" yaml:"max_visible"`
	DedupeWindow    Duration `toml:"dedupe_window" yaml:"dedupe_window"`
	// RatePerSecond enables the enqueue limiter when positive.
	RatePerSecond float64 `toml:"rate_per_second" yaml:"rate_per_second"`
	Burst         int     `toml:"burst" yaml:"burst"`
}

type Table struct {
	PageSize int    `toml:"page_size" yaml:"page_size"`
	Locale   string `toml:"locale" yaml:"locale"`
}

type Log struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server:  Server{Addr: defaultAddr, BasePath: defaultBasePath},
		Storage: Storage{Backend: defaultBackend, Codec: defaultCodec, Dir: defaultDir, Prefix: defaultPrefix},
		Table:   Table{PageSize: 10, Locale: "en-US"},
		Log:     Log{Level: "info"},
	}
}

// Load reads path, falling back to defaults when the file is missing, then
// applies GO_UISTATE_* environment overrides.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("config: open %s: %w", path, err)
		default:
			defer file.Close()
			if err := Decode(file, &cfg); err != nil {
				return Config{}, err
			}
		}
	}
	if getenv != nil {
		if err := applyEnv(&cfg, getenv); err != nil {
			return Config{}, err
		}
	}
	cfg.normalize()
	return cfg, nil
}

// Decode parses TOML from r over the values already in cfg. Unknown keys are
// rejected.
func Decode(r io.Reader, cfg *Config) error {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("config: parse: %w", err)
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	enc := toml.NewEncoder(w)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(name string, field *string) {
		if v := strings.TrimSpace(getenv(EnvPrefix + name)); v != "" {
			*field = v
		}
	}
	str("ADDR", &cfg.Server.Addr)
	str("BASE_PATH", &cfg.Server.BasePath)
	str("STORAGE_BACKEND", &cfg.Storage.Backend)
	str("STORAGE_CODEC", &cfg.Storage.Codec)
	str("STORAGE_DIR", &cfg.Storage.Dir)
	str("SQLITE_DSN", &cfg.Storage.DSN)
	str("REDIS_ADDR", &cfg.Storage.RedisAddr)
	str("REDIS_PASSWORD", &cfg.Storage.RedisPassword)
	str("REMOTE_URL", &cfg.Remote.BaseURL)
	str("REMOTE_API_KEY", &cfg.Remote.APIKey)
	str("MANIFEST", &cfg.Catalog.Manifest)
	str("LOCALE", &cfg.Table.Locale)
	str("LOG_LEVEL", &cfg.Log.Level)
	if v := strings.TrimSpace(getenv(EnvPrefix + "PAGE_SIZE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: %sPAGE_SIZE: %w", EnvPrefix, err)
		}
		cfg.Table.PageSize = n
	}
	return nil
}

func (c *Config) normalize() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultBackend
	}
	c.Storage.Codec = strings.ToLower(strings.TrimSpace(c.Storage.Codec))
	if c.Storage.Codec == "" {
		c.Storage.Codec = defaultCodec
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Table.PageSize <= 0 {
		c.Table.PageSize = 10
	}
}

// Codec returns the configured snapshot codec.
func (c Config) Codec() persist.Codec {
	if c.Storage.Codec == "cbor" {
		return persist.CBORCodec{}
	}
	return persist.JSONCodec{}
}

// OpenStore builds the configured backend. The returned close func releases
// backend resources and is never nil.
func (c Config) OpenStore() (persist.Store, func() error, error) {
	noop := func() error { return nil }
	switch c.Storage.Backend {
	case "memory":
		return persist.NewMemoryStore(), noop, nil
	case "file":
		dir, err := expandPath(c.Storage.Dir)
		if err != nil {
			return nil, noop, err
		}
		store, err := persist.NewFileStore(dir)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case "redis":
		store := persist.NewRedisStore(persist.RedisOptions{
			Addr:     c.Storage.RedisAddr,
			Password: c.Storage.RedisPassword,
			DB:       c.Storage.RedisDB,
			Prefix:   c.Storage.Prefix,
			TTL:      c.Storage.TTL.Std(),
		})
		return store, noop, nil
	case "sqlite":
		dsn := c.Storage.DSN
		if dsn == "" {
			dir, err := expandPath(c.Storage.Dir)
			if err != nil {
				return nil, noop, err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, noop, fmt.Errorf("config: create %s: %w", dir, err)
			}
			dsn = filepath.Join(dir, "uistate.db")
		}
		store, err := persist.OpenSQLite(dsn)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %s", ErrUnknownBackend, c.Storage.Backend)
	}
}

// RemoteClient returns nil when mirroring is not configured.
func (c Config) RemoteClient() (*remote.Client, error) {
	if strings.TrimSpace(c.Remote.BaseURL) == "" {
		return nil, nil
	}
	cfg := remote.Config{BaseURL: c.Remote.BaseURL, Path: c.Remote.Path, APIKey: c.Remote.APIKey}
	if c.Remote.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: c.Remote.Timeout.Std()}
	}
	return remote.NewClient(cfg)
}

// ToastOptions maps the toast section onto queue options.
func (c Config) ToastOptions() toast.Options {
	opts := toast.Options{
		DefaultDuration: c.Toast.DefaultDuration.Std(),
		MaxVisible:      c.Toast.MaxVisible,
		DedupeWindow:    c.Toast.DedupeWindow.Std(),
	}
	if c.Toast.RatePerSecond > 0 {
		burst := c.Toast.Burst
		if burst <= 0 {
			burst = 1
		}
		opts.Limiter = rate.NewLimiter(rate.Limit(c.Toast.RatePerSecond), burst)
	}
	return opts
}

// LogLevel parses Log.Level, defaulting to info.
func (c Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("config: path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

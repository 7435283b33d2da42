// Package config loads process configuration from a YAML (or JSON) file overlaid with
// GSS_* environment variables.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/gss/internal/logging"
	"github.com/aretw0/gss/pkg/persistence/middleware"
	"github.com/aretw0/gss/pkg/report"
	"github.com/aretw0/gss/pkg/search"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. GSS_SERVER_ADDR.
const EnvPrefix = "GSS_"

// History backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Solver  SolverConfig  `mapstructure:"solver"`
	History HistoryConfig `mapstructure:"history"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	Metrics         bool          `mapstructure:"metrics"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SolverConfig zero values select the library defaults.
type SolverConfig struct {
	MaxIterations     int `mapstructure:"max_iterations"`
	Samples           int `mapstructure:"samples"`
	MaxExpressionSize int `mapstructure:"max_expression_size"`
}

type HistoryConfig struct {
	Backend    string        `mapstructure:"backend"`
	MaxEntries int           `mapstructure:"max_entries"`
	Dir        string        `mapstructure:"dir"`
	SQLitePath string        `mapstructure:"sqlite_path"`
	LockTTL    time.Duration `mapstructure:"lock_ttl"`
	Redis      RedisConfig   `mapstructure:"redis"`

	// EncryptionKey is a base64 AES-256 key. When set, expressions and payloads are
	// stored encrypted. FallbackKeys still decrypt entries written before a rotation.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`
	// OmitFields are regular expressions; matching payload keys are not persisted.
	OmitFields []string `mapstructure:"omit_fields"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
	// Lock serialises appends across processes sharing the same Redis.
	Lock bool `mapstructure:"lock"`
}

// Default returns the configuration used when no file or variable says otherwise.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: string(logging.FormatText)},
		Server: ServerConfig{
			Addr:            ":8000",
			MaxBodyBytes:    1 << 20,
			Metrics:         true,
			ShutdownTimeout: 5 * time.Second,
		},
		Solver: SolverConfig{
			MaxIterations: search.DefaultMaxIterations,
			Samples:       report.DefaultSamples,
		},
		History: HistoryConfig{
			Backend:    BackendMemory,
			MaxEntries: 100,
			Dir:        filepath.Join(".gss", "history"),
			SQLitePath: filepath.Join(".gss", "history.db"),
			LockTTL:    30 * time.Second,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "gss:history:",
				TTL:    24 * time.Hour,
			},
		},
	}
}

// Load reads path (YAML, or JSON by extension) over the defaults and then applies
// environment overrides. An empty path, or a missing file, means defaults plus env.
func Load(path string) (Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := unmarshal(path, data, &raw); err != nil {
				return Config{}, err
			}
		case os.IsNotExist(err):
		default:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	overlayEnv(raw, os.LookupEnv)

	cfg := Default()
	if err := decode(raw, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func unmarshal(path string, data []byte, out *map[string]any) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if *out == nil {
		*out = map[string]any{}
	}
	return nil
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// overlayEnv sets raw[section][key] from GSS_SECTION_KEY for every known key.
func overlayEnv(raw map[string]any, lookup func(string) (string, bool)) {
	for _, path := range Keys() {
		name := EnvPrefix + strings.ToUpper(strings.Join(path, "_"))
		value, ok := lookup(name)
		if !ok {
			continue
		}
		node := raw
		for _, part := range path[:len(path)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[part] = child
			}
			node = child
		}
		node[path[len(path)-1]] = value
	}
}

// Keys lists the leaf settings as paths of mapstructure names, e.g. [history redis addr].
func Keys() [][]string {
	return keys(reflect.TypeOf(Config{}), nil)
}

func keys(t reflect.Type, prefix []string) [][]string {
	var out [][]string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name := f.Tag.Get("mapstructure")
		path := append(append([]string{}, prefix...), name)
		if f.Type.Kind() == reflect.Struct && f.Type != reflect.TypeOf(time.Duration(0)) {
			out = append(out, keys(f.Type, path)...)
			continue
		}
		out = append(out, path)
	}
	return out
}

// Validate rejects settings that would only fail later, at first use.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("log.format: %w", err)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if c.Solver.MaxIterations < 0 || c.Solver.MaxIterations > search.HardIterationCap {
		return fmt.Errorf("solver.max_iterations must be between 0 and %d", search.HardIterationCap)
	}
	if c.Solver.Samples != 0 && (c.Solver.Samples < report.MinSamples || c.Solver.Samples > report.MaxSamples) {
		return fmt.Errorf("solver.samples must be between %d and %d", report.MinSamples, report.MaxSamples)
	}
	if c.Solver.MaxExpressionSize < 0 {
		return fmt.Errorf("solver.max_expression_size must not be negative")
	}
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must not be negative")
	}

	if _, err := c.History.Middleware(); err != nil {
		return fmt.Errorf("history: %w", err)
	}

	switch c.History.Backend {
	case BackendMemory:
	case BackendFile:
		if c.History.Dir == "" {
			return fmt.Errorf("history.dir is required for the file backend")
		}
	case BackendSQLite:
		if c.History.SQLitePath == "" {
			return fmt.Errorf("history.sqlite_path is required for the sqlite backend")
		}
	case BackendRedis:
		if c.History.Redis.Addr == "" {
			return fmt.Errorf("history.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("history.backend: unknown backend %q (expected memory, file, redis or sqlite)", c.History.Backend)
	}
	return nil
}

// Middleware builds the store decorators the history settings ask for, outermost first.
func (h HistoryConfig) Middleware() ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(h.OmitFields) > 0 {
		omit, err := middleware.NewOmitMiddleware(h.OmitFields)
		if err != nil {
			return nil, fmt.Errorf("omit_fields: %w", err)
		}
		mws = append(mws, omit)
	}
	if h.EncryptionKey == "" {
		if len(h.FallbackKeys) > 0 {
			return nil, fmt.Errorf("fallback_keys require encryption_key")
		}
		return mws, nil
	}

	active, err := middleware.ParseKey(h.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption_key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, s := range h.FallbackKeys {
		k, err := middleware.ParseKey(s)
		if err != nil {
			return nil, fmt.Errorf("fallback_keys[%d]: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, k)
	}
	encrypt, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return append(mws, encrypt), nil
}

// Logger builds the process logger on stderr. debug forces the debug level.
func (c Config) Logger(debug bool) *slog.Logger {
	level, _ := logging.ParseLevel(c.Log.Level)
	if debug {
		level = slog.LevelDebug
	}
	format, _ := logging.ParseFormat(c.Log.Format)
	return logging.New(level, format)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides, e.g. DASHCTL_BASE_URL.
const EnvPrefix = "DASHCTL_"

// Defaults applied before any file, env or override layer.
const (
	DefaultTimeout       = 10 * time.Second
	DefaultLogLevel      = "info"
	DefaultListen        = ":9876"
	DefaultBasePath      = "/api"
	DefaultAliasCacheTTL = 5 * time.Minute
)

// Config holds dashctl settings.
type Config struct {
	BaseURL       string        `koanf:"base_url"`
	APIKey        string        `koanf:"api_key"`
	Timeout       time.Duration `koanf:"timeout"`
	ManifestsDir  string        `koanf:"manifests_dir"`
	KindManifests []string      `koanf:"kind_manifests"`
	Project       string        `koanf:"project"`
	LogLevel      string        `koanf:"log_level"`
	Listen        string        `koanf:"listen"`
	BasePath      string        `koanf:"base_path"`
	AliasCacheTTL time.Duration `koanf:"alias_cache_ttl"`
}

// Load layers defaults, the optional YAML file, DASHCTL_* env vars and
// explicit overrides, in increasing priority. Zero-valued overrides are
// ignored so unset CLI flags do not mask lower layers.
func Load(path string, overrides map[string]any) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(map[string]any{
		"timeout":         DefaultTimeout.String(),
		"log_level":       DefaultLogLevel,
		"listen":          DefaultListen,
		"base_path":       DefaultBasePath,
		"alias_cache_ttl": DefaultAliasCacheTTL.String(),
	}, "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("config: load env: %w", err)
	}

	set := map[string]any{}
	for key, value := range overrides {
		if !isZero(value) {
			set[key] = value
		}
	}
	if len(set) > 0 {
		if err := k.Load(confmap.Provider(set, "."), nil); err != nil {
			return Config{}, fmt.Errorf("config: load overrides: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Validate reports settings that cannot produce a manifest source.
func (c Config) Validate() error {
	if c.BaseURL == "" && c.ManifestsDir == "" {
		return errors.New("config: one of base_url or manifests_dir is required")
	}
	if c.Timeout < 0 || c.AliasCacheTTL < 0 {
		return errors.New("config: durations must not be negative")
	}
	return nil
}

func isZero(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case time.Duration:
		return t == 0
	case []string:
		return len(t) == 0
	case bool:
		return !t
	}
	return false
}

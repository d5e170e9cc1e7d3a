// Package config loads deptree settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/deptree/config.toml (falling back to
// ~/.config) unless a path is given. A missing default file yields the
// defaults; every loaded file is validated before use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/layout"
	"github.com/matzehuels/deptree/pkg/viewport"
)

const appName = "deptree"

// Config holds deptree configuration.
type Config struct {
	Layout   layout.Options  `toml:"layout"`
	Viewport viewport.Limits `toml:"viewport"`
	Explore  ExploreConfig   `toml:"explore"`
	Metadata MetadataConfig  `toml:"metadata"`
	Server   ServerConfig    `toml:"server"`
	Cache    CacheConfig     `toml:"cache"`
}

// ExploreConfig controls the terminal explorer.
type ExploreConfig struct {
	ExpandRoot bool    `toml:"expand_root"`
	CellWidth  float64 `toml:"cell_width" validate:"gt=0"`
	CellHeight float64 `toml:"cell_height" validate:"gt=0"`
}

// MetadataConfig selects the metadata lookup backend.
type MetadataConfig struct {
	Backend         string `toml:"backend" validate:"oneof=none file redis mongo"`
	File            string `toml:"file" validate:"required_if=Backend file"`
	RedisURL        string `toml:"redis_url" validate:"required_if=Backend redis,omitempty,url"`
	RedisPrefix     string `toml:"redis_prefix"`
	MongoURI        string `toml:"mongo_uri" validate:"required_if=Backend mongo,omitempty,url"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig controls `deptree serve`.
type ServerConfig struct {
	Addr        string        `toml:"addr" validate:"required,hostname_port"`
	MaxSessions int           `toml:"max_sessions" validate:"gt=0"`
	SessionTTL  time.Duration `toml:"session_ttl" validate:"gte=0"`
}

// CacheConfig controls the artifact cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout:   layout.DefaultOptions(),
		Viewport: viewport.DefaultLimits(),
		Explore:  ExploreConfig{ExpandRoot: true, CellWidth: 10, CellHeight: 20},
		Metadata: MetadataConfig{Backend: "none"},
		Server:   ServerConfig{Addr: "127.0.0.1:8080", MaxSessions: 64, SessionTTL: 30 * time.Minute},
		Cache:    CacheConfig{Enabled: true},
	}
}

// Dir returns the deptree config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads path over the defaults. An empty path means DefaultPath, which
// may be absent; an explicit path must exist. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, errors.New(errors.ErrCodeFileNotFound, "config file %s does not exist", path)
		}
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// =============================================================================
// Validation
// =============================================================================

var validate = validator.New()

// Validate checks every section against its constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, formatValidationError(err), "invalid config")
	}
	return nil
}

func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Report the first failure in a user-friendly format.
	for _, e := range validationErrs {
		field := strings.TrimPrefix(e.Namespace(), "Config.")
		switch e.Tag() {
		case "required", "required_if":
			return fmt.Errorf("%s: field is required", field)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, e.Param())
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "gtefield":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}

// Package config loads clinicalmap settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/clinicalmap/config.toml (falling back to
// ~/.config/clinicalmap/config.toml). Every field has a default, so a missing
// file is not an error. A few connection settings can be overridden from the
// environment, which is how containers usually configure the server:
//
//	CLINICALMAP_ADDR        server.addr
//	CLINICALMAP_REDIS_ADDR  redis.addr (and selects the redis cache backend)
//	CLINICALMAP_MONGO_URI   mongo.uri (and selects the mongo session backend)
//
// Example file:
//
//	[server]
//	addr = ":8080"
//	allowed_origins = ["http://localhost:3000"]
//
//	[cache]
//	backend = "redis"
//	ttl = "24h"
//
//	[redis]
//	addr = "localhost:6379"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// AppName names the application directories.
const AppName = "clinicalmap"

// Environment variables consulted by [Load].
const (
	EnvAddr      = "CLINICALMAP_ADDR"
	EnvRedisAddr = "CLINICALMAP_REDIS_ADDR"
	EnvMongoURI  = "CLINICALMAP_MONGO_URI"
)

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Cache    CacheConfig    `toml:"cache"`
	Redis    RedisConfig    `toml:"redis"`
	Sessions SessionsConfig `toml:"sessions"`
	Mongo    MongoConfig    `toml:"mongo"`
	Layout   LayoutConfig   `toml:"layout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr" validate:"required"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxBodyBytes   int64    `toml:"max_body_bytes" validate:"gt=0"`
}

// CacheConfig selects the layout and artifact cache.
type CacheConfig struct {
	Backend string   `toml:"backend" validate:"oneof=file redis none"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
}

// RedisConfig holds the redis connection used by the redis cache backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db" validate:"gte=0"`
}

// SessionsConfig selects the saved-map store.
type SessionsConfig struct {
	Backend string   `toml:"backend" validate:"oneof=file mongo memory"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`
}

// MongoConfig holds the MongoDB connection used by the mongo session backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// LayoutConfig sets the logical canvas size.
type LayoutConfig struct {
	Width  float64 `toml:"width" validate:"gte=0"`
	Height float64 `toml:"height" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			MaxBodyBytes:   1 << 20,
		},
		Cache: CacheConfig{
			Backend: "file",
			TTL:     Duration(24 * time.Hour),
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Sessions: SessionsConfig{
			Backend: "file",
			TTL:     Duration(30 * 24 * time.Hour),
		},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   AppName,
			Collection: "sessions",
		},
		Layout: LayoutConfig{
			Width:  600,
			Height: 400,
		},
	}
}

// Load reads the configuration at path on top of [Default], applies
// environment overrides and validates the result. An empty path means
// [Path]; a missing file at the default path yields the defaults, while a
// missing explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			cfg.applyEnv()
			return cfg, cfg.Validate()
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

// Decode parses TOML text on top of [Default] without consulting the
// environment.
func Decode(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Save writes cfg to path as TOML, creating parent directories.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Redis.Addr = v
		c.Cache.Backend = "redis"
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		c.Mongo.URI = v
		c.Sessions.Backend = "mongo"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and that the selected backends are
// configured.
func (c Config) Validate() error {
	var msgs []string
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("invalid config: %w", err)
		}
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
	}

	if c.Cache.Backend == "redis" && c.Redis.Addr == "" {
		msgs = append(msgs, "redis.addr is required for the redis cache backend")
	}
	if c.Sessions.Backend == "mongo" {
		if c.Mongo.URI == "" || c.Mongo.Database == "" || c.Mongo.Collection == "" {
			msgs = append(msgs, "mongo.uri, mongo.database and mongo.collection are required for the mongo session backend")
		}
	}

	if len(msgs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// describe turns a validation failure into "section.field: reason".
func describe(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	ns = strings.TrimPrefix(ns, "Config.")
	field := strings.ToLower(ns)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
}

// Dir returns the configuration directory.
func Dir() (string, error) {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Path returns the default configuration file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the configured cache directory, or the XDG default
// (~/.cache/clinicalmap).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return filepath.Join(v, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// SessionsDir returns the configured session directory, or the default
// under [Dir].
func (c Config) SessionsDir() (string, error) {
	if c.Sessions.Dir != "" {
		return c.Sessions.Dir, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

// Duration is a time.Duration written as a string such as "24h" in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Package config loads the bridge settings: built-in defaults, then an
// optional TOML file, then TALLY_* environment variables (a .env file in the
// working directory is read into the environment first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/transport"
)

// EnvPrefix prefixes every environment variable, e.g. TALLY_ENDPOINT.
const EnvPrefix = "tally"

// FileName is the config file looked up in the home directory.
const FileName = ".tallybridge.toml"

var ErrInvalidDuration = errors.New("durations must be positive")

type Config struct {
	// Endpoint is the proxy URL the client posts XML to.
	Endpoint string `toml:"endpoint" validate:"required,url"`
	// TallyURL is the Tally Prime XML port the proxy forwards to.
	TallyURL string `toml:"tally_url" split_words:"true" validate:"required,url"`
	Company  string `toml:"company"`
	User     string `toml:"user"`

	Timeout      time.Duration `toml:"timeout"`
	ProbeTimeout time.Duration `toml:"probe_timeout" split_words:"true"`
	ContentType  string        `toml:"content_type" split_words:"true"`
	PostInterval time.Duration `toml:"post_interval" split_words:"true"`

	ListenAddr    string `toml:"listen_addr" split_words:"true"`
	RateLimit     int    `toml:"rate_limit" split_words:"true" validate:"min=0"`
	AllowedOrigin string `toml:"allowed_origin" split_words:"true"`

	CacheTTL     time.Duration `toml:"cache_ttl" split_words:"true"`
	StoreDir     string        `toml:"store_dir" split_words:"true"`
	RedisAddr    string        `toml:"redis_addr" split_words:"true"`
	GotenbergURL string        `toml:"gotenberg_url" split_words:"true" validate:"omitempty,url"`

	LogLevel  string `toml:"log_level" split_words:"true"`
	LogFormat string `toml:"log_format" split_words:"true" validate:"omitempty,oneof=auto json text"`

	Groups tally.GroupTable `toml:"groups"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Endpoint:     "http://localhost:8000/tally",
		TallyURL:     "http://localhost:9000",
		Timeout:      transport.DefaultTimeout,
		ProbeTimeout: transport.DefaultProbeTimeout,
		ContentType:  transport.DefaultContentType,
		ListenAddr:   ":8000",
		RateLimit:    120,
		CacheTTL:     30 * time.Minute,
		StoreDir:     defaultStoreDir(),
		LogLevel:     "info",
		LogFormat:    "auto",
		Groups:       tally.DefaultGroups,
	}
}

// DefaultPath is ~/.tallybridge.toml, or empty when there is no home
// directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, FileName)
}

func defaultStoreDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".tallybridge"
	}
	return filepath.Join(dir, "tallybridge")
}

// Load layers the settings. An empty path means $TALLY_CONFIG or the default
// path, either of which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv("TALLY_CONFIG")
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	cfg.Groups = cfg.Groups.Merge(tally.DefaultGroups)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile copies every key set in the TOML file onto c.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	overlay(reflect.ValueOf(c).Elem(), reflect.ValueOf(file))
	return nil
}

func overlay(dst, src reflect.Value) {
	for i := 0; i < src.NumField(); i++ {
		f := src.Field(i)
		if f.Kind() == reflect.Struct {
			overlay(dst.Field(i), f)
			continue
		}
		if !f.IsZero() {
			dst.Field(i).Set(f)
		}
	}
}

var validate = validator.New()

// Validate checks URLs, enumerations and durations.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Timeout <= 0 || c.ProbeTimeout <= 0 || c.CacheTTL <= 0 || c.PostInterval < 0 {
		return fmt.Errorf("config: %w", ErrInvalidDuration)
	}
	return nil
}

// TransportOptions are the client options implied by the settings.
func (c *Config) TransportOptions() []transport.Option {
	return []transport.Option{
		transport.WithTimeout(c.Timeout),
		transport.WithProbeTimeout(c.ProbeTimeout),
		transport.WithContentType(c.ContentType),
	}
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when HOTELSTATS_CONFIG is not set.
const DefaultPath = "configs/config.yaml"

var validate = validator.New()

type Config struct {
	Server struct {
		Port        int      `yaml:"port" validate:"min=1,max=65535"`
		StaticDir   string   `yaml:"static_dir"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`

	Upstream struct {
		Mode           string  `yaml:"mode" validate:"oneof=bookings booking_list"`
		URL            string  `yaml:"url" validate:"required,url"`
		HotelCode      string  `yaml:"hotel_code"`
		AuthCode       string  `yaml:"auth_code"`
		APIKey         string  `yaml:"api_key"`
		EmailID        string  `yaml:"email_id"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		RatePerSecond  float64 `yaml:"rate_per_second" validate:"min=0"`
		LookbackDays   int     `yaml:"lookback_days"`
		LookaheadDays  int     `yaml:"lookahead_days"`
	} `yaml:"upstream"`

	Cache struct {
		Backend string `yaml:"backend" validate:"oneof=file redis sqlite postgres"`
		Layout  string `yaml:"layout" validate:"oneof=single by_day"`
		Path    string `yaml:"path"`
		// TimeoutSeconds is a pointer so an explicit 0 (caching off) differs
		// from an omitted key.
		TimeoutSeconds *int `yaml:"timeout_seconds"`
	} `yaml:"cache"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`

	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	Timezone string `yaml:"timezone"`

	Monitoring struct {
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port" validate:"min=1,max=65535"`
	} `yaml:"monitoring"`
}

// PathFromEnv returns the config path from HOTELSTATS_CONFIG or DefaultPath.
func PathFromEnv() string {
	if p := os.Getenv("HOTELSTATS_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Cache.Backend == "file" {
		if err = os.MkdirAll(filepath.Dir(cfg.Cache.Path), 0o755); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Upstream.Mode == "" {
		c.Upstream.Mode = "bookings"
	}
	if c.Upstream.LookbackDays <= 0 {
		c.Upstream.LookbackDays = 30
	}
	if c.Upstream.LookaheadDays < 0 {
		c.Upstream.LookaheadDays = 0
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "file"
	}
	if c.Cache.Layout == "" {
		c.Cache.Layout = "single"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "data/cache.json"
	}
	if c.Cache.TimeoutSeconds == nil {
		def := 300
		c.Cache.TimeoutSeconds = &def
	}
	if c.Redis.Address == "" {
		c.Redis.Address = "localhost:6379"
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "hotelstats:"
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = "data/cache.db"
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Cache.Backend == "postgres" && c.Postgres.DSN == "" {
		return fmt.Errorf("invalid config: postgres.dsn is required for the postgres backend")
	}
	return nil
}

// CacheTimeout is the cache lifetime; zero disables cache reads.
func (c *Config) CacheTimeout() time.Duration {
	if c.Cache.TimeoutSeconds == nil || *c.Cache.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(*c.Cache.TimeoutSeconds) * time.Second
}

func (c *Config) UpstreamTimeout() time.Duration {
	if c.Upstream.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Upstream.TimeoutSeconds) * time.Second
}

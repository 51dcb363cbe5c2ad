package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the insights engine.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Feedstore FeedstoreConfig `yaml:"feedstore"`
	Logging   LoggingConfig   `yaml:"logging"`
	Cache     CacheConfig     `yaml:"cache"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	Sentinels SentinelsConfig `yaml:"sentinels"`
}

// ServerConfig controls the HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// FeedstoreConfig configures access to the guest-feedback document store.
type FeedstoreConfig struct {
	BaseURL     string        `yaml:"baseURL"`
	RecordsPath string        `yaml:"recordsPath"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxRetries  uint64        `yaml:"maxRetries"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// CacheConfig controls caching of fetched record snapshots. Provider selects
// the backend: "none", "memory", or "valkey".
type CacheConfig struct {
	Provider     string        `yaml:"provider"`
	Addr         string        `yaml:"addr"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	DialTimeout  time.Duration `yaml:"dialTimeout"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	MaxRetries   int           `yaml:"maxRetries"`
	TLS          bool          `yaml:"tls"`
	RecordsTTL   time.Duration `yaml:"recordsTTL"`
}

// RefreshConfig controls the scheduled snapshot warm-up across scopes.
type RefreshConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Schedule string   `yaml:"schedule"`
	Scopes   []string `yaml:"scopes"`
}

// SentinelsConfig points at an optional pack of extra sentinel terms.
type SentinelsConfig struct {
	Path string `yaml:"path"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("INSIGHTS_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    15 * time.Second,
			GracefulTimeout: 10 * time.Second,
		},
		Feedstore: FeedstoreConfig{
			RecordsPath: "/api/v1/feedbacks",
			Timeout:     5 * time.Second,
			MaxRetries:  3,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		Cache: CacheConfig{
			Provider:     "none",
			RecordsTTL:   2 * time.Minute,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
			MaxRetries:   2,
		},
		Refresh: RefreshConfig{
			Enabled:  false,
			Schedule: "*/15 * * * *",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("INSIGHTS_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("INSIGHTS_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("INSIGHTS_FEEDSTORE_BASE_URL"); v != "" {
		cfg.Feedstore.BaseURL = v
	}
	if v := os.Getenv("INSIGHTS_FEEDSTORE_RECORDS_PATH"); v != "" {
		cfg.Feedstore.RecordsPath = v
	}
	if v := os.Getenv("INSIGHTS_FEEDSTORE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Feedstore.Timeout = d
		}
	}
	if v := os.Getenv("INSIGHTS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("INSIGHTS_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("INSIGHTS_CACHE_PROVIDER"); v != "" {
		cfg.Cache.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("INSIGHTS_CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("INSIGHTS_CACHE_USERNAME"); v != "" {
		cfg.Cache.Username = v
	}
	if v := os.Getenv("INSIGHTS_CACHE_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v := os.Getenv("INSIGHTS_CACHE_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Cache.DB = db
		}
	}
	if v := os.Getenv("INSIGHTS_CACHE_TLS"); strings.EqualFold(v, "true") || v == "1" {
		cfg.Cache.TLS = true
	}
	if v := os.Getenv("INSIGHTS_CACHE_RECORDS_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.RecordsTTL = d
		}
	}
	if v := os.Getenv("INSIGHTS_REFRESH_ENABLED"); v != "" {
		cfg.Refresh.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("INSIGHTS_REFRESH_SCHEDULE"); v != "" {
		cfg.Refresh.Schedule = v
	}
	if v := os.Getenv("INSIGHTS_REFRESH_SCOPES"); v != "" {
		cfg.Refresh.Scopes = nil
		for _, scope := range strings.Split(v, ",") {
			if scope = strings.TrimSpace(scope); scope != "" {
				cfg.Refresh.Scopes = append(cfg.Refresh.Scopes, scope)
			}
		}
	}
	if v := os.Getenv("INSIGHTS_SENTINELS_PATH"); v != "" {
		cfg.Sentinels.Path = v
	}
}

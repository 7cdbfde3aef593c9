package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Upload     UploadConfig     `yaml:"upload"`
	Redis      RedisConfig      `yaml:"redis"`
	Database   DatabaseConfig   `yaml:"database"`
	Demand     DemandConfig     `yaml:"demand"`
	Simulation SimulationConfig `yaml:"simulation"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Autopilot  AutopilotConfig  `yaml:"autopilot"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	Env            string        `yaml:"env"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	// TrustedProxies lists addresses or CIDR ranges of reverse proxies whose
	// X-Forwarded-For header may name the real client.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Store backends for uploads.
const (
	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

type UploadConfig struct {
	MaxBytes int64  `yaml:"max_bytes"`
	Store    string `yaml:"store"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type DemandConfig struct {
	StreamInterval time.Duration `yaml:"stream_interval"`
}

type SimulationConfig struct {
	RunDelay time.Duration `yaml:"run_delay"`
}

type AutopilotConfig struct {
	StepDelay time.Duration `yaml:"step_delay"`
}

type RateLimitConfig struct {
	MaxCallsPerMinute int `yaml:"max_calls_per_minute"`
	BurstSize         int `yaml:"burst_size"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			Env:            "development",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Upload: UploadConfig{
			MaxBytes: 10 << 20,
			Store:    StoreMemory,
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "retailpilot:",
		},
		Demand:     DemandConfig{StreamInterval: 3 * time.Second},
		Simulation: SimulationConfig{RunDelay: 1500 * time.Millisecond},
		RateLimit:  RateLimitConfig{MaxCallsPerMinute: 30, BurstSize: 60},
		Autopilot:  AutopilotConfig{StepDelay: 1800 * time.Millisecond},
	}
}

// LoadConfig reads the YAML file at path on top of Default. A missing file
// is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides file values with PORT, APP_ENV, UPLOAD_STORE,
// REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, DATABASE_URL, ALLOWED_ORIGINS and
// TRUSTED_PROXIES.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Server.Env = v
	}
	if v := os.Getenv("UPLOAD_STORE"); v != "" {
		c.Upload.Store = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Redis.DB = db
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		c.Server.TrustedProxies = splitList(v)
	}
	return c.Validate()
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Upload.Store {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.Database.URL == "" {
			return errors.New("upload.store is postgres but database.url / DATABASE_URL is empty")
		}
	default:
		return fmt.Errorf("unknown upload.store %q", c.Upload.Store)
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes)
	}
	if c.Demand.StreamInterval <= 0 {
		return fmt.Errorf("demand.stream_interval must be positive, got %s", c.Demand.StreamInterval)
	}
	if c.Simulation.RunDelay < 0 {
		return fmt.Errorf("simulation.run_delay must not be negative, got %s", c.Simulation.RunDelay)
	}
	if c.Autopilot.StepDelay < 0 {
		return fmt.Errorf("autopilot.step_delay must not be negative, got %s", c.Autopilot.StepDelay)
	}
	for _, p := range c.Server.TrustedProxies {
		if !validProxy(p) {
			return fmt.Errorf("server.trusted_proxies: %q is not an address or CIDR range", p)
		}
	}
	return nil
}

func validProxy(s string) bool {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		_, err := netip.ParsePrefix(s)
		return err == nil
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IsProduction reports whether server.env is "production".
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

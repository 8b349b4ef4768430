// Package config handles loading and resolving pitwall configuration.
// Resolution order (later layers win):
//  1. built-in defaults
//  2. config.json in the current working directory
//  3. environment variables PITWALL_<KEY> (e.g. PITWALL_DB_PATH)
//  4. CLI flags, applied by the cmd package after Load
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultConfigFile   = "config.json"
	DefaultFormat       = "table"
	DefaultTimeout      = 30 * time.Second
	DefaultRate         = 5.0
	DefaultPageSize     = 10
	DefaultBaseURL      = "http://localhost:8000/api/"
	DefaultCacheBackend = BackendBolt
	DefaultListenAddr   = "127.0.0.1:8080"
	DefaultRedisAddr    = "127.0.0.1:6379"
	EnvPrefix           = "PITWALL"

	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

// Keys lists every recognised configuration key.
var Keys = []string{
	"base_url", "default_format", "timeout", "rate", "db_path", "page_size",
	"cache_backend", "redis_addr", "redis_password", "redis_db", "listen_addr", "email",
}

// File is the on-disk representation of config.json.
type File struct {
	BaseURL       string  `json:"base_url,omitempty"`
	DefaultFormat string  `json:"default_format,omitempty"`
	Timeout       string  `json:"timeout,omitempty"`
	Rate          float64 `json:"rate,omitempty"`
	DBPath        string  `json:"db_path,omitempty"`
	PageSize      int     `json:"page_size,omitempty"`
	CacheBackend  string  `json:"cache_backend,omitempty"`
	RedisAddr     string  `json:"redis_addr,omitempty"`
	RedisPassword string  `json:"redis_password,omitempty"`
	RedisDB       int     `json:"redis_db,omitempty"`
	ListenAddr    string  `json:"listen_addr,omitempty"`
	Email         string  `json:"email,omitempty"`
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; the File is only read during loading.
type Config struct {
	BaseURL       string
	Format        string
	Timeout       time.Duration
	Rate          float64
	DBPath        string
	PageSize      int
	CacheBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ListenAddr    string
	Email         string
	ConfigPath    string // path of the config.json that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	Quiet   bool
	Verbose bool
	Debug   bool
}

// Load resolves configuration from defaults, config.json and the
// environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("default_format", DefaultFormat)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("rate", DefaultRate)
	v.SetDefault("db_path", "")
	v.SetDefault("page_size", DefaultPageSize)
	v.SetDefault("cache_backend", DefaultCacheBackend)
	v.SetDefault("redis_addr", DefaultRedisAddr)
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("listen_addr", DefaultListenAddr)
	v.SetDefault("email", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if path, err := filepath.Abs(DefaultConfigFile); err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			v.SetConfigFile(path)
			v.SetConfigType("json")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("parsing config.json: %w", err)
			}
			cfg.ConfigPath = path
		}
	}

	cfg.BaseURL = v.GetString("base_url")
	cfg.Format = v.GetString("default_format")
	cfg.Timeout = v.GetDuration("timeout")
	cfg.Rate = v.GetFloat64("rate")
	cfg.DBPath = v.GetString("db_path")
	cfg.PageSize = v.GetInt("page_size")
	cfg.CacheBackend = strings.ToLower(v.GetString("cache_backend"))
	cfg.RedisAddr = v.GetString("redis_addr")
	cfg.RedisPassword = v.GetString("redis_password")
	cfg.RedisDB = v.GetInt("redis_db")
	cfg.ListenAddr = v.GetString("listen_addr")
	cfg.Email = v.GetString("email")

	// Unparseable or non-positive values fall back to defaults
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRate
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.DBPath = filepath.Join(home, ".pitwall", "pitwall.db")
		}
	}

	return cfg, nil
}

// Validate returns an error if the resolved configuration is unusable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute http(s) URL", c.BaseURL)
	}
	switch c.CacheBackend {
	case BackendBolt, BackendRedis:
	default:
		return fmt.Errorf("cache_backend %q: expected %s or %s", c.CacheBackend, BackendBolt, BackendRedis)
	}
	if c.CacheBackend == BackendRedis && c.RedisAddr == "" {
		return errors.New("cache_backend redis requires redis_addr")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	return nil
}

// RedactedRedisPassword returns the redis password with most characters
// replaced by asterisks. Safe for logging and display.
func (c *Config) RedactedRedisPassword() string {
	if c.RedisPassword == "" {
		return ""
	}
	if len(c.RedisPassword) <= 4 {
		return "****"
	}
	return c.RedisPassword[:2] + "****" + c.RedisPassword[len(c.RedisPassword)-2:]
}

// Template returns a File populated with sensible defaults, suitable for
// writing an initial config.json via `pitwall config init`.
func Template() File {
	return File{
		BaseURL:       DefaultBaseURL,
		DefaultFormat: DefaultFormat,
		Timeout:       "30s",
		Rate:          DefaultRate,
		PageSize:      DefaultPageSize,
		CacheBackend:  DefaultCacheBackend,
		ListenAddr:    DefaultListenAddr,
	}
}

// ReadFile parses a config.json.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

// Set assigns one key of f from its string form.
func (f *File) Set(key, val string) error {
	switch strings.ToLower(key) {
	case "base_url":
		f.BaseURL = val
	case "default_format", "format":
		f.DefaultFormat = val
	case "timeout":
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("timeout must be a duration like 30s: %w", err)
		}
		f.Timeout = val
	case "rate":
		var r float64
		if _, err := fmt.Sscanf(val, "%f", &r); err != nil {
			return fmt.Errorf("rate must be a number")
		}
		f.Rate = r
	case "db_path":
		f.DBPath = val
	case "page_size":
		var n int
		if _, err := fmt.Sscanf(val, "%d", &n); err != nil || n <= 0 {
			return fmt.Errorf("page_size must be a positive integer")
		}
		f.PageSize = n
	case "cache_backend":
		val = strings.ToLower(val)
		if val != BackendBolt && val != BackendRedis {
			return fmt.Errorf("cache_backend must be %s or %s", BackendBolt, BackendRedis)
		}
		f.CacheBackend = val
	case "redis_addr":
		f.RedisAddr = val
	case "redis_password":
		f.RedisPassword = val
	case "redis_db":
		var n int
		if _, err := fmt.Sscanf(val, "%d", &n); err != nil {
			return fmt.Errorf("redis_db must be an integer")
		}
		f.RedisDB = n
	case "listen_addr":
		f.ListenAddr = val
	case "email":
		f.Email = val
	default:
		return fmt.Errorf("unknown config key: %q\n\nValid keys: %s", key, strings.Join(Keys, ", "))
	}
	return nil
}

package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/derickschaefer/pitwall/internal/config"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

// writeConfig writes a config.json into dir and changes the working directory
// to dir for the duration of the test.
func writeConfig(t *testing.T, dir string, f config.File) {
	t.Helper()
	path := filepath.Join(dir, "config.json")
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	chdir(t, dir)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

// clearEnv blanks every PITWALL_* variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range config.Keys {
		t.Setenv(config.EnvPrefix+"_"+strings.ToUpper(k), "")
	}
}

// ─── Defaults ─────────────────────────────────────────────────────────────────

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	chdir(t, t.TempDir())

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Format != config.DefaultFormat {
		t.Errorf("Format: expected %q, got %q", config.DefaultFormat, cfg.Format)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("Timeout: expected %v, got %v", config.DefaultTimeout, cfg.Timeout)
	}
	if cfg.PageSize != config.DefaultPageSize {
		t.Errorf("PageSize: expected %d, got %d", config.DefaultPageSize, cfg.PageSize)
	}
	if cfg.CacheBackend != config.BackendBolt {
		t.Errorf("CacheBackend: expected bolt, got %q", cfg.CacheBackend)
	}
	if cfg.BaseURL != config.DefaultBaseURL {
		t.Errorf("BaseURL: expected %q, got %q", config.DefaultBaseURL, cfg.BaseURL)
	}
	if cfg.DBPath == "" {
		t.Error("DBPath should have a default (home dir based) value")
	}
	if cfg.ConfigPath != "" {
		t.Errorf("ConfigPath should be empty when no file found, got %q", cfg.ConfigPath)
	}
}

// ─── Config file loading ──────────────────────────────────────────────────────

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{
		BaseURL:       "https://api.example.com/v2/",
		DefaultFormat: "json",
		Timeout:       "60s",
		Rate:          2.5,
		DBPath:        "/tmp/test.db",
		PageSize:      25,
		CacheBackend:  "Redis",
		RedisAddr:     "cache:6379",
	})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != "https://api.example.com/v2/" {
		t.Errorf("BaseURL: got %q", cfg.BaseURL)
	}
	if cfg.Format != "json" {
		t.Errorf("Format: expected json, got %q", cfg.Format)
	}
	if cfg.Timeout.String() != "1m0s" {
		t.Errorf("Timeout: expected 1m0s, got %q", cfg.Timeout.String())
	}
	if cfg.Rate != 2.5 {
		t.Errorf("Rate: expected 2.5, got %g", cfg.Rate)
	}
	if cfg.PageSize != 25 {
		t.Errorf("PageSize: expected 25, got %d", cfg.PageSize)
	}
	if cfg.CacheBackend != config.BackendRedis {
		t.Errorf("CacheBackend: expected redis, got %q", cfg.CacheBackend)
	}
	if cfg.RedisAddr != "cache:6379" {
		t.Errorf("RedisAddr: got %q", cfg.RedisAddr)
	}
	if !strings.Contains(cfg.ConfigPath, "config.json") {
		t.Errorf("ConfigPath should contain config.json, got %q", cfg.ConfigPath)
	}
}

func TestLoadInvalidTimeoutIgnored(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{Timeout: "not-a-duration"})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != config.DefaultTimeout {
		t.Errorf("invalid timeout should use default %v, got %v", config.DefaultTimeout, cfg.Timeout)
	}
}

func TestLoadMalformedFileErrors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	chdir(t, dir)

	if _, err := config.Load(); err == nil {
		t.Error("malformed config.json should return an error")
	}
}

// ─── Environment variable priority ───────────────────────────────────────────

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{DBPath: "/from/file.db", PageSize: 20})
	t.Setenv("PITWALL_DB_PATH", "/from/env.db")
	t.Setenv("PITWALL_PAGE_SIZE", "5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/from/env.db" {
		t.Errorf("PITWALL_DB_PATH should override file: got %q", cfg.DBPath)
	}
	if cfg.PageSize != 5 {
		t.Errorf("PITWALL_PAGE_SIZE should override file: got %d", cfg.PageSize)
	}
}

func TestLoadEmptyEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	writeConfig(t, t.TempDir(), config.File{Email: "driver@example.com"})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Email != "driver@example.com" {
		t.Errorf("empty env should not override file value: got %q", cfg.Email)
	}
}

// ─── Validate ─────────────────────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	valid := config.Config{BaseURL: "https://api.example.com/", CacheBackend: "bolt", PageSize: 10}
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"valid", func(c *config.Config) {}, ""},
		{"relative base url", func(c *config.Config) { c.BaseURL = "/api" }, "base_url"},
		{"ftp base url", func(c *config.Config) { c.BaseURL = "ftp://x/" }, "base_url"},
		{"unknown backend", func(c *config.Config) { c.CacheBackend = "memcached" }, "cache_backend"},
		{"redis without addr", func(c *config.Config) { c.CacheBackend = "redis" }, "redis_addr"},
		{"zero page size", func(c *config.Config) { c.PageSize = 0 }, "page_size"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRedactedRedisPassword(t *testing.T) {
	for pw, want := range map[string]string{"": "", "abc": "****", "abcdefghij": "ab****ij"} {
		cfg := &config.Config{RedisPassword: pw}
		if got := cfg.RedactedRedisPassword(); got != want {
			t.Errorf("RedactedRedisPassword(%q) = %q, want %q", pw, got, want)
		}
	}
}

// ─── File / Template ──────────────────────────────────────────────────────────

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	f := config.Template()
	f.Email = "driver@example.com"

	if err := config.WriteFile(path, f); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := config.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got != f {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", f, got)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file permissions: expected 0600, got %04o", info.Mode().Perm())
	}
}

func TestFileSet(t *testing.T) {
	var f config.File
	if err := f.Set("page_size", "15"); err != nil || f.PageSize != 15 {
		t.Errorf("page_size: err=%v value=%d", err, f.PageSize)
	}
	if err := f.Set("CACHE_BACKEND", "REDIS"); err != nil || f.CacheBackend != "redis" {
		t.Errorf("cache_backend: err=%v value=%q", err, f.CacheBackend)
	}
	if err := f.Set("timeout", "soon"); err == nil {
		t.Error("invalid timeout should be rejected")
	}
	if err := f.Set("page_size", "-1"); err == nil {
		t.Error("negative page_size should be rejected")
	}
	if err := f.Set("api_key", "x"); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("unknown key should be rejected, got %v", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.List.PageSize != 10 {
		t.Errorf("expected page size 10, got %d", cfg.List.PageSize)
	}
	if cfg.List.ScrollThreshold != 20 {
		t.Errorf("expected scroll threshold 20, got %v", cfg.List.ScrollThreshold)
	}
	if cfg.Dashboard.TrendMonths != 5 || cfg.Dashboard.VolumeYears != 5 {
		t.Errorf("unexpected dashboard windows: %+v", cfg.Dashboard)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_AMS_HOST", "audits.example.com")

	content := `
base_url: https://${TEST_AMS_HOST}/api/v1
timeout: 10s
log:
  level: debug
  format: structured
store:
  driver: redis
  redis_addr: localhost:6379
  redis_db: 2
list:
  page_size: 25
dashboard:
  trend_months: 6
`
	dir := t.TempDir()
	path := filepath.Join(dir, "ams.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BaseURL != "https://audits.example.com/api/v1" {
		t.Errorf("env var not expanded: got %s", cfg.BaseURL)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("expected 10s timeout, got %v", cfg.Timeout)
	}
	if cfg.Store.Driver != "redis" || cfg.Store.RedisDB != 2 {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.List.PageSize != 25 {
		t.Errorf("expected page size 25, got %d", cfg.List.PageSize)
	}
	// Untouched keys keep their defaults.
	if cfg.List.ScrollThreshold != 20 {
		t.Errorf("expected default threshold, got %v", cfg.List.ScrollThreshold)
	}
	if cfg.Dashboard.TrendMonths != 6 || cfg.Dashboard.VolumeYears != 5 {
		t.Errorf("unexpected dashboard config: %+v", cfg.Dashboard)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AMS_BASE_URL", "http://10.0.2.2:8080/api/v1")
	t.Setenv("AMS_LIST_PAGE_SIZE", "5")
	t.Setenv("AMS_LOG_LEVEL", "info")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "http://10.0.2.2:8080/api/v1" {
		t.Errorf("expected env base url, got %s", cfg.BaseURL)
	}
	if cfg.List.PageSize != 5 {
		t.Errorf("expected page size 5, got %d", cfg.List.PageSize)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected info level, got %s", cfg.Log.Level)
	}
}

// Unprefixed variables such as PATH must never leak into the config.
func TestEnvIgnoresUnprefixedNames(t *testing.T) {
	t.Setenv("PATH", "/usr/local/bin:/usr/bin")
	t.Setenv("LEVEL", "debug")
	t.Setenv("TIMEOUT", "1s")
	t.Setenv("DRIVER", "memory")
	t.Setenv("RECENT", "99")
	t.Setenv("PAGE_SIZE", "3")

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "session.db")
	path := filepath.Join(dir, "ams.yaml")
	content := "timeout: 7s\nlog:\n  level: error\nstore:\n  path: " + dbPath + "\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Path != dbPath {
		t.Errorf("store path = %q, want %q", cfg.Store.Path, dbPath)
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("store driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("log level = %q, want error", cfg.Log.Level)
	}
	if cfg.Timeout != 7*time.Second {
		t.Errorf("timeout = %v, want 7s", cfg.Timeout)
	}
	if cfg.Report.Recent != 5 || cfg.List.PageSize != 10 {
		t.Errorf("defaults overridden: recent=%d page_size=%d", cfg.Report.Recent, cfg.List.PageSize)
	}
}

func TestEnvOverridesStore(t *testing.T) {
	t.Setenv("AMS_STORE_PATH", "/tmp/ams-test/session.db")
	t.Setenv("AMS_STORE_REDIS_ADDR", "cache:6379")
	t.Setenv("AMS_DASHBOARD_VOLUME_YEARS", "3")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Store.Path != "/tmp/ams-test/session.db" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	if cfg.Store.RedisAddr != "cache:6379" {
		t.Errorf("redis addr = %q", cfg.Store.RedisAddr)
	}
	if cfg.Dashboard.VolumeYears != 3 {
		t.Errorf("volume years = %d, want 3", cfg.Dashboard.VolumeYears)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/ams.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"bad driver":     "store:\n  driver: etcd\n",
		"zero page size": "list:\n  page_size: 0\n",
		"redis no addr":  "store:\n  driver: redis\n",
		"bad base url":   "base_url: not a url\n",
		"unknown level":  "log:\n  level: trace\n",
		"malformed yaml": "list: [\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ams.yaml")
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("expected error for %q", content)
			}
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  address: "127.0.0.1"
  port: 9090
  db_path: "/tmp/pairlink-db"
security:
  token_secret: "file-secret"
  cors:
    allowed_origins: ["https://app.example.com"]
  rate_limit:
    rps: 2.5
    burst: 20
  api_keys:
    backend: ["bk-1", "bk-2"]
reminders:
  enabled: true
  interval: "30s"
limits:
  max_content_chars: 4000
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Address != "127.0.0.1" || cfg.Server.Port != 9090 {
		t.Fatalf("server section: %+v", cfg.Server)
	}
	if cfg.Security.TokenSecret != "file-secret" {
		t.Fatalf("token secret: %q", cfg.Security.TokenSecret)
	}
	if len(cfg.Security.APIKeys.Backend) != 2 {
		t.Fatalf("backend keys: %v", cfg.Security.APIKeys.Backend)
	}
	if !cfg.Reminders.Enabled || cfg.Reminders.Interval.Std() != 30*time.Second {
		t.Fatalf("reminders section: %+v", cfg.Reminders)
	}
	if cfg.Limits.MaxContentChars != 4000 {
		t.Fatalf("limits section: %+v", cfg.Limits)
	}
	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("addr: %s", cfg.Addr())
	}
}

func TestDurationPlainSeconds(t *testing.T) {
	path := writeConfig(t, `
reminders:
  interval: 45
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Reminders.Interval.Std() != 45*time.Second {
		t.Fatalf("plain number must parse as seconds, got %v", cfg.Reminders.Interval.Std())
	}
}

func TestAddrDefaults(t *testing.T) {
	cfg := &Config{}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Fatalf("default addr: %s", cfg.Addr())
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
security:
  token_secret: "file-secret"
`)
	t.Setenv("PAIRLINK_ADDR", "0.0.0.0:7070")
	t.Setenv("PAIRLINK_TOKEN_SECRET", "env-secret")
	t.Setenv("PAIRLINK_API_BACKEND_KEYS", "bk-a, bk-b")
	t.Setenv("PAIRLINK_REMINDERS_ENABLED", "true")
	t.Setenv("PAIRLINK_REMINDERS_INTERVAL", "15")

	cfg, keys, envUsed, err := LoadEffective(path)
	if err != nil {
		t.Fatalf("load effective: %v", err)
	}
	if !envUsed {
		t.Fatalf("env overrides not detected")
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("env addr must win, got port %d", cfg.Server.Port)
	}
	if cfg.Security.TokenSecret != "env-secret" {
		t.Fatalf("env secret must win, got %q", cfg.Security.TokenSecret)
	}
	if _, ok := keys["bk-a"]; !ok {
		t.Fatalf("backend keys not derived: %v", keys)
	}
	if _, ok := keys["bk-b"]; !ok {
		t.Fatalf("backend keys not derived: %v", keys)
	}
	if !cfg.Reminders.Enabled || cfg.Reminders.Interval.Std() != 15*time.Second {
		t.Fatalf("reminder env overrides: %+v", cfg.Reminders)
	}
}

func TestLoadEffectiveMissingFile(t *testing.T) {
	cfg, _, _, err := LoadEffective(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must not be fatal: %v", err)
	}
	if cfg == nil {
		t.Fatalf("expected empty config")
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath("/flag/path.yaml", true); got != "/flag/path.yaml" {
		t.Fatalf("explicit flag must win, got %s", got)
	}
	t.Setenv("PAIRLINK_CONFIG", "/env/path.yaml")
	if got := ResolveConfigPath("./config.yaml", false); got != "/env/path.yaml" {
		t.Fatalf("env must win over flag default, got %s", got)
	}
	os.Unsetenv("PAIRLINK_CONFIG")
	if got := ResolveConfigPath("./config.yaml", false); got != "./config.yaml" {
		t.Fatalf("flag default must apply last, got %s", got)
	}
}

func TestRuntimeConfig(t *testing.T) {
	SetRuntime(&RuntimeConfig{
		BackendKeys: map[string]struct{}{"bk-1": {}},
		TokenSecret: "rt-secret",
	})
	t.Cleanup(func() { SetRuntime(nil) })

	if GetTokenSecret() != "rt-secret" {
		t.Fatalf("token secret: %q", GetTokenSecret())
	}
	keys := GetBackendKeys()
	if _, ok := keys["bk-1"]; !ok {
		t.Fatalf("backend keys: %v", keys)
	}
	// the returned map is a copy
	keys["bk-2"] = struct{}{}
	if _, ok := GetBackendKeys()["bk-2"]; ok {
		t.Fatalf("mutation leaked into runtime config")
	}
}

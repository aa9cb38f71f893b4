package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("")
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.Server.Port != "5000" {
		t.Errorf("Server.Port = %q, want 5000", cfg.Server.Port)
	}
	if cfg.Database.URI != "mongodb://localhost:27017/" || cfg.Database.Name != "movie_watchlist" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Database.OperationTimeout != 5*time.Second {
		t.Errorf("OperationTimeout = %v", cfg.Database.OperationTimeout)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis should be disabled by default")
	}
	if cfg.Observability.ServiceName != ServiceName {
		t.Errorf("ServiceName = %q", cfg.Observability.ServiceName)
	}
	if cfg.Observability.Environment != cfg.Primary.Env {
		t.Errorf("Environment = %q, want %q", cfg.Observability.Environment, cfg.Primary.Env)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WATCHLIST_PRIMARY__ENV", "production")
	t.Setenv("WATCHLIST_SERVER__PORT", "8080")
	t.Setenv("WATCHLIST_SERVER__CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("WATCHLIST_DATABASE__URI", "mongodb://mongo:27017/")
	t.Setenv("WATCHLIST_DATABASE__OPERATION_TIMEOUT", "2s")
	t.Setenv("WATCHLIST_REDIS__ADDRESS", "redis:6379")
	t.Setenv("WATCHLIST_RATE_LIMIT__ENABLED", "true")
	t.Setenv("WATCHLIST_OBSERVABILITY__SERVICE_NAME", "something-else")

	cfg, err := load("")
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q", cfg.Server.Port)
	}
	wantOrigins := []string{"http://a.test", "http://b.test"}
	if !reflect.DeepEqual(cfg.Server.CORSAllowedOrigins, wantOrigins) {
		t.Errorf("CORSAllowedOrigins = %q, want %q", cfg.Server.CORSAllowedOrigins, wantOrigins)
	}
	if cfg.Database.URI != "mongodb://mongo:27017/" {
		t.Errorf("Database.URI = %q", cfg.Database.URI)
	}
	if cfg.Database.OperationTimeout != 2*time.Second {
		t.Errorf("OperationTimeout = %v", cfg.Database.OperationTimeout)
	}
	if !cfg.Redis.Enabled() || !cfg.RateLimit.Enabled {
		t.Errorf("redis/rate limit not enabled: %+v %+v", cfg.Redis, cfg.RateLimit)
	}
	if cfg.Observability.ServiceName != ServiceName {
		t.Errorf("ServiceName = %q, want it forced to %q", cfg.Observability.ServiceName, ServiceName)
	}
	if !cfg.Observability.IsProduction() || cfg.Observability.GetLogLevel() != "info" {
		t.Errorf("production defaults not applied: %+v", cfg.Observability)
	}
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	yaml := []byte(`
server:
  port: "9000"
database:
  name: films
  collection: watchlist
`)
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WATCHLIST_DATABASE__NAME", "from_env")

	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	if cfg.Server.Port != "9000" {
		t.Errorf("Server.Port = %q, want value from file", cfg.Server.Port)
	}
	if cfg.Database.Collection != "watchlist" {
		t.Errorf("Database.Collection = %q, want value from file", cfg.Database.Collection)
	}
	if cfg.Database.Name != "from_env" {
		t.Errorf("Database.Name = %q, env must win over file", cfg.Database.Name)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "unknown environment", key: "WATCHLIST_PRIMARY__ENV", val: "moon"},
		{name: "unknown log level", key: "WATCHLIST_OBSERVABILITY__LOGGING__LEVEL", val: "loud"},
		{name: "operation timeout too small", key: "WATCHLIST_DATABASE__OPERATION_TIMEOUT", val: "1ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := load(""); err == nil {
				t.Errorf("load() with %s=%q succeeded, want error", tt.key, tt.val)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("load() with a missing file succeeded, want error")
	}
}

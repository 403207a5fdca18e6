package config

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir switches into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("driver = %s, want sqlite", cfg.Database.Driver)
	}
	if cfg.Auth.TokenLifetime != 24 {
		t.Errorf("token lifetime = %d, want 24", cfg.Auth.TokenLifetime)
	}
	if cfg.Feed.ValkeyAddr != "" {
		t.Errorf("valkey feed should be disabled by default, got %q", cfg.Feed.ValkeyAddr)
	}
}

func TestLoad_ConfigFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "server:\n  port: 9000\nlog:\n  level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("USERHUB_LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000 from config file", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %s, want env override warn", cfg.Log.Level)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("USERHUB_ADMIN_EMAIL=root@example.com\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("USERHUB_ADMIN_EMAIL") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Admin.Email != "root@example.com" {
		t.Errorf("admin email = %q, want value from .env", cfg.Admin.Email)
	}
}

func TestInsecureSecret(t *testing.T) {
	tests := []struct {
		name   string
		mode   string
		secret string
		want   bool
	}{
		{"production with default", "production", DefaultJWTSecret, true},
		{"production with custom", "production", "s3cret", false},
		{"development with default", "development", DefaultJWTSecret, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Server.Mode = tt.mode
			cfg.Auth.JWTSecret = tt.secret
			if got := cfg.InsecureSecret(); got != tt.want {
				t.Errorf("InsecureSecret() = %v, want %v", got, tt.want)
			}
		})
	}
}

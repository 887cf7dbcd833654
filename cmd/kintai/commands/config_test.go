package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/kintai/internal/app"
)

// loadWithArgs parses args with the real flag set and returns the loaded config.
func loadWithArgs(t *testing.T, configPath string, environ []string, args ...string) (*app.Config, error) {
	t.Helper()

	var (
		cfg     *app.Config
		loadErr error
	)
	cmd := newRootCommand()
	cmd.Commands = nil
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		cfg, loadErr = loadConfig(configPath, c, func() []string { return environ })
		return nil
	}

	if err := cmd.Run(context.Background(), append([]string{"kintai"}, args...)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return cfg, loadErr
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kintai.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Precedence(t *testing.T) {
	settings := writeSettings(t, `
log_level = "debug"
data_dir = "/from-file"
timezone = "UTC"

[api]
timeout = "5s"
`)

	tests := []struct {
		name    string
		environ []string
		args    []string
		want    string
	}{
		{"file", nil, nil, "/from-file"},
		{"env over file", []string{"KINTAI_DATA_DIR=/from-env"}, nil, "/from-env"},
		{"flag over env", []string{"KINTAI_DATA_DIR=/from-env"}, []string{"--data-dir", "/from-flag"}, "/from-flag"},
		{"unrelated env ignored", []string{"DATA_DIR=/other"}, nil, "/from-file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadWithArgs(t, settings, tt.environ, tt.args...)
			if err != nil {
				t.Fatalf("loadConfig() error = %v", err)
			}
			if cfg.DataDir != tt.want {
				t.Errorf("DataDir = %q, want %q", cfg.DataDir, tt.want)
			}
			if cfg.LogLevel != slog.LevelDebug {
				t.Errorf("LogLevel = %v, want debug from file", cfg.LogLevel)
			}
			if cfg.API.Timeout != 5*time.Second {
				t.Errorf("API.Timeout = %v, want 5s", cfg.API.Timeout)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadWithArgs(t, "", nil)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.DataDir != app.DefaultConfigDataDir {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.API.BaseURL != app.DefaultConfigAPIBaseURL {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.OAuth.RedirectURI != app.DefaultConfigOAuthRedirectURI {
		t.Errorf("OAuth.RedirectURI = %q", cfg.OAuth.RedirectURI)
	}
	if cfg.Storage.Token != app.TokenStorageTypeFile {
		t.Errorf("Storage.Token = %q", cfg.Storage.Token)
	}
}

func TestLoadConfig_NestedKeys(t *testing.T) {
	cfg, err := loadWithArgs(t, "",
		[]string{"KINTAI_API__BASE_URL=http://127.0.0.1:9999/hr/api/v1"},
		"--oauth--redirect-uri", "http://127.0.0.1:8765/callback",
		"--api--timeout", "2s",
	)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}

	if cfg.API.BaseURL != "http://127.0.0.1:9999/hr/api/v1" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.OAuth.RedirectURI != "http://127.0.0.1:8765/callback" {
		t.Errorf("OAuth.RedirectURI = %q", cfg.OAuth.RedirectURI)
	}
	if cfg.API.Timeout != 2*time.Second {
		t.Errorf("API.Timeout = %v", cfg.API.Timeout)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ []string
		args    []string
	}{
		{"env token storage", []string{"KINTAI_STORAGE__TOKEN=env"}, nil},
		{"unknown log format", nil, []string{"--log-format", "xml"}},
		{"unknown time zone", nil, []string{"--timezone", "Mars/Olympus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadWithArgs(t, "", tt.environ, tt.args...); err == nil {
				t.Error("loadConfig() error = nil, want error")
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := loadWithArgs(t, filepath.Join(t.TempDir(), "missing.toml"), nil); err == nil {
		t.Error("loadConfig() error = nil, want error")
	}
}

func TestLoadDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "KINTAI_DOTENV_REAL=from-file\nKINTAI_DOTENV_ONLY=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("KINTAI_DOTENV_REAL", "from-env")
	t.Cleanup(func() { os.Unsetenv("KINTAI_DOTENV_ONLY") })

	if err := loadDotenv(path); err != nil {
		t.Fatalf("loadDotenv() error = %v", err)
	}
	if got := os.Getenv("KINTAI_DOTENV_REAL"); got != "from-env" {
		t.Errorf("real environment overridden: %q", got)
	}
	if got := os.Getenv("KINTAI_DOTENV_ONLY"); got != "from-file" {
		t.Errorf("KINTAI_DOTENV_ONLY = %q, want from-file", got)
	}

	if err := loadDotenv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env must be ignored, got %v", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.OutputDir != "." || cfg.Format != "auto" || cfg.Site != "webscraper" {
		t.Errorf("unexpected output defaults: %+v", cfg)
	}
	if cfg.NavTimeout != 30*time.Second || cfg.ClickTimeout != 5*time.Second || cfg.SettleTimeout != 2*time.Second {
		t.Errorf("unexpected timeout defaults: %+v", cfg)
	}
	if cfg.Delay != 0 || cfg.RespectRobots {
		t.Errorf("politeness must be off by default: %+v", cfg)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SHOPSCRAPE_OUTPUT_DIR", "/tmp/out")
	t.Setenv("SHOPSCRAPE_PROXY", "http://127.0.0.1:7890")
	t.Setenv("SHOPSCRAPE_CLICK_TIMEOUT", "750ms")
	t.Setenv("SHOPSCRAPE_RESPECT_ROBOTS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.OutputDir != "/tmp/out" {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.ProxyURL != "http://127.0.0.1:7890" {
		t.Errorf("ProxyURL = %q", cfg.ProxyURL)
	}
	if cfg.ClickTimeout != 750*time.Millisecond {
		t.Errorf("ClickTimeout = %v", cfg.ClickTimeout)
	}
	if !cfg.RespectRobots {
		t.Error("RespectRobots should be true")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("SHOPSCRAPE_FORMAT=json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv sets the variable for the process; register cleanup through Setenv
	t.Setenv("SHOPSCRAPE_FORMAT", "")
	os.Unsetenv("SHOPSCRAPE_FORMAT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json from .env", cfg.Format)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SHOPSCRAPE_NAV_TIMEOUT", "soon")

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid duration")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "targets.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTargets_Mapping(t *testing.T) {
	path := writeFile(t, `
https://webscraper.io/test-sites/e-commerce/more/phones/touch: touch.csv
https://webscraper.io/test-sites/e-commerce/more/: home.csv
https://webscraper.io/test-sites/e-commerce/more/computers/laptops: laptops.csv
`)

	targets, err := LoadTargets(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := []string{"touch.csv", "home.csv", "laptops.csv"}
	if len(targets) != len(expected) {
		t.Fatalf("Expected %d targets, got %d", len(expected), len(targets))
	}
	for i, file := range expected {
		if targets[i].File != file {
			t.Errorf("target %d file = %q, want %q (order must be kept)", i, targets[i].File, file)
		}
	}
	if targets[0].URL != "https://webscraper.io/test-sites/e-commerce/more/phones/touch" {
		t.Errorf("target 0 url = %q", targets[0].URL)
	}
}

func TestLoadTargets_List(t *testing.T) {
	path := writeFile(t, `
targets:
  - url: https://shop.test/a
    file: a.csv
  - url: https://shop.test/b
    file: out/b.json
`)

	targets, err := LoadTargets(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(targets) != 2 || targets[1].File != "out/b.json" || targets[1].URL != "https://shop.test/b" {
		t.Errorf("unexpected targets %+v", targets)
	}
}

func TestLoadTargets_Invalid(t *testing.T) {
	tests := map[string]string{
		"sequence at root":   "- a\n- b\n",
		"non scalar file":    "https://shop.test/a:\n  - a.csv\n",
		"malformed document": "targets: [",
	}

	for name, content := range tests {
		if _, err := LoadTargets(writeFile(t, content)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, err := LoadTargets(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file: expected error")
	}
}

func TestTargets_Validate(t *testing.T) {
	tests := []struct {
		name    string
		targets Targets
		wantErr string
	}{
		{"valid", Targets{{URL: "https://shop.test/a", File: "a.csv"}, {URL: "https://shop.test/a", File: "b.csv"}}, ""},
		{"empty", nil, "no targets"},
		{"empty file", Targets{{URL: "https://shop.test/a"}}, "empty file name"},
		{"duplicate file", Targets{{URL: "https://shop.test/a", File: "a.csv"}, {URL: "https://shop.test/b", File: "a.csv"}}, "already used"},
		{"relative url", Targets{{URL: "/laptops", File: "a.csv"}}, "absolute"},
		{"ftp url", Targets{{URL: "ftp://shop.test/a", File: "a.csv"}}, "absolute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.targets.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTargets_DuplicateURLs(t *testing.T) {
	targets := Targets{
		{URL: "https://shop.test/a", File: "1.csv"},
		{URL: "https://shop.test/b", File: "2.csv"},
		{URL: "https://shop.test/a", File: "3.csv"},
		{URL: "https://shop.test/a", File: "4.csv"},
	}

	dups := targets.DuplicateURLs()
	if len(dups) != 1 || dups[0] != "https://shop.test/a" {
		t.Errorf("DuplicateURLs() = %v", dups)
	}
}

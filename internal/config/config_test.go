package config

import (
	"os"
	"testing"
	"time"
)

// chdir switches to dir for the duration of the test, restoring the
// previous working directory on cleanup. Equivalent to t.Chdir, which
// requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restoring wd: %v", err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != DefaultTimeout || cfg.Rate != DefaultRate || cfg.WaterTarget != DefaultWaterTarget {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
	if cfg.ConfigPath != "" {
		t.Fatalf("no config.json present, ConfigPath = %q", cfg.ConfigPath)
	}
	if cfg.DBPath == "" {
		t.Fatalf("DBPath must default under the home directory")
	}
}

func TestLoadLayering(t *testing.T) {
	chdir(t, t.TempDir())

	// Layer 1: file.
	err := WriteFile(DefaultConfigFile, File{
		Token:       "file-token",
		BaseURL:     "https://file.example/v1/",
		WaterTarget: 10,
	})
	if err != nil {
		t.Fatalf("writing config: %v", err)
	}

	// Layer 2: env overrides file.
	t.Setenv("PLATEFUL_TOKEN", "env-token")
	t.Setenv("PLATEFUL_TIMEOUT", "45s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Token != "env-token" {
		t.Fatalf("env must beat file: token = %q", cfg.Token)
	}
	if cfg.BaseURL != "https://file.example/v1/" {
		t.Fatalf("file value must survive when env is silent: %q", cfg.BaseURL)
	}
	if cfg.Timeout != 45*time.Second {
		t.Fatalf("env timeout not applied: %v", cfg.Timeout)
	}
	if cfg.WaterTarget != 10 {
		t.Fatalf("file water target not applied: %d", cfg.WaterTarget)
	}

	// Layer 3: flag beats both.
	cfg, err = Load("flag-token")
	if err != nil {
		t.Fatalf("Load with flag: %v", err)
	}
	if cfg.Token != "flag-token" {
		t.Fatalf("flag must beat env and file: %q", cfg.Token)
	}
}

func TestLoadIgnoresMalformedDurations(t *testing.T) {
	chdir(t, t.TempDir())
	if err := WriteFile(DefaultConfigFile, File{Timeout: "not-a-duration"}); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Fatalf("bad duration must fall back to default, got %v", cfg.Timeout)
	}
}

func TestValidateRemote(t *testing.T) {
	cfg := &Config{}
	if err := cfg.ValidateRemote(); err == nil {
		t.Fatalf("missing token must fail validation")
	}
	cfg.Token = "tok"
	if err := cfg.ValidateRemote(); err != nil {
		t.Fatalf("token present: %v", err)
	}
}

func TestRedactedToken(t *testing.T) {
	cfg := &Config{Token: "abcdefgh"}
	got := cfg.RedactedToken()
	if got != "ab****gh" {
		t.Fatalf("RedactedToken = %q", got)
	}
	cfg.Token = "abc"
	if cfg.RedactedToken() != "****" {
		t.Fatalf("short tokens must redact fully")
	}
}

func TestWriteFilePermissions(t *testing.T) {
	chdir(t, t.TempDir())
	if err := WriteFile(DefaultConfigFile, Template()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	info, err := os.Stat(DefaultConfigFile)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("config file must be 0600, got %v", info.Mode().Perm())
	}
}

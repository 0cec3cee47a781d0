// Package config handles loading and resolving plateful configuration.
// Resolution order (first non-empty value wins):
//  1. CLI flags (--token etc.)
//  2. Environment variables (PLATEFUL_*, via envconfig)
//  3. config.json in the current working directory
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultConfigFile  = "config.json"
	DefaultBaseURL     = "https://api.plateful.app/v1/"
	DefaultTimeout     = 30 * time.Second
	DefaultRate        = 5.0
	DefaultWaterTarget = 8

	// envPrefix yields variables like PLATEFUL_TOKEN, PLATEFUL_BASE_URL.
	envPrefix = "plateful"
)

// File is the on-disk representation of config.json.
type File struct {
	BaseURL     string  `json:"base_url"`
	Token       string  `json:"token"`
	Email       string  `json:"email"`
	UID         string  `json:"uid"`
	Timeout     string  `json:"timeout"`
	Rate        float64 `json:"rate"`
	DBPath      string  `json:"db_path"`
	WaterTarget int     `json:"water_target"`
}

// env is the environment layer, processed by envconfig.
type env struct {
	BaseURL     string  `envconfig:"BASE_URL"`
	Token       string  `envconfig:"TOKEN"`
	Email       string  `envconfig:"EMAIL"`
	UID         string  `envconfig:"UID"`
	Timeout     string  `envconfig:"TIMEOUT"`
	Rate        float64 `envconfig:"RATE"`
	DBPath      string  `envconfig:"DB_PATH"`
	WaterTarget int     `envconfig:"WATER_TARGET"`
}

// Config is the fully-resolved runtime configuration.
// All callers use this struct; File and env exist only during loading.
type Config struct {
	BaseURL     string
	Token       string
	Email       string
	UID         string
	Timeout     time.Duration
	Rate        float64
	DBPath      string
	WaterTarget int
	ConfigPath  string // path of the config.json that was loaded (empty if none found)

	// Runtime overrides set from CLI flags after Load()
	Quiet   bool
	Verbose bool
	Debug   bool
}

// Load resolves configuration from all sources.
// flagToken is the value of --token (empty string if not set).
func Load(flagToken string) (*Config, error) {
	cfg := &Config{
		BaseURL:     DefaultBaseURL,
		Timeout:     DefaultTimeout,
		Rate:        DefaultRate,
		WaterTarget: DefaultWaterTarget,
	}

	// Layer 1: config.json (lowest priority)
	if f, path, err := loadFile(); err == nil {
		applyFile(cfg, f, path)
	}

	// Layer 2: environment
	var e env
	if err := envconfig.Process(envPrefix, &e); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	applyEnv(cfg, e)

	// Layer 3: CLI flag (highest priority)
	if flagToken != "" {
		cfg.Token = flagToken
	}

	// Set default DB path if still unset
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.DBPath = filepath.Join(home, ".plateful", "plateful.db")
		}
	}

	return cfg, nil
}

// ValidateRemote returns an error if the fields required for backend calls
// are missing. Local-only commands (meals, water, stats) don't need them.
func (c *Config) ValidateRemote() error {
	if c.Token == "" {
		return errors.New(
			"Backend token not found.\n\n" +
				"Set it one of these ways:\n" +
				"  1. CLI flag:        plateful --token YOUR_TOKEN ...\n" +
				"  2. Environment:     export PLATEFUL_TOKEN=YOUR_TOKEN\n" +
				"  3. config.json:     {\"token\": \"YOUR_TOKEN\"}",
		)
	}
	return nil
}

// RedactedToken returns the token with most characters replaced by asterisks.
// Safe for logging and display.
func (c *Config) RedactedToken() string {
	if len(c.Token) <= 4 {
		return "****"
	}
	return c.Token[:2] + "****" + c.Token[len(c.Token)-2:]
}

// loadFile attempts to read config.json from the current working directory.
func loadFile() (*File, string, error) {
	path, err := filepath.Abs(DefaultConfigFile)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("config.json not found at %s", path)
		}
		return nil, "", fmt.Errorf("reading config.json: %w", err)
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, "", fmt.Errorf("parsing config.json: %w", err)
	}
	return &f, path, nil
}

// applyFile copies values from a parsed File into cfg,
// skipping any fields that are zero/empty.
func applyFile(cfg *Config, f *File, path string) {
	cfg.ConfigPath = path
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.Token != "" {
		cfg.Token = f.Token
	}
	if f.Email != "" {
		cfg.Email = f.Email
	}
	if f.UID != "" {
		cfg.UID = f.UID
	}
	if f.Timeout != "" {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if f.Rate > 0 {
		cfg.Rate = f.Rate
	}
	if f.DBPath != "" {
		cfg.DBPath = f.DBPath
	}
	if f.WaterTarget > 0 {
		cfg.WaterTarget = f.WaterTarget
	}
}

// applyEnv copies non-empty environment values into cfg.
func applyEnv(cfg *Config, e env) {
	if e.BaseURL != "" {
		cfg.BaseURL = e.BaseURL
	}
	if e.Token != "" {
		cfg.Token = e.Token
	}
	if e.Email != "" {
		cfg.Email = e.Email
	}
	if e.UID != "" {
		cfg.UID = e.UID
	}
	if e.Timeout != "" {
		if d, err := time.ParseDuration(e.Timeout); err == nil {
			cfg.Timeout = d
		}
	}
	if e.Rate > 0 {
		cfg.Rate = e.Rate
	}
	if e.DBPath != "" {
		cfg.DBPath = e.DBPath
	}
	if e.WaterTarget > 0 {
		cfg.WaterTarget = e.WaterTarget
	}
}

// Template returns a File populated with sensible defaults, suitable for
// writing an initial config.json via `plateful config init`.
func Template() File {
	return File{
		BaseURL:     DefaultBaseURL,
		Token:       "",
		Timeout:     "30s",
		Rate:        DefaultRate,
		WaterTarget: DefaultWaterTarget,
	}
}

// WriteFile serialises a File to the given path.
func WriteFile(path string, f File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0600)
}

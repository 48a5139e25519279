// Package config holds the user's global stride settings under ~/.stride.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	// APIURL is the base URL of the remote planning service.
	APIURL string `json:"apiUrl,omitempty"`

	// Token, when set, authenticates API requests as a bearer token.
	Token string `json:"token,omitempty"`

	// CurrentPlanID is the plan commands operate on when --plan is not given.
	CurrentPlanID string `json:"currentPlanId,omitempty"`

	// TUI holds optional user preferences for the interactive TUI.
	TUI *TUIConfig `json:"tui,omitempty"`
}

type TUIConfig struct {
	// Glyphs selects the glyph set (e.g. "unicode", "ascii").
	Glyphs string `json:"glyphs,omitempty"`
	// ShowCompleted keeps closed tasks visible in the dashboard.
	ShowCompleted bool `json:"showCompleted,omitempty"`
}

const DefaultAPIURL = "http://localhost:8080"

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.stride).
	if v := strings.TrimSpace(os.Getenv("STRIDE_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".stride"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// Unique temp file name + atomic rename so concurrent CLI and TUI
	// processes cannot clobber each other's writes.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// ResolveAPIURL applies the precedence flag > env > config file > default.
func ResolveAPIURL(flagValue string, cfg *Config) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv("STRIDE_API_URL")); v != "" {
		return v
	}
	if cfg != nil && strings.TrimSpace(cfg.APIURL) != "" {
		return cfg.APIURL
	}
	return DefaultAPIURL
}

// ResolveToken applies the precedence env > config file.
func ResolveToken(cfg *Config) string {
	if v := strings.TrimSpace(os.Getenv("STRIDE_TOKEN")); v != "" {
		return v
	}
	if cfg != nil {
		return cfg.Token
	}
	return ""
}

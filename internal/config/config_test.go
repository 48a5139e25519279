package config

import (
	"testing"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("STRIDE_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIURL != "" || cfg.CurrentPlanID != "" {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("STRIDE_CONFIG_DIR", t.TempDir())

	want := &Config{
		APIURL:        "https://plans.example.com",
		Token:         "tok",
		CurrentPlanID: "p1",
		TUI:           &TUIConfig{Glyphs: "ascii", ShowCompleted: true},
	}
	if err := Save(want); err != nil {
		t.Fatal(err)
	}
	got, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if got.APIURL != want.APIURL || got.Token != want.Token || got.CurrentPlanID != want.CurrentPlanID {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if got.TUI == nil || got.TUI.Glyphs != "ascii" || !got.TUI.ShowCompleted {
		t.Fatalf("tui config lost: %+v", got.TUI)
	}
}

func TestResolveAPIURLPrecedence(t *testing.T) {
	t.Setenv("STRIDE_API_URL", "")

	cfg := &Config{APIURL: "https://from-config"}
	if got := ResolveAPIURL("https://from-flag", cfg); got != "https://from-flag" {
		t.Fatalf("flag should win, got %s", got)
	}

	t.Setenv("STRIDE_API_URL", "https://from-env")
	if got := ResolveAPIURL("", cfg); got != "https://from-env" {
		t.Fatalf("env should beat config, got %s", got)
	}

	t.Setenv("STRIDE_API_URL", "")
	if got := ResolveAPIURL("", cfg); got != "https://from-config" {
		t.Fatalf("config should beat default, got %s", got)
	}
	if got := ResolveAPIURL("", &Config{}); got != DefaultAPIURL {
		t.Fatalf("default expected, got %s", got)
	}
}

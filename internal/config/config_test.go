package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
debug: true
server:
  host: 0.0.0.0
  port: 9090
storage:
  database_path: /tmp/rulebot-test.db
match:
  exact_match_bonus: 50
  similarity_threshold: 0.6
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if !cfg.Debug {
		t.Error("debug not set")
	}
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 9090 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath != "/tmp/rulebot-test.db" {
		t.Errorf("database path = %q", cfg.Storage.DatabasePath)
	}
	if cfg.Match.ExactMatchBonus != 50 {
		t.Errorf("exact bonus = %d, want 50", cfg.Match.ExactMatchBonus)
	}
	if cfg.Match.SimilarityThreshold != 0.6 {
		t.Errorf("similarity threshold = %v, want 0.6", cfg.Match.SimilarityThreshold)
	}
	// Unset match weights fall back to defaults.
	if cfg.Match.KeywordPoints != 12 {
		t.Errorf("keyword points = %d, want default 12", cfg.Match.KeywordPoints)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8080 {
		t.Errorf("server defaults = %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath != "/usr/local/var/rulebot/rulebot.db" {
		t.Errorf("database path = %q", cfg.Storage.DatabasePath)
	}
	if cfg.Match.ExactMatchBonus != 40 ||
		cfg.Match.KeywordPoints != 12 ||
		cfg.Match.RegexPoints != 14 ||
		cfg.Match.SimilarityWeight != 30 ||
		cfg.Match.PriorityWeight != 2 ||
		cfg.Match.SimilarityThreshold != 0.55 {
		t.Errorf("match defaults = %+v", cfg.Match)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestLoad_RelativeDatabasePath(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: ./data/bot.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	want := filepath.Join(filepath.Dir(path), "data/bot.db")
	if cfg.Storage.DatabasePath != want {
		t.Errorf("database path = %q, want %q", cfg.Storage.DatabasePath, want)
	}
}

func TestExpandPath_Home(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got := expandPath("rulebot/bot.db", "/etc/rulebot")
	if got != filepath.Join(home, "rulebot/bot.db") {
		t.Errorf("expandPath = %q", got)
	}
}

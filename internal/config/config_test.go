package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DISCORD_SERVER_ID", "100")
	t.Setenv("DISCORD_COMMAND_PREFIX", "?")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_ANARCHY_CATEGORY", "200")
}

func TestLoadFromEnv(t *testing.T) {
	setRequired(t)
	t.Setenv("DISCORD_FULL_LOG_CHANNEL", "300")
	t.Setenv("DISCORD_JAVA_CHANNELS", "1, 2,,3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GuildID != "100" || cfg.CommandPrefix != "?" || cfg.Anarchy.CategoryID != "200" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Anarchy.FullLogChannelID != "300" || cfg.Anarchy.AnonLogChannelID != "" {
		t.Fatalf("unexpected log channels: %+v", cfg.Anarchy)
	}
	if got := strings.Join(cfg.Reactor.ChannelIDs, "|"); got != "1|2|3" {
		t.Fatalf("expected channel list 1|2|3, got %q", got)
	}
	if cfg.Reactor.Chance != 10 {
		t.Fatalf("expected default chance 10, got %d", cfg.Reactor.Chance)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DISCORD_ANARCHY_CATEGORY", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected error for missing keys")
	}
	if !strings.Contains(err.Error(), "missing token") || !strings.Contains(err.Error(), "missing anarchy category") {
		t.Fatalf("expected both missing keys reported, got %v", err)
	}
}

func TestLoadRejectsNonNumericIDs(t *testing.T) {
	setRequired(t)
	t.Setenv("DISCORD_SERVER_ID", "general")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for non-numeric server id")
	}
}

func TestLoadReportsUnreadableConfigFile(t *testing.T) {
	setRequired(t)
	t.Setenv("CONFIG_PATH", t.TempDir())

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when the config path cannot be read")
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "database_path: /tmp/tags.db\nreactor:\n  trigger_words: [kotlin]\n  chance: 4\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("REACTOR_CHANCE", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabasePath != "/tmp/tags.db" {
		t.Fatalf("expected yaml database path, got %q", cfg.DatabasePath)
	}
	if len(cfg.Reactor.TriggerWords) != 1 || cfg.Reactor.TriggerWords[0] != "kotlin" {
		t.Fatalf("expected yaml trigger words, got %v", cfg.Reactor.TriggerWords)
	}
	if cfg.Reactor.Chance != 5 {
		t.Fatalf("expected env override chance 5, got %d", cfg.Reactor.Chance)
	}
}

func TestBuildLoggerFallsBackToInfo(t *testing.T) {
	logger, err := BuildLogger("verbose")
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	if logger.Core().Enabled(-1) {
		t.Fatalf("debug should be disabled for unknown level")
	}
}

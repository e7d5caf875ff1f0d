package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken  string        `yaml:"discord_token"`
	GuildID       string        `yaml:"guild_id"`
	CommandPrefix string        `yaml:"command_prefix"`
	ModRoleID     string        `yaml:"mod_role_id"`
	DatabasePath  string        `yaml:"database_path"`
	DatabaseURL   string        `yaml:"database_url"`
	RolesPath     string        `yaml:"roles_path"`
	LogLevel      string        `yaml:"log_level"`
	Health        HealthConfig  `yaml:"health"`
	Anarchy       AnarchyConfig `yaml:"anarchy"`
	Reactor       ReactorConfig `yaml:"reactor"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type AnarchyConfig struct {
	CategoryID       string `yaml:"category_id"`
	FullLogChannelID string `yaml:"full_log_channel_id"`
	AnonLogChannelID string `yaml:"anon_log_channel_id"`
}

// ReactorConfig drives the keyword reactor. ChannelIDs may hold channel or
// category IDs; direct messages are always monitored.
type ReactorConfig struct {
	ChannelIDs   []string `yaml:"channel_ids"`
	TriggerWords []string `yaml:"trigger_words"`
	TriggerEmoji string   `yaml:"trigger_emoji"`
	Chance       int      `yaml:"chance"`
	AngerWords   []string `yaml:"anger_words"`
	AngerEmoji   []string `yaml:"anger_emoji"`
}

func DefaultConfig() Config {
	return Config{
		CommandPrefix: "!",
		DatabasePath:  "data.db",
		RolesPath:     "roles.json",
		LogLevel:      "info",
		Health:        HealthConfig{Enabled: false, Addr: ":8080"},
		Reactor: ReactorConfig{
			TriggerWords: []string{"java"},
			TriggerEmoji: "🤮",
			Chance:       10,
			AngerWords:   []string{"java", "best"},
			AngerEmoji:   []string{"😡", "🤬"},
		},
	}
}

// Load reads .env, then the optional YAML file, then the environment.
// Missing required keys are reported together.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.GuildID == "" {
		errs = append(errs, errors.New("missing server id (DISCORD_SERVER_ID)"))
	} else if !isSnowflake(c.GuildID) {
		errs = append(errs, fmt.Errorf("server id %q is not numeric", c.GuildID))
	}
	if c.CommandPrefix == "" {
		errs = append(errs, errors.New("missing prefix (DISCORD_COMMAND_PREFIX)"))
	}
	if c.DiscordToken == "" {
		errs = append(errs, errors.New("missing token (DISCORD_TOKEN)"))
	}
	if c.Anarchy.CategoryID == "" {
		errs = append(errs, errors.New("missing anarchy category (DISCORD_ANARCHY_CATEGORY)"))
	} else if !isSnowflake(c.Anarchy.CategoryID) {
		errs = append(errs, fmt.Errorf("anarchy category %q is not numeric", c.Anarchy.CategoryID))
	}
	for _, id := range []string{c.Anarchy.FullLogChannelID, c.Anarchy.AnonLogChannelID, c.ModRoleID} {
		if id != "" && !isSnowflake(id) {
			errs = append(errs, fmt.Errorf("id %q is not numeric", id))
		}
	}
	if c.Reactor.Chance <= 0 {
		errs = append(errs, fmt.Errorf("reactor chance must be positive, got %d", c.Reactor.Chance))
	}
	if len(c.Reactor.AngerWords) != 0 && len(c.Reactor.AngerWords) != 2 {
		errs = append(errs, fmt.Errorf("reactor anger words need exactly two entries, got %d", len(c.Reactor.AngerWords)))
	}
	return errors.Join(errs...)
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.GuildID = envString("DISCORD_SERVER_ID", cfg.GuildID)
	cfg.CommandPrefix = envString("DISCORD_COMMAND_PREFIX", cfg.CommandPrefix)
	cfg.ModRoleID = envString("DISCORD_MOD_ROLE", cfg.ModRoleID)
	cfg.DatabasePath = envString("DATABASE_PATH", cfg.DatabasePath)
	cfg.DatabaseURL = envString("DATABASE_URL", cfg.DatabaseURL)
	cfg.RolesPath = envString("ROLES_PATH", cfg.RolesPath)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Anarchy.CategoryID = envString("DISCORD_ANARCHY_CATEGORY", cfg.Anarchy.CategoryID)
	cfg.Anarchy.FullLogChannelID = envString("DISCORD_FULL_LOG_CHANNEL", cfg.Anarchy.FullLogChannelID)
	cfg.Anarchy.AnonLogChannelID = envString("DISCORD_ANON_LOG_CHANNEL", cfg.Anarchy.AnonLogChannelID)
	cfg.Reactor.ChannelIDs = envList("DISCORD_JAVA_CHANNELS", cfg.Reactor.ChannelIDs)
	cfg.Reactor.TriggerWords = envList("REACTOR_TRIGGER_WORDS", cfg.Reactor.TriggerWords)
	cfg.Reactor.TriggerEmoji = envString("REACTOR_TRIGGER_EMOJI", cfg.Reactor.TriggerEmoji)
	cfg.Reactor.Chance = envInt("REACTOR_CHANCE", cfg.Reactor.Chance)
	cfg.Reactor.AngerWords = envList("REACTOR_ANGER_WORDS", cfg.Reactor.AngerWords)
	cfg.Reactor.AngerEmoji = envList("REACTOR_ANGER_EMOJI", cfg.Reactor.AngerEmoji)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(strings.ToLower(level)))
	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func isSnowflake(value string) bool {
	_, err := strconv.ParseUint(value, 10, 64)
	return err == nil
}

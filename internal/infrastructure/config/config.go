package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	sharedConfig "github.com/orris-inc/archy/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	Discord   sharedConfig.DiscordConfig   `mapstructure:"discord"`
	AI        sharedConfig.AIConfig        `mapstructure:"ai"`
	Vector    sharedConfig.VectorConfig    `mapstructure:"vector"`
	Archive   sharedConfig.ArchiveConfig   `mapstructure:"archive"`
	Session   sharedConfig.SessionConfig   `mapstructure:"session"`
	RateLimit sharedConfig.RateLimitConfig `mapstructure:"ratelimit"`
	Auth      sharedConfig.AuthConfig      `mapstructure:"auth"`
	Migration sharedConfig.MigrationConfig `mapstructure:"migration"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// configPath overrides the search paths when non-empty.
func Load(env string, configPath string) (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("ARCHY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		v.Set("server.mode", mapEnvToMode(env))
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate("Server", "Database", "Logger", "Archive", "Session", "Migration"); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Validate checks the named top-level sections, or every section when none are given.
func (c *Config) Validate(sections ...string) error {
	all := map[string]any{
		"Server":    c.Server,
		"Database":  c.Database,
		"Logger":    c.Logger,
		"Redis":     c.Redis,
		"Discord":   c.Discord,
		"AI":        c.AI,
		"Vector":    c.Vector,
		"Archive":   c.Archive,
		"Session":   c.Session,
		"RateLimit": c.RateLimit,
		"Auth":      c.Auth,
		"Migration": c.Migration,
	}
	if len(sections) == 0 {
		for name := range all {
			sections = append(sections, name)
		}
	}

	validate := validator.New()
	for _, name := range sections {
		section, ok := all[name]
		if !ok {
			return fmt.Errorf("unknown configuration section %q", name)
		}
		if err := validate.Struct(section); err != nil {
			return fmt.Errorf("invalid %s configuration: %w", strings.ToLower(name), err)
		}
	}
	return nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func mapEnvToMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.database", "archy")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("discord.bot_token", "")
	v.SetDefault("discord.api_base_url", "https://discord.com/api/v10")
	v.SetDefault("discord.gateway_url", "wss://gateway.discord.gg/?v=10&encoding=json")
	v.SetDefault("discord.requests_per_sec", 5)
	v.SetDefault("discord.request_burst", 5)
	v.SetDefault("discord.workers", 4)
	v.SetDefault("discord.role_cache_ttl_seconds", 300)

	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.openai_api_key", "")
	v.SetDefault("ai.openai_base_url", "")
	v.SetDefault("ai.anthropic_api_key", "")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.temperature", 0.4)
	v.SetDefault("ai.max_tokens", 1024)
	v.SetDefault("ai.embedding_model", "text-embedding-3-small")

	v.SetDefault("vector.enabled", false)
	v.SetDefault("vector.dimensions", 1536)
	v.SetDefault("vector.top_k", 5)
	v.SetDefault("vector.query_cache_size", 256)

	v.SetDefault("archive.allowed_roles", []string{
		"Director of Repairs",
		"Asst Director",
		"Director of Maintenance",
		"Manager",
	})
	v.SetDefault("archive.chunk_size", 50)
	v.SetDefault("archive.text_char_budget", 8000*4)
	v.SetDefault("archive.command_timeout_minutes", 30)

	v.SetDefault("session.ttl_minutes", 30)
	v.SetDefault("session.closure_ttl_minutes", 10)

	v.SetDefault("ratelimit.commands_per_minute", 6)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_issuer", "archy")
	v.SetDefault("auth.default_ttl_hours", 24)

	v.SetDefault("migration.strategy", "goose")
}

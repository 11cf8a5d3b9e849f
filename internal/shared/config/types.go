package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port" validate:"min=1,max=65535"`
	Mode    string `mapstructure:"mode" validate:"oneof=debug release test"`
	BaseURL string `mapstructure:"base_url"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host" validate:"required"`
	Port            int    `mapstructure:"port" validate:"min=1,max=65535"`
	Username        string `mapstructure:"username" validate:"required"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database" validate:"required"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// GetDSN returns a libpq key/value DSN for the configured database.
func (d *DatabaseConfig) GetDSN() string {
	return d.dsnFor(d.Database)
}

// GetAdminDSN points at the maintenance database, used to create the target database.
func (d *DatabaseConfig) GetAdminDSN() string {
	return d.dsnFor("postgres")
}

func (d *DatabaseConfig) dsnFor(database string) string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.Username, d.Password, database, sslMode)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type DiscordConfig struct {
	BotToken       string  `mapstructure:"bot_token" validate:"required"`
	APIBaseURL     string  `mapstructure:"api_base_url" validate:"required,url"`
	GatewayURL     string  `mapstructure:"gateway_url" validate:"required"`
	RequestsPerSec float64 `mapstructure:"requests_per_sec" validate:"gt=0"`
	RequestBurst   int     `mapstructure:"request_burst" validate:"min=1"`
	Workers        int     `mapstructure:"workers" validate:"min=1"`
	RoleCacheTTL   int     `mapstructure:"role_cache_ttl_seconds"`
}

type AIConfig struct {
	Provider        string  `mapstructure:"provider" validate:"oneof=openai anthropic"`
	OpenAIAPIKey    string  `mapstructure:"openai_api_key"`
	OpenAIBaseURL   string  `mapstructure:"openai_base_url"`
	AnthropicAPIKey string  `mapstructure:"anthropic_api_key"`
	Model           string  `mapstructure:"model" validate:"required"`
	Temperature     float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxTokens       int     `mapstructure:"max_tokens" validate:"min=1"`
	EmbeddingModel  string  `mapstructure:"embedding_model"`
}

type VectorConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	Dimensions     int  `mapstructure:"dimensions"`
	TopK           int  `mapstructure:"top_k" validate:"min=1"`
	QueryCacheSize int  `mapstructure:"query_cache_size"`
}

type ArchiveConfig struct {
	AllowedRoles          []string `mapstructure:"allowed_roles" validate:"min=1"`
	ChunkSize             int      `mapstructure:"chunk_size" validate:"min=1"`
	TextCharBudget        int      `mapstructure:"text_char_budget" validate:"min=1"`
	CommandTimeoutMinutes int      `mapstructure:"command_timeout_minutes" validate:"min=1"`
}

func (a *ArchiveConfig) CommandTimeout() time.Duration {
	return time.Duration(a.CommandTimeoutMinutes) * time.Minute
}

type SessionConfig struct {
	TTLMinutes        int `mapstructure:"ttl_minutes" validate:"min=1"`
	ClosureTTLMinutes int `mapstructure:"closure_ttl_minutes" validate:"min=1"`
}

func (s *SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

func (s *SessionConfig) ClosureTTL() time.Duration {
	return time.Duration(s.ClosureTTLMinutes) * time.Minute
}

type RateLimitConfig struct {
	CommandsPerMinute int `mapstructure:"commands_per_minute"`
}

type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenIssuer     string `mapstructure:"token_issuer"`
	DefaultTTLHours int    `mapstructure:"default_ttl_hours"`
}

type MigrationConfig struct {
	Strategy string `mapstructure:"strategy" validate:"oneof=goose auto"`
}

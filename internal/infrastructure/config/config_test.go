package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "goose", cfg.Migration.Strategy)
	assert.Equal(t, 50, cfg.Archive.ChunkSize)
	assert.Equal(t, []string{"Director of Repairs", "Asst Director", "Director of Maintenance", "Manager"}, cfg.Archive.AllowedRoles)
	assert.Equal(t, 30*60.0, cfg.Session.TTL().Seconds())
	assert.Same(t, cfg, Get())
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	t.Setenv("ARCHY_DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("ARCHY_AUTH_JWT_SECRET", "a-very-long-jwt-secret")
	t.Setenv("ARCHY_RATELIMIT_COMMANDS_PER_MINUTE", "12")

	cfg, err := Load("", writeConfig(t, "logger:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "bot-token", cfg.Discord.BotToken)
	assert.Equal(t, "a-very-long-jwt-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 12, cfg.RateLimit.CommandsPerMinute)
	require.NoError(t, cfg.Validate("Discord", "Auth"))
}

func TestLoad_EnvSelectsMode(t *testing.T) {
	cfg, err := Load("production", writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "release", cfg.Server.Mode)
}

func TestLoad_InvalidSection(t *testing.T) {
	_, err := Load("", writeConfig(t, "migration:\n  strategy: flyway\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid migration configuration")
}

func TestValidate_ServerSectionsRequireSecrets(t *testing.T) {
	cfg, err := Load("", writeConfig(t, ""))
	require.NoError(t, err)

	assert.Error(t, cfg.Validate("Discord"))
	assert.Error(t, cfg.Validate("Auth"))
	assert.Error(t, cfg.Validate("Nope"))
}

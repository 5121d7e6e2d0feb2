package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "airports.db", cfg.Database.Name)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, DefaultDataURL, cfg.Airports.DataURL)
	assert.Equal(t, []string{"default-api-key"}, cfg.Auth.ValidAPIKeys)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.False(t, cfg.LLM.Enabled())
	assert.Equal(t, 15*time.Second, cfg.Server.RequestTimeout)
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("API_PORT=4000\nVALID_API_KEYS=a,b\n"), 0o600))
	t.Setenv("VALID_API_KEYS", " k1 , k2 ,, ")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Auth.ValidAPIKeys)
	assert.Equal(t, 6380, cfg.Redis.Port)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 3000, RequestTimeout: 10 * time.Second, ImportTimeout: time.Minute},
			Database: DatabaseConfig{Type: "sqlite", Name: "x.db"},
			Cache:    CacheConfig{Backend: "memory"},
			Auth:     AuthConfig{ValidAPIKeys: []string{"k"}},
		}
	}

	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"unknown db", func(c *Config) { c.Database.Type = "mysql" }},
		{"postgres without url", func(c *Config) { c.Database.Type = "postgres" }},
		{"unknown cache", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"no api keys", func(c *Config) { c.Auth.ValidAPIKeys = nil }},
		{"llm timeout too long", func(c *Config) {
			c.LLM = LLMConfig{APIKey: "sk", Timeout: 10 * time.Second, MaxConcurrency: 1, RatePerSecond: 1}
		}},
		{"llm zero concurrency", func(c *Config) {
			c.LLM = LLMConfig{APIKey: "sk", Timeout: time.Second, RatePerSecond: 1}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

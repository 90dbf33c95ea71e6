package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfigFile(t, ""))
		require.NoError(t, err)

		assert.Equal(t, ":8080", cfg.Server.Address)
		assert.Equal(t, "http://localhost:3000", cfg.Server.AllowedOrigin)
		assert.Equal(t, "127.0.0.1", cfg.Database.Host)
		assert.Equal(t, 3306, cfg.Database.Port)
		assert.Equal(t, "phrasebook", cfg.Database.Database)
		assert.Equal(t, "phrasebook", cfg.Database.Username)
		assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	})

	t.Run("config file overrides defaults", func(t *testing.T) {
		cfg, err := Load(writeConfigFile(t, `
server:
  address: ":9090"
database:
  host: db.internal
  port: 3307
  username: app
  max_open_conns: 10
`))
		require.NoError(t, err)

		assert.Equal(t, ":9090", cfg.Server.Address)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 3307, cfg.Database.Port)
		assert.Equal(t, "app", cfg.Database.Username)
		assert.Equal(t, 10, cfg.Database.MaxOpenConns)
	})

	t.Run("secrets come from the environment", func(t *testing.T) {
		t.Setenv("PHRASEBOOK_DB_PASSWORD", "secret")
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("OPENAI_MODEL", "gpt-4o")

		cfg, err := Load(writeConfigFile(t, ""))
		require.NoError(t, err)

		assert.Equal(t, "secret", cfg.Database.Password)
		assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
		assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	})

	t.Run("invalid port", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, `
database:
  port: 0
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("missing database name", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, `
database:
  database: ""
`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
	})

	t.Run("unreadable config file", func(t *testing.T) {
		_, err := Load(writeConfigFile(t, "server: [unbalanced"))
		assert.Error(t, err)
	})
}

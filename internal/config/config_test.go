package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: postgres
  host: db.internal
  port: 5432
  user: leafsense
  password: secret
  name: leafsense
ai:
  provider: gemini
  apiKey: test-key
  model: gemini-1.5-flash
  fragmentTimeoutSeconds: 15
auth:
  apiKeys:
    acme: key-acme
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 15*time.Second, cfg.FragmentTimeout())
	assert.Equal(t, 300*time.Second, cfg.AnalysisTimeout())
	assert.Equal(t, "key-acme", cfg.Auth.APIKeys["acme"])
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, 30*time.Second, cfg.FragmentTimeout())
	assert.Equal(t, 30, cfg.RateLimit.Capacity)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDSNHelpers(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Host = "db.internal"
	cfg.Database.Port = 3306
	cfg.Database.User = "leafsense"
	cfg.Database.Password = "secret"
	cfg.Database.Name = "leafsense"

	assert.Equal(t,
		"leafsense:secret@tcp(db.internal:3306)/leafsense?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.MySQLDSN())
	assert.Equal(t,
		"host=db.internal port=3306 user=leafsense password=secret dbname=leafsense sslmode=disable",
		cfg.PostgresDSN())
}

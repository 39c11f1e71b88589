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

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, ProviderFunctions, cfg.Source.Provider)
	assert.Equal(t, "analyze-with-ai", cfg.Functions.AnalysisFunction)
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("DATABASE_PASSWORD", "p@ss word")
	path := writeConfig(t, `
server:
  port: 9090
  allowedOrigins: ["https://example.org"]
  apiKeys:
    web: secret
  sessionTTL: 5m
source:
  provider: postgres
  timeout: 15s
explainer:
  provider: openai
database:
  host: db
  user: reader
  name: corpus
openai:
  apiKey: sk-file
  model: gpt-4o
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://example.org"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, map[string]string{"web": "secret"}, cfg.Server.APIKeys)
	assert.Equal(t, 5*time.Minute, cfg.Server.SessionTTL)
	assert.Equal(t, 15*time.Second, cfg.Source.Timeout)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey, "env wins over file")
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, 5.0, cfg.Server.RateLimit.RPS, "defaults survive partial files")
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "postgres://reader:p%40ss%20word@db:5432/corpus?sslmode=disable", cfg.PostgresDSN())
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	withFunctions := func(c *Config) { c.Functions.BaseURL = "https://x.supabase.co" }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults need base url", func(c *Config) {}, "functions.baseURL"},
		{"functions ok", withFunctions, ""},
		{"bad port", func(c *Config) { withFunctions(c); c.Server.Port = 0 }, "server.port"},
		{"unknown source", func(c *Config) { withFunctions(c); c.Source.Provider = "ipfs" }, "unknown source provider"},
		{"unknown explainer", func(c *Config) { withFunctions(c); c.Explainer.Provider = "llama" }, "unknown explainer provider"},
		{"etherscan needs key", func(c *Config) { withFunctions(c); c.Source.Provider = ProviderEtherscan }, "etherscan.apiKey"},
		{"mysql needs host", func(c *Config) { withFunctions(c); c.Source.Provider = ProviderMySQL }, "database.host"},
		{"minio needs endpoint", func(c *Config) { withFunctions(c); c.Source.Provider = ProviderMinio }, "minio.endpoint"},
		{"anthropic needs key", func(c *Config) { withFunctions(c); c.Explainer.Provider = ProviderAnthropic }, "anthropic.apiKey"},
		{"negative rps", func(c *Config) { withFunctions(c); c.Server.RateLimit.RPS = -1 }, "rps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := Default()
	cfg.Database = DatabaseConfig{Host: "db", User: "u", Password: "p", Name: "corpus"}
	assert.Equal(t, "u:p@tcp(db:3306)/corpus?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
}

func TestInitLogger(t *testing.T) {
	log, err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = InitLogger(LogConfig{Level: "loud"})
	assert.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadFrom_DefaultsAndEnvExpansion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
app:
  name: ${IDEA_TEST_APP_NAME:fallback-name}
llm:
  default_provider: openai
  providers:
    openai:
      kind: openai
      api_key: ${IDEA_TEST_API_KEY}
      model: ${IDEA_TEST_MODEL:gpt-4o-mini}
`)
	t.Setenv("APP_ENV", "unittest")
	t.Setenv("IDEA_TEST_API_KEY", "sk-test")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "fallback-name", cfg.App.Name)
	assert.Equal(t, "sk-test", cfg.LLM.Providers["openai"].APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Providers["openai"].Model)

	// 未在文件中出现的配置使用默认值
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, 120*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, 3*time.Minute, cfg.Session.InFlightTTL)
	assert.Equal(t, 24*time.Hour, cfg.Session.BatchTTL)
	assert.Equal(t, 10000, cfg.Session.MemoryCapacity)
	assert.False(t, cfg.Cache.Redis.Enabled)
	assert.Equal(t, "idea_forge", cfg.Cache.Redis.KeyPrefix)
	assert.Equal(t, 6, cfg.Security.RateLimit.GenerationsPerMinute)
	assert.Contains(t, cfg.Security.CORS.ExposedHeaders, "Content-Disposition")
	assert.Equal(t, 12*time.Hour, cfg.Security.CORS.MaxAge)
	assert.False(t, cfg.Security.CORS.AllowCredentials)
}

func TestLoadFrom_EnvironmentOverlay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
app:
  env: development
generation:
  timeout: 60s
`)
	writeFile(t, dir, "config.staging.yaml", `
generation:
  timeout: 90s
`)
	t.Setenv("APP_ENV", "staging")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Generation.Timeout)
}

func TestLoadFrom_MissingBaseFile(t *testing.T) {
	_, err := LoadFrom(t.TempDir())
	assert.Error(t, err)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("IDEA_TEST_SET", "value")

	assert.Equal(t, "value", expandEnv("${IDEA_TEST_SET}"))
	assert.Equal(t, "value", expandEnv("${IDEA_TEST_SET:other}"))
	assert.Equal(t, "dflt", expandEnv("${IDEA_TEST_UNSET_VAR:dflt}"))
	assert.Equal(t, "", expandEnv("${IDEA_TEST_UNSET_VAR:}"))
	assert.Equal(t, "${IDEA_TEST_UNSET_VAR}", expandEnv("${IDEA_TEST_UNSET_VAR}"))
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.Generation.Timeout = 2 * time.Minute
	cfg.Session.InFlightTTL = time.Minute
	assert.Error(t, cfg.Validate())

	cfg.Session.InFlightTTL = 3 * time.Minute
	assert.NoError(t, cfg.Validate())

	cfg.LLM.Providers = map[string]ProviderConfig{"openai": {Kind: "openai"}}
	cfg.LLM.FallbackChain = []string{"openai", "missing"}
	assert.Error(t, cfg.Validate())

	cfg.LLM.FallbackChain = []string{"openai"}
	assert.NoError(t, cfg.Validate())
}

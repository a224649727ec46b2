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
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfig_MergesEnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "db:\n  host: base-host\n  port: 5432\nmq:\n  url: amqp://base\n")
	writeFile(t, dir, "production.yaml", "db:\n  host: prod-host\n")

	cfgMap, err := LoadConfig("production", dir)
	require.NoError(t, err)

	var out struct {
		DB DBConfig `yaml:"db"`
		MQ MQConfig `yaml:"mq"`
	}
	require.NoError(t, Decode(cfgMap, &out))
	assert.Equal(t, "prod-host", out.DB.Host)
	assert.Equal(t, 5432, out.DB.Port)
	assert.Equal(t, "amqp://base", out.MQ.URL)
}

func TestLoadConfig_MissingBase(t *testing.T) {
	_, err := LoadConfig("local", t.TempDir())
	assert.Error(t, err)
}

func TestLoadConfig_SecretsSubstitution(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "llm:\n  api_key: ${MAILTRIAGE_TEST_KEY}\n  model: ${MAILTRIAGE_UNSET_VAR}\n")
	writeFile(t, dir, "secrets.env", "# comment\nMAILTRIAGE_TEST_KEY=\"s3cret\"\n")

	cfgMap, err := LoadConfig("", dir)
	require.NoError(t, err)

	var out struct {
		LLM LLMConfig `yaml:"llm"`
	}
	require.NoError(t, Decode(cfgMap, &out))
	assert.Equal(t, "s3cret", out.LLM.APIKey)
	assert.Equal(t, "${MAILTRIAGE_UNSET_VAR}", out.LLM.Model)
}

func TestLoadConfig_SystemEnvWinsOverSecrets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "llm:\n  api_key: ${MAILTRIAGE_TEST_KEY}\n")
	writeFile(t, dir, "secrets.env", "MAILTRIAGE_TEST_KEY=from-file\n")
	t.Setenv("MAILTRIAGE_TEST_KEY", "from-env")

	cfgMap, err := LoadConfig("local", dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfgMap["llm"].(map[string]interface{})["api_key"])
}

func TestOverrideLLMFromEnv(t *testing.T) {
	cfg := LLMConfig{BaseURL: "http://a", Model: "m", Timeout: time.Second}
	t.Setenv("LLM_BASE_URL", "http://b")
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("HF_TOKEN", "hf-token")
	t.Setenv("LLM_TIMEOUT", "5s")

	OverrideLLMFromEnv(&cfg)
	assert.Equal(t, "http://b", cfg.BaseURL)
	assert.Equal(t, "m", cfg.Model)
	assert.Equal(t, "hf-token", cfg.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestMergeMaps_Nested(t *testing.T) {
	dst := map[string]interface{}{"a": map[string]interface{}{"x": 1, "y": 2}, "b": 1}
	src := map[string]interface{}{"a": map[string]interface{}{"y": 3}, "c": 4}

	got := mergeMaps(dst, src)
	assert.Equal(t, map[string]interface{}{"x": 1, "y": 3}, got["a"])
	assert.Equal(t, 1, got["b"])
	assert.Equal(t, 4, got["c"])
}

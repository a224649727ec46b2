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

const baseYAML = `
llm:
  base_url: http://localhost:11434
  model: llama3.2
  api_key: ${HF_TOKEN}
prompts:
  file: prompts.json
email_prompt: v1
generation_prompt: v1
downstream:
  mode: log
db:
  host: localhost
  port: 5432
`

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"HF_TOKEN", "LLM_API_KEY", "LLM_MODEL", "LLM_BASE_URL", "LLM_TIMEOUT",
		"EMAIL_PROMPT", "GENERATION_PROMPT", "PROMPTS_FILE", "DOWNSTREAM_MODE",
		"DB_HOST", "DB_PORT", "MQ_URL", "REDIS_ADDR", "METRICS_ADDR",
		"LOG_LEVEL", "LOG_DEVELOPMENT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", baseYAML)

	cfg, err := Load("local", dir)
	require.NoError(t, err)

	assert.Equal(t, "llama3.2", cfg.LLM.Model)
	assert.Equal(t, "v1", cfg.EmailPrompt)
	assert.Equal(t, "prompts.json", cfg.Prompts.File)
	assert.Equal(t, 20, cfg.Generation.ClassifyTokens)
	assert.Equal(t, 200, cfg.Generation.ResponseTokens)
	assert.Equal(t, 30*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, "email.received.triage.q", cfg.Worker.Queue)
	assert.Equal(t, time.Hour, cfg.Worker.DedupTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	// unresolved placeholders stay as written
	assert.Equal(t, "${HF_TOKEN}", cfg.LLM.APIKey)
}

func TestLoad_EnvFileAndSecrets(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", baseYAML)
	writeFile(t, dir, "production.yaml", `
email_prompt: v2
generation:
  timeout: 5s
  response_tokens: 120
downstream:
  mode: mq
`)
	writeFile(t, dir, "secrets.env", "HF_TOKEN=hf_secret\n")

	cfg, err := Load("production", dir)
	require.NoError(t, err)

	assert.Equal(t, "v2", cfg.EmailPrompt)
	assert.Equal(t, "v1", cfg.GenerationPrompt)
	assert.Equal(t, 5*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, 120, cfg.Generation.ResponseTokens)
	assert.Equal(t, DownstreamMQ, cfg.Downstream.Mode)
	assert.Equal(t, "hf_secret", cfg.LLM.APIKey)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", baseYAML)
	t.Setenv("LLM_MODEL", "mistral")
	t.Setenv("GENERATION_PROMPT", "v3")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := Load("local", dir)
	require.NoError(t, err)

	assert.Equal(t, "mistral", cfg.LLM.Model)
	assert.Equal(t, "v3", cfg.GenerationPrompt)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.True(t, cfg.Log.Development)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
downstream:
  mode: smtp
`)

	_, err := Load("local", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email_prompt is required")
	assert.Contains(t, err.Error(), "generation_prompt is required")
	assert.Contains(t, err.Error(), "llm.model is required")
	assert.Contains(t, err.Error(), `got "smtp"`)
}

func TestLoad_MissingBase(t *testing.T) {
	_, err := Load("local", t.TempDir())
	assert.Error(t, err)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"mailtriage/pkg/config"
)

const (
	DownstreamLog = "log"
	DownstreamMQ  = "mq"
)

type PromptsConfig struct {
	File string `yaml:"file"`
}

// GenerationConfig bounds the two generation calls made per email.
type GenerationConfig struct {
	ClassifyTokens int           `yaml:"classify_tokens"`
	ResponseTokens int           `yaml:"response_tokens"`
	Timeout        time.Duration `yaml:"timeout"`
}

type DownstreamConfig struct {
	Mode string `yaml:"mode"`
}

type WorkerConfig struct {
	Queue    string        `yaml:"queue"`
	DedupTTL time.Duration `yaml:"dedup_ttl"`
}

type LogConfig struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level"`
}

type Config struct {
	LLM              config.LLMConfig     `yaml:"llm"`
	Prompts          PromptsConfig        `yaml:"prompts"`
	EmailPrompt      string               `yaml:"email_prompt"`
	GenerationPrompt string               `yaml:"generation_prompt"`
	Generation       GenerationConfig     `yaml:"generation"`
	Downstream       DownstreamConfig     `yaml:"downstream"`
	Worker           WorkerConfig         `yaml:"worker"`
	DB               config.DBConfig      `yaml:"db"`
	MQ               config.MQConfig      `yaml:"mq"`
	Redis            config.RedisConfig   `yaml:"redis"`
	Metrics          config.MetricsConfig `yaml:"metrics"`
	Log              LogConfig            `yaml:"log"`
}

// Load reads <dir>/base.yaml and <dir>/<env>.yaml, then applies environment
// overrides and defaults.
func Load(env, dir string) (*Config, error) {
	cfgMap, err := config.LoadConfig(env, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var cfg Config
	if err := config.Decode(cfgMap, &cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖（优先级最高）
	config.OverrideLLMFromEnv(&cfg.LLM)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideMetricsFromEnv(&cfg.Metrics)
	overrideAppFromEnv(&cfg)

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv uses CONFIG_ENV and CONFIG_DIR to locate the files.
func LoadFromEnv() (*Config, error) {
	return Load(config.GetConfigEnv(), config.GetEnv("CONFIG_DIR", "config"))
}

func overrideAppFromEnv(cfg *Config) {
	if v := os.Getenv("EMAIL_PROMPT"); v != "" {
		cfg.EmailPrompt = v
	}
	if v := os.Getenv("GENERATION_PROMPT"); v != "" {
		cfg.GenerationPrompt = v
	}
	if v := os.Getenv("PROMPTS_FILE"); v != "" {
		cfg.Prompts.File = v
	}
	if v := os.Getenv("DOWNSTREAM_MODE"); v != "" {
		cfg.Downstream.Mode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.Development = b
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Prompts.File == "" {
		c.Prompts.File = "config/prompts.json"
	}
	if c.Generation.ClassifyTokens <= 0 {
		c.Generation.ClassifyTokens = 20
	}
	if c.Generation.ResponseTokens <= 0 {
		c.Generation.ResponseTokens = 200
	}
	if c.Generation.Timeout <= 0 {
		c.Generation.Timeout = 30 * time.Second
	}
	if c.Downstream.Mode == "" {
		c.Downstream.Mode = DownstreamLog
	}
	if c.Worker.Queue == "" {
		c.Worker.Queue = "email.received.triage.q"
	}
	if c.Worker.DedupTTL <= 0 {
		c.Worker.DedupTTL = time.Hour
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9090"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.EmailPrompt == "" {
		errs = append(errs, errors.New("email_prompt is required"))
	}
	if c.GenerationPrompt == "" {
		errs = append(errs, errors.New("generation_prompt is required"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	switch c.Downstream.Mode {
	case DownstreamLog, DownstreamMQ:
	default:
		errs = append(errs, fmt.Errorf("downstream.mode must be %q or %q, got %q", DownstreamLog, DownstreamMQ, c.Downstream.Mode))
	}
	return errors.Join(errs...)
}

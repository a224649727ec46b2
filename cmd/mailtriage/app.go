package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mailtriage/internal/config"
	"mailtriage/internal/downstream"
	"mailtriage/internal/llm"
	"mailtriage/internal/prompt"
	"mailtriage/internal/service"
	"mailtriage/pkg/logger"
	"mailtriage/pkg/mq"
)

// app holds what every command builds from the configuration. Nothing is
// created at import time.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	templates prompt.Templates
	generator *llm.Client
}

func newApp() (*app, error) {
	cfg, err := config.Load(configEnv, configDir)
	if err != nil {
		return nil, err
	}
	log := logger.NewLogger(cfg.Log.Development, cfg.Log.Level)

	store, err := prompt.Load(cfg.Prompts.File)
	if err != nil {
		return nil, err
	}
	templates, err := store.Select(cfg.EmailPrompt, cfg.GenerationPrompt)
	if err != nil {
		return nil, err
	}

	gen := llm.NewClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		Timeout: cfg.LLM.Timeout,
	}, log)

	log.Info("Configuration loaded",
		zap.String("env", configEnv),
		zap.String("model", cfg.LLM.Model),
		zap.String("email_prompt", cfg.EmailPrompt),
		zap.String("generation_prompt", cfg.GenerationPrompt),
		zap.String("downstream", cfg.Downstream.Mode),
	)

	return &app{cfg: cfg, logger: log, templates: templates, generator: gen}, nil
}

// services returns the downstream side for the configured mode and a
// cleanup func.
func (a *app) services() (downstream.Services, func(), error) {
	if a.cfg.Downstream.Mode != config.DownstreamMQ {
		return downstream.NewLogServices(a.logger), func() {}, nil
	}

	pub, err := mq.NewPublisher(a.cfg.MQ.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("downstream publisher: %w", err)
	}
	return downstream.NewEventServices(pub, a.logger), pub.Close, nil
}

func (a *app) pipeline(svc downstream.Services) *service.Pipeline {
	gen := a.cfg.Generation
	classifier := service.NewClassifier(a.generator, a.templates.Classification, service.GenerationOptions{
		MaxNewTokens: gen.ClassifyTokens,
		Timeout:      gen.Timeout,
	}, a.logger)
	responder := service.NewResponder(a.generator, a.templates.Response, service.GenerationOptions{
		MaxNewTokens: gen.ResponseTokens,
		Timeout:      gen.Timeout,
	}, a.logger)
	dispatcher := service.NewDispatcher(svc, svc, a.logger)

	return service.NewPipeline(classifier, responder, svc, dispatcher, a.logger)
}

// checkGenerator warns early when the model endpoint is down. Emails are
// still processed and fail individually.
func (a *app) checkGenerator(ctx context.Context) {
	if err := a.generator.Healthy(ctx); err != nil {
		a.logger.Warn("Generation endpoint not reachable", zap.String("base_url", a.cfg.LLM.BaseURL), zap.Error(err))
	}
}

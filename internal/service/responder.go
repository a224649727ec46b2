package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mailtriage/internal/llm"
	"mailtriage/internal/model"
	"mailtriage/pkg/logger"
)

const DefaultResponseTokens = 200

type Responder struct {
	gen    llm.Generator
	system string
	opts   GenerationOptions
	logger *zap.Logger
}

func NewResponder(gen llm.Generator, systemPrompt string, opts GenerationOptions, logger *zap.Logger) *Responder {
	if opts.MaxNewTokens <= 0 {
		opts.MaxNewTokens = DefaultResponseTokens
	}
	return &Responder{
		gen:    gen,
		system: systemPrompt,
		opts:   opts,
		logger: logger,
	}
}

// GenerateResponse drafts the reply for an already classified email. An
// empty draft counts as a failure.
func (r *Responder) GenerateResponse(ctx context.Context, email model.Email, category model.Category) (string, error) {
	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: r.system},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Subject: %s, Body: %s, Category: %s", email.Subject, email.Body, category)},
	}

	text, err := complete(ctx, r.gen, StageRespond, msgs, r.opts)
	if err == nil && strings.TrimSpace(text) == "" {
		err = llm.ErrEmptyCompletion
	}
	if err != nil {
		logger.WithTrace(ctx, r.logger).Error("Response generation failed",
			zap.String("email_id", email.ID),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %w", ErrResponseFailed, err)
	}

	logger.WithTrace(ctx, r.logger).Debug("Response generated",
		zap.String("email_id", email.ID),
		zap.Int("length", len(text)),
	)
	return text, nil
}

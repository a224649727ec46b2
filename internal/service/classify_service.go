package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mailtriage/internal/llm"
	"mailtriage/internal/model"
	"mailtriage/pkg/logger"
)

const DefaultClassifyTokens = 20

type Classifier struct {
	gen    llm.Generator
	system string
	opts   GenerationOptions
	logger *zap.Logger
}

func NewClassifier(gen llm.Generator, systemPrompt string, opts GenerationOptions, logger *zap.Logger) *Classifier {
	if opts.MaxNewTokens <= 0 {
		opts.MaxNewTokens = DefaultClassifyTokens
	}
	return &Classifier{
		gen:    gen,
		system: systemPrompt,
		opts:   opts,
		logger: logger,
	}
}

// Classify asks the model for a label and maps it onto the category set.
// Labels outside the set become other. A failed generation call returns
// ErrClassificationFailed and no category.
func (c *Classifier) Classify(ctx context.Context, email model.Email) (model.Category, error) {
	msgs := []llm.Message{
		{Role: llm.RoleSystem, Content: c.system},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Subject: %s, Body: %s", email.Subject, email.Body)},
	}

	label, err := complete(ctx, c.gen, StageClassify, msgs, c.opts)
	if err != nil {
		logger.WithTrace(ctx, c.logger).Error("Classification failed",
			zap.String("email_id", email.ID),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	}

	category := model.ParseCategory(label)
	logger.WithTrace(ctx, c.logger).Info("Email classified",
		zap.String("email_id", email.ID),
		zap.String("label", label),
		zap.String("category", category.String()),
	)
	return category, nil
}

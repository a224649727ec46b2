package downstream

import (
	"context"

	"go.uber.org/zap"

	"mailtriage/pkg/logger"
)

// LogServices only records what would have been done.
type LogServices struct {
	logger *zap.Logger
}

func NewLogServices(logger *zap.Logger) *LogServices {
	return &LogServices{logger: logger}
}

func (s *LogServices) SendComplaintResponse(ctx context.Context, to, body string) error {
	logger.WithTrace(ctx, s.logger).Info("Sending complaint response",
		zap.String("to", to),
		zap.Int("body_len", len(body)),
	)
	return nil
}

func (s *LogServices) SendStandardResponse(ctx context.Context, to, body string) error {
	logger.WithTrace(ctx, s.logger).Info("Sending standard response",
		zap.String("to", to),
		zap.Int("body_len", len(body)),
	)
	return nil
}

func (s *LogServices) CreateUrgentTicket(ctx context.Context, sender, category, details string) error {
	logger.WithTrace(ctx, s.logger).Info("Creating urgent ticket",
		zap.String("sender", sender),
		zap.String("category", category),
		zap.Int("context_len", len(details)),
	)
	return nil
}

func (s *LogServices) CreateSupportTicket(ctx context.Context, sender, details string) error {
	logger.WithTrace(ctx, s.logger).Info("Creating support ticket",
		zap.String("sender", sender),
		zap.Int("context_len", len(details)),
	)
	return nil
}

func (s *LogServices) LogFeedback(ctx context.Context, sender, feedback string) error {
	logger.WithTrace(ctx, s.logger).Info("Logging feedback",
		zap.String("sender", sender),
		zap.Int("feedback_len", len(feedback)),
	)
	return nil
}

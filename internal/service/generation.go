package service

import (
	"context"
	"time"

	"mailtriage/internal/llm"
	"mailtriage/pkg/metrics"
)

// GenerationOptions bound one generation call.
type GenerationOptions struct {
	MaxNewTokens int
	// Timeout applies per call; zero means no extra deadline.
	Timeout time.Duration
}

// complete runs one generation call and returns the final message content.
// call labels the latency metric.
func complete(ctx context.Context, gen llm.Generator, call string, msgs []llm.Message, opts GenerationOptions) (string, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	transcript, err := gen.Generate(ctx, msgs, opts.MaxNewTokens)
	if err != nil {
		metrics.RecordGenerationLatency(call, "error", time.Since(start))
		return "", err
	}
	metrics.RecordGenerationLatency(call, "success", time.Since(start))

	return llm.Completion(transcript)
}

package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var ErrEmptyCompletion = errors.New("generation returned no completion")

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator is the text-generation capability. The returned transcript ends
// with the model's completion.
type Generator interface {
	Generate(ctx context.Context, messages []Message, maxNewTokens int) ([]Message, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, messages []Message, maxNewTokens int) ([]Message, error)

func (f GeneratorFunc) Generate(ctx context.Context, messages []Message, maxNewTokens int) ([]Message, error) {
	return f(ctx, messages, maxNewTokens)
}

// Completion returns the content of the final message of a transcript.
func Completion(transcript []Message) (string, error) {
	if len(transcript) == 0 {
		return "", ErrEmptyCompletion
	}
	return transcript[len(transcript)-1].Content, nil
}

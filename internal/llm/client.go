package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"mailtriage/pkg/circuitbreaker"
	"mailtriage/pkg/metrics"
	"mailtriage/pkg/trace"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultTimeout = 60 * time.Second
	maxErrorBody   = 512
)

type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	// Timeout bounds one HTTP round trip.
	Timeout time.Duration
	Breaker circuitbreaker.Config
}

// Client talks to an Ollama-compatible /api/chat endpoint.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClientWithHTTP(cfg, &http.Client{Timeout: timeout}, logger)
}

func NewClientWithHTTP(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	breakerCfg := cfg.Breaker
	userHook := breakerCfg.OnStateChange
	breakerCfg.OnStateChange = func(from, to circuitbreaker.State) {
		metrics.RecordBreakerTransition(from.String(), to.String())
		logger.Warn("Generation circuit breaker state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
		if userHook != nil {
			userHook(from, to)
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		cb:         circuitbreaker.New(breakerCfg),
		logger:     logger,
	}
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message    Message `json:"message"`
	Done       bool    `json:"done"`
	DoneReason string  `json:"done_reason"`
}

// Generate sends the transcript and returns it extended with the
// assistant's reply.
func (c *Client) Generate(ctx context.Context, messages []Message, maxNewTokens int) ([]Message, error) {
	var reply Message

	err := c.cb.Execute(ctx, func(ctx context.Context) error {
		var err error
		reply, err = c.chat(ctx, messages, maxNewTokens)
		return err
	})
	if err != nil {
		return nil, err
	}

	transcript := make([]Message, 0, len(messages)+1)
	transcript = append(transcript, messages...)
	return append(transcript, reply), nil
}

func (c *Client) chat(ctx context.Context, messages []Message, maxNewTokens int) (Message, error) {
	body := chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
	}
	if maxNewTokens > 0 {
		body.Options = map[string]any{"num_predict": maxNewTokens}
	}

	b, err := json.Marshal(body)
	if err != nil {
		return Message{}, fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(b))
	if err != nil {
		return Message{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	// 传播 trace_id
	if traceID := trace.FromContext(ctx); traceID != "" {
		req.Header.Set(trace.HeaderName(), traceID)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Message{}, err
	}
	defer resp.Body.Close()

	c.logger.Debug("Generation call finished",
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
		zap.Int("max_new_tokens", maxNewTokens),
	)

	if resp.StatusCode >= 500 {
		return Message{}, fmt.Errorf("generation service 5xx: %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Message{}, fmt.Errorf("generation service error: %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Message{}, fmt.Errorf("decode chat response: %w", err)
	}
	if out.Message.Role == "" {
		out.Message.Role = RoleAssistant
	}
	return out.Message, nil
}

// Healthy checks that the endpoint answers.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("generation service not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generation service returned status %d", resp.StatusCode)
	}
	return nil
}

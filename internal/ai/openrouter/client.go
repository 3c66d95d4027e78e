// Package openrouter is a minimal OpenAI-compatible chat completions client.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MQasim39/career-dashboard/internal/ai"
	"github.com/MQasim39/career-dashboard/internal/logger"
)

const (
	Provider       = "openrouter"
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	defaultModel   = "anthropic/claude-3-haiku"
	httpTimeout    = 60 * time.Second
)

// Client implements ai.Generator on top of the chat completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	appName string
	httpDo  *http.Client
	logger  *zap.Logger
}

func New(apiKey, baseURL, model, appName string, log *zap.Logger) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: baseURL,
		model:   model,
		appName: appName,
		httpDo:  &http.Client{Timeout: httpTimeout},
		logger:  logger.WithCommonFields(log, Provider, model),
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatChoice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
}

// Generate posts a system and a user message and returns the first choice.
func (c *Client) Generate(ctx context.Context, req ai.Request) (string, error) {
	if c.apiKey == "" {
		return "", c.fail("openrouter api key is empty", nil)
	}
	if strings.TrimSpace(req.UserPrompt) == "" {
		return "", c.fail("prompt must not be empty", nil)
	}

	model := c.model
	if m := strings.TrimSpace(req.Model); m != "" {
		model = m
	}

	messages := make([]message, 0, 2)
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		messages = append(messages, message{Role: "system", Content: system})
	}
	messages = append(messages, message{Role: "user", Content: req.UserPrompt})

	data, err := json.Marshal(chatCompletionsRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", c.fail("marshal request", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", c.fail("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.appName != "" {
		httpReq.Header.Set("X-Title", c.appName)
	}

	resp, err := c.httpDo.Do(httpReq)
	if err != nil {
		return "", c.fail("send request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errMap map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errMap)
		return "", c.fail(fmt.Sprintf("http %d", resp.StatusCode), fmt.Errorf("%v", errMap))
	}

	var out chatCompletionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", c.fail("decode response", err)
	}
	if len(out.Choices) == 0 {
		return "", c.fail("no choices returned by model", nil)
	}

	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", c.fail("model returned empty content", nil)
	}

	c.logger.Debug("openrouter completion received",
		zap.String("completion_id", out.ID),
		zap.String("finish_reason", out.Choices[0].FinishReason),
	)

	return content, nil
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) fail(msg string, cause error) error {
	return &ai.GenerationError{Provider: Provider, Message: msg, Cause: cause}
}

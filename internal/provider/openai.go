package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Config carries everything needed to reach an OpenAI-style
// chat-completions endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// ChatModel implements eino's model.BaseChatModel against the OpenAI
// chat-completions HTTP API so the reply chain stays provider-agnostic.
type ChatModel struct {
	cfg        *Config
	httpClient *http.Client
}

var _ model.BaseChatModel = (*ChatModel)(nil)

// NewChatModel validates the config and returns a ready chat model.
func NewChatModel(_ context.Context, cfg *Config) (*ChatModel, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, fmt.Errorf("provider API key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("provider model id is required")
	}

	return &ChatModel{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Generate sends the conversation to the provider and returns the reply.
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	req := chatRequest{
		Model:       m.cfg.Model,
		Messages:    convertMessages(input),
		Temperature: m.cfg.Temperature,
		TopP:        m.cfg.TopP,
		MaxTokens:   m.cfg.MaxTokens,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := strings.TrimRight(m.cfg.BaseURL, "/") + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	text := apiResp.Choices[0].Message.Content
	if text == "" {
		return nil, fmt.Errorf("model returned empty content (finish_reason: %s)", apiResp.Choices[0].FinishReason)
	}

	return schema.AssistantMessage(text, nil), nil
}

// Stream satisfies the eino contract by wrapping Generate in a
// single-item stream. Replies are short enough that chunked delivery
// buys nothing here.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	reader, writer := schema.Pipe[*schema.Message](1)

	go func() {
		defer writer.Close()
		msg, err := m.Generate(ctx, input, opts...)
		if err != nil {
			writer.Send(nil, err)
			return
		}
		writer.Send(msg, nil)
	}()

	return reader, nil
}

func convertMessages(input []*schema.Message) []chatMessage {
	out := make([]chatMessage, 0, len(input))
	for _, msg := range input {
		if msg == nil {
			continue
		}

		role := "user"
		switch msg.Role {
		case schema.System:
			role = "system"
		case schema.Assistant:
			role = "assistant"
		case schema.User:
			role = "user"
		}

		out = append(out, chatMessage{Role: role, Content: msg.Content})
	}
	return out
}

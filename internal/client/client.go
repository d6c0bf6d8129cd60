// Package client is the terminal app's HTTP client for the relay proxy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sleighworks/santaline/internal/model/chat"
)

// Client talks to the relay proxy endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the given relay base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	System   string         `json:"system"`
	KidName  string         `json:"kidName"`
	Age      string         `json:"age"`
	Messages []chat.Message `json:"messages"`
}

// Chat posts one turn with trailing history and returns the reply text.
func (c *Client) Chat(ctx context.Context, system, kidName, age string, messages []chat.Message) (string, error) {
	body, err := json.Marshal(chatRequest{System: system, KidName: kidName, Age: age, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat error (status %d)", resp.StatusCode)
	}

	var payload struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode chat reply: %w", err)
	}
	return payload.Reply, nil
}

// Synthesize requests MP3 audio for the given text and voice role.
func (c *Client) Synthesize(ctx context.Context, text, voiceRole string) ([]byte, error) {
	body, err := json.Marshal(map[string]string{"text": text, "voiceRole": voiceRole})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/tts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("synthesis error (status %d)", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// Health pings the relay.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay unhealthy (status %d)", resp.StatusCode)
	}
	return nil
}

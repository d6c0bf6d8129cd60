// Package speech turns reply text into MP3 audio through the provider's
// speech synthesis endpoint.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrMissingCredential is returned when no provider API key is
// configured. TTS has no soft-fallback path: callers surface this as an
// explicit failure.
var ErrMissingCredential = errors.New("missing provider credential")

// VoiceRole selects a persona voice; resolved per request.
const (
	VoiceRoleSanta = "santa"
	VoiceRoleElf   = "elf"
)

// Config carries the synthesis endpoint settings and per-role voices.
type Config struct {
	APIKey     string
	BaseURL    string
	TTSModel   string
	SantaVoice string
	ElfVoice   string
}

// Service is a stateless client for the speech synthesis API.
type Service struct {
	cfg        Config
	httpClient *http.Client
}

// NewService returns a synthesis client for the given config.
func NewService(cfg Config) *Service {
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// ResolveVoice maps a voice role onto a concrete provider voice id.
// Unknown roles fall back to Santa's voice.
func (s *Service) ResolveVoice(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), VoiceRoleElf) {
		return s.cfg.ElfVoice
	}
	return s.cfg.SantaVoice
}

type synthesisRequest struct {
	Model  string `json:"model"`
	Voice  string `json:"voice"`
	Input  string `json:"input"`
	Format string `json:"format"`
}

// Synthesize returns MP3 bytes for the given text and voice role.
func (s *Service) Synthesize(ctx context.Context, text, voiceRole string) ([]byte, error) {
	if s.cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}
	if strings.TrimSpace(text) == "" {
		text = "Ho ho ho!"
	}

	body, err := json.Marshal(synthesisRequest{
		Model:  s.cfg.TTSModel,
		Voice:  s.ResolveVoice(voiceRole),
		Input:  text,
		Format: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/v1/audio/speech"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("synthesis error (status %d): %s", resp.StatusCode, string(detail))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("synthesis returned empty audio")
	}

	return audio, nil
}

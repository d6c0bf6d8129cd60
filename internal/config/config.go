package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"github.com/sleighworks/santaline/internal/provider"
)

// Config aggregates every section of the relay service configuration.
type Config struct {
	Server ServerConfig
	AI     AIConfig
	Speech SpeechConfig
	Safety SafetyConfig
	Store  StoreConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server: server,
		AI:     ai,
		Speech: speech,
		Safety: loadSafetyConfig(),
		Store:  loadStoreConfig(),
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the chat completion provider.
type AIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the provider credential is present.
func (c AIConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// NewChatModel creates the chat model instance backing the reply chain.
func (c AIConfig) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("OPENAI_API_KEY and OPENAI_MODEL are required")
	}

	return provider.NewChatModel(ctx, &provider.Config{
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
		TopP:        c.TopP,
		MaxTokens:   c.MaxTokens,
	})
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("OPENAI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("OPENAI_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("OPENAI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		BaseURL:     getEnvOrDefault("OPENAI_BASE", "https://api.openai.com"),
		Model:       getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// SpeechConfig describes the speech synthesis provider and per-persona voices.
type SpeechConfig struct {
	APIKey     string
	BaseURL    string
	TTSModel   string
	SantaVoice string
	ElfVoice   string
	Enabled    bool
}

func loadSpeechConfig() (SpeechConfig, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))

	return SpeechConfig{
		APIKey:     apiKey,
		BaseURL:    getEnvOrDefault("OPENAI_BASE", "https://api.openai.com"),
		TTSModel:   getEnvOrDefault("OPENAI_TTS_MODEL", "gpt-4o-mini-tts"),
		SantaVoice: getEnvOrDefault("OPENAI_TTS_VOICE_SANTA", "alloy"),
		ElfVoice:   getEnvOrDefault("OPENAI_TTS_VOICE_ELF", "amber"),
		Enabled:    apiKey != "",
	}, nil
}

// SafetyConfig carries the PII denylist as editable policy data.
type SafetyConfig struct {
	Denylist []string
}

func loadSafetyConfig() SafetyConfig {
	raw := strings.TrimSpace(os.Getenv("SANTA_SAFETY_DENYLIST"))
	if raw == "" {
		return SafetyConfig{}
	}

	var terms []string
	for _, term := range strings.Split(raw, ",") {
		if term = strings.TrimSpace(term); term != "" {
			terms = append(terms, term)
		}
	}
	return SafetyConfig{Denylist: terms}
}

// StoreConfig selects the session store backend.
type StoreConfig struct {
	RedisAddr string
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{RedisAddr: strings.TrimSpace(os.Getenv("SANTA_REDIS_ADDR"))}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

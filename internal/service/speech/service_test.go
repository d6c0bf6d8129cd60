package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testConfig(baseURL string) Config {
	return Config{
		APIKey:     "sk-test",
		BaseURL:    baseURL,
		TTSModel:   "gpt-4o-mini-tts",
		SantaVoice: "alloy",
		ElfVoice:   "amber",
	}
}

func TestSynthesizeRequiresCredential(t *testing.T) {
	svc := NewService(Config{})

	_, err := svc.Synthesize(context.Background(), "ho ho", VoiceRoleSanta)
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestResolveVoice(t *testing.T) {
	svc := NewService(testConfig("http://example"))

	if got := svc.ResolveVoice(VoiceRoleElf); got != "amber" {
		t.Fatalf("elf voice = %q", got)
	}
	if got := svc.ResolveVoice(VoiceRoleSanta); got != "alloy" {
		t.Fatalf("santa voice = %q", got)
	}
	if got := svc.ResolveVoice("narrator"); got != "alloy" {
		t.Fatalf("unknown role should use santa voice, got %q", got)
	}
}

func TestSynthesizeSendsExpectedRequest(t *testing.T) {
	var captured synthesisRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("auth header = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte("mp3bytes"))
	}))
	defer server.Close()

	svc := NewService(testConfig(server.URL))
	audio, err := svc.Synthesize(context.Background(), "Ho ho ho, Sophie!", VoiceRoleElf)
	if err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if string(audio) != "mp3bytes" {
		t.Fatalf("audio = %q", audio)
	}
	if captured.Voice != "amber" || captured.Model != "gpt-4o-mini-tts" || captured.Format != "mp3" {
		t.Fatalf("unexpected request: %+v", captured)
	}
}

func TestSynthesizeDefaultsEmptyText(t *testing.T) {
	var captured synthesisRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_, _ = w.Write([]byte("mp3bytes"))
	}))
	defer server.Close()

	svc := NewService(testConfig(server.URL))
	if _, err := svc.Synthesize(context.Background(), "   ", VoiceRoleSanta); err != nil {
		t.Fatalf("synthesize failed: %v", err)
	}
	if captured.Input != "Ho ho ho!" {
		t.Fatalf("input = %q, want the default greeting", captured.Input)
	}
}

func TestSynthesizeSurfacesProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	svc := NewService(testConfig(server.URL))
	if _, err := svc.Synthesize(context.Background(), "hi", VoiceRoleSanta); err == nil {
		t.Fatal("provider error should surface")
	}
}

func TestSynthesizeRejectsEmptyAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewService(testConfig(server.URL))
	if _, err := svc.Synthesize(context.Background(), "hi", VoiceRoleSanta); err == nil {
		t.Fatal("empty audio should be an error")
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/sleighworks/santaline/internal/config"
	"github.com/sleighworks/santaline/internal/handler"
	"github.com/sleighworks/santaline/internal/handler/relay"
	"github.com/sleighworks/santaline/internal/model/persona"
	"github.com/sleighworks/santaline/internal/safety"
	"github.com/sleighworks/santaline/internal/service/ai"
	chatService "github.com/sleighworks/santaline/internal/service/chat"
	"github.com/sleighworks/santaline/internal/service/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	personaStore := persona.NewMemoryStore(persona.Seed())

	var sessionStore chatService.Store
	if cfg.Store.RedisAddr != "" {
		redisStore, err := chatService.NewRedisStore(ctx, cfg.Store.RedisAddr)
		if err != nil {
			log.Fatalf("failed to connect session store: %v", err)
		}
		defer redisStore.Close()
		sessionStore = redisStore
		log.Printf("session store backed by redis at %s", cfg.Store.RedisAddr)
	}
	chatSvc := chatService.NewService(sessionStore)

	var replier relay.Replier
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, personaStore, cfg.AI)
		if err != nil {
			log.Printf("warning: failed to initialize AI service: %v", err)
			log.Println("continuing without AI functionality - check OPENAI_API_KEY and OPENAI_MODEL")
		} else {
			replier = aiService
			log.Println("AI service initialized successfully")
		}
	} else {
		log.Println("provider credential not configured, chat will use fallback replies")
	}

	var synthesizer relay.Synthesizer
	if cfg.Speech.Enabled {
		synthesizer = speech.NewService(speech.Config{
			APIKey:     cfg.Speech.APIKey,
			BaseURL:    cfg.Speech.BaseURL,
			TTSModel:   cfg.Speech.TTSModel,
			SantaVoice: cfg.Speech.SantaVoice,
			ElfVoice:   cfg.Speech.ElfVoice,
		})
		log.Println("speech service initialized successfully")
	} else {
		log.Println("provider credential not configured, speech synthesis disabled")
	}

	filter := safety.NewFilter(cfg.Safety.Denylist)
	relayHandler := relay.New(replier, synthesizer, filter, chatSvc, personaStore)
	router := handler.NewRouter(relayHandler)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("santaline relay listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

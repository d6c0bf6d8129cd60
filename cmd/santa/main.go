package main

import (
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/sleighworks/santaline/internal/audio"
	"github.com/sleighworks/santaline/internal/client"
	"github.com/sleighworks/santaline/internal/consent"
	"github.com/sleighworks/santaline/internal/localstate"
	"github.com/sleighworks/santaline/internal/model/persona"
	"github.com/sleighworks/santaline/internal/tui"
)

const defaultBaseURL = "http://localhost:8080"

func main() {
	baseFlag := flag.String("base", "", "relay base URL (overrides saved and env values)")
	statePath := flag.String("state", "", "state database path")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	store := openState(*statePath)
	if store != nil {
		defer store.Close()
	}

	baseURL := resolveBaseURL(*baseFlag, store)
	if store != nil && *baseFlag != "" {
		_ = store.SetBaseURL(*baseFlag)
	}

	gate := consent.NewGate(nil)
	if store != nil {
		granted, err := store.ConsentGranted()
		if err != nil {
			log.Printf("warning: failed to read saved consent: %v", err)
		}
		gate.Restore(granted)
	}

	sound := audio.NewSession()
	defer sound.Close()
	if !sound.Enabled() {
		log.Println("no audio device found, running silent")
	}

	santa := persona.Seed()[0]
	model := tui.NewModel(tui.Deps{
		Gate:    gate,
		State:   store,
		API:     client.New(baseURL),
		Audio:   sound,
		Persona: santa,
	})

	if _, err := tea.NewProgram(model).Run(); err != nil {
		log.Fatalf("failed to run: %v", err)
	}
}

func openState(path string) *localstate.Store {
	if path == "" {
		resolved, err := localstate.DefaultPath()
		if err != nil {
			log.Printf("warning: no state directory available: %v", err)
			return nil
		}
		path = resolved
	}

	store, err := localstate.Open(path)
	if err != nil {
		log.Printf("warning: failed to open state db: %v", err)
		return nil
	}
	return store
}

func resolveBaseURL(flagValue string, store *localstate.Store) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("SANTA_RELAY_BASE"); env != "" {
		return env
	}
	if store != nil {
		if saved, err := store.BaseURL(); err == nil && saved != "" {
			return saved
		}
	}
	return defaultBaseURL
}

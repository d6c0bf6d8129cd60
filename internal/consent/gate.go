// Package consent implements the parental consent gate: a small state
// machine that must reach its terminal stage before the chat unlocks.
package consent

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// Stage names the gate's states.
type Stage string

const (
	StageIdle      Stage = "idle"
	StageIntro     Stage = "intro"
	StageListening Stage = "listening"
	StageFallback  Stage = "fallback"
	StageDone      Stage = "done"
)

var (
	ErrNotFallback    = errors.New("manual confirmation only allowed from the fallback stage")
	ErrKidNameInvalid = errors.New("kid name must be 1 to 20 characters")
)

// affirmatives is the fixed set of accepted consent phrases, matched as
// case-insensitive substrings of the transcript.
var affirmatives = []string{"i consent", "i agree", "yes i consent"}

// MatchesConsent reports whether a transcript contains an affirmative
// consent phrase.
func MatchesConsent(transcript string) bool {
	lowered := strings.ToLower(transcript)
	for _, phrase := range affirmatives {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// ValidateKidName enforces the 1-20 character requirement.
func ValidateKidName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 20 {
		return ErrKidNameInvalid
	}
	return nil
}

// Hooks are invoked by a Recognizer as it hears speech.
type Hooks struct {
	OnResult func(transcript string)
	OnError  func(err error)
	OnEnd    func()
}

// Recognizer abstracts the platform speech recognition capability.
// Environments without one use NullRecognizer, which routes the gate
// straight to the checkbox fallback.
type Recognizer interface {
	Available() bool
	Start(ctx context.Context, hooks Hooks) error
}

// NullRecognizer is the no-support implementation.
type NullRecognizer struct{}

func (NullRecognizer) Available() bool { return false }

func (NullRecognizer) Start(context.Context, Hooks) error {
	return errors.New("speech recognition not supported")
}

// Gate drives the consent flow:
// idle → intro → listening → done, or listening → fallback → done.
// Once done, the stage is sticky for the session lifetime.
type Gate struct {
	mu         sync.Mutex
	stage      Stage
	granted    bool
	recognizer Recognizer
}

// NewGate returns a gate in the idle stage.
func NewGate(recognizer Recognizer) *Gate {
	if recognizer == nil {
		recognizer = NullRecognizer{}
	}
	return &Gate{stage: StageIdle, recognizer: recognizer}
}

// Restore applies a persisted consent flag; granted consent jumps the
// gate straight to done.
func (g *Gate) Restore(granted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if granted {
		g.granted = true
		g.stage = StageDone
	}
}

// Stage returns the current stage.
func (g *Gate) Stage() Stage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stage
}

// Granted reports whether consent has been captured.
func (g *Gate) Granted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.granted
}

// Enter moves idle → intro on the user's entry gesture.
func (g *Gate) Enter() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stage == StageIdle {
		g.stage = StageIntro
	}
}

// StartListening begins a voice consent attempt. Without a recognizer
// the gate drops to fallback immediately. A matching transcript grants
// consent; recognition ending or erroring without a match drops to
// fallback. Non-matching transcripts leave the stage unchanged. Once in
// fallback, only the checkbox can grant; voice re-attempts are refused.
func (g *Gate) StartListening(ctx context.Context) Stage {
	g.mu.Lock()
	if g.stage == StageDone {
		g.mu.Unlock()
		return StageDone
	}
	if g.stage == StageFallback {
		g.mu.Unlock()
		return StageFallback
	}
	if !g.recognizer.Available() {
		g.stage = StageFallback
		g.mu.Unlock()
		return StageFallback
	}
	g.stage = StageListening
	recognizer := g.recognizer
	g.mu.Unlock()

	err := recognizer.Start(ctx, Hooks{
		OnResult: g.handleTranscript,
		OnError:  func(error) { g.dropToFallback() },
		OnEnd:    g.handleRecognitionEnd,
	})
	if err != nil {
		g.dropToFallback()
	}

	return g.Stage()
}

// ConfirmManually grants consent via the checkbox. Only legal from the
// fallback stage; voice re-attempts are not.
func (g *Gate) ConfirmManually() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stage == StageDone {
		return nil
	}
	if g.stage != StageFallback {
		return ErrNotFallback
	}
	g.granted = true
	g.stage = StageDone
	return nil
}

func (g *Gate) handleTranscript(transcript string) {
	if !MatchesConsent(transcript) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.stage == StageListening {
		g.granted = true
		g.stage = StageDone
	}
}

func (g *Gate) handleRecognitionEnd() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.granted && g.stage == StageListening {
		g.stage = StageFallback
	}
}

func (g *Gate) dropToFallback() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.granted && g.stage != StageDone {
		g.stage = StageFallback
	}
}

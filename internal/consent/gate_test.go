package consent

import (
	"context"
	"errors"
	"testing"
)

// scriptedRecognizer feeds canned transcripts through the hooks.
type scriptedRecognizer struct {
	transcripts []string
	fail        bool
	endAfter    bool
}

func (r *scriptedRecognizer) Available() bool { return true }

func (r *scriptedRecognizer) Start(_ context.Context, hooks Hooks) error {
	if r.fail {
		return errors.New("recognition failed")
	}
	for _, txt := range r.transcripts {
		hooks.OnResult(txt)
	}
	if r.endAfter {
		hooks.OnEnd()
	}
	return nil
}

func TestMatchesConsent(t *testing.T) {
	cases := []struct {
		transcript string
		want       bool
	}{
		{"I consent", true},
		{"well, yes I consent of course", true},
		{"I AGREE", true},
		{"sure thing", false},
		{"", false},
	}

	for _, c := range cases {
		if got := MatchesConsent(c.transcript); got != c.want {
			t.Fatalf("MatchesConsent(%q) = %v, want %v", c.transcript, got, c.want)
		}
	}
}

func TestValidateKidName(t *testing.T) {
	if err := ValidateKidName("Sophie"); err != nil {
		t.Fatalf("valid name rejected: %v", err)
	}
	if err := ValidateKidName("   "); err == nil {
		t.Fatal("blank name accepted")
	}
	if err := ValidateKidName("abcdefghijklmnopqrstu"); err == nil {
		t.Fatal("21-character name accepted")
	}
}

func TestGateEnterOnlyFromIdle(t *testing.T) {
	g := NewGate(nil)
	if g.Stage() != StageIdle {
		t.Fatalf("new gate stage = %s, want idle", g.Stage())
	}

	g.Enter()
	if g.Stage() != StageIntro {
		t.Fatalf("stage after Enter = %s, want intro", g.Stage())
	}
}

func TestGateWithoutRecognizerFallsBack(t *testing.T) {
	g := NewGate(nil)
	g.Enter()

	if stage := g.StartListening(context.Background()); stage != StageFallback {
		t.Fatalf("stage = %s, want fallback", stage)
	}
	if g.Granted() {
		t.Fatal("fallback must not grant consent")
	}
}

func TestGateVoiceConsentGrants(t *testing.T) {
	g := NewGate(&scriptedRecognizer{transcripts: []string{"um", "yes I consent"}})
	g.Enter()

	if stage := g.StartListening(context.Background()); stage != StageDone {
		t.Fatalf("stage = %s, want done", stage)
	}
	if !g.Granted() {
		t.Fatal("matching transcript should grant consent")
	}
}

func TestGateRecognitionEndWithoutMatchFallsBack(t *testing.T) {
	g := NewGate(&scriptedRecognizer{transcripts: []string{"hello there"}, endAfter: true})
	g.Enter()

	if stage := g.StartListening(context.Background()); stage != StageFallback {
		t.Fatalf("stage = %s, want fallback", stage)
	}
}

func TestGateRecognitionErrorFallsBack(t *testing.T) {
	g := NewGate(&scriptedRecognizer{fail: true})
	g.Enter()

	if stage := g.StartListening(context.Background()); stage != StageFallback {
		t.Fatalf("stage = %s, want fallback", stage)
	}
}

func TestGateVoiceRetryFromFallbackStaysFallback(t *testing.T) {
	r := &scriptedRecognizer{transcripts: []string{"hello there"}, endAfter: true}
	g := NewGate(r)
	g.Enter()

	if stage := g.StartListening(context.Background()); stage != StageFallback {
		t.Fatalf("stage = %s, want fallback", stage)
	}

	// Once the checkbox is offered, a second voice attempt must not
	// reopen the microphone path, even with a matching transcript.
	r.transcripts = []string{"yes I consent"}
	if stage := g.StartListening(context.Background()); stage != StageFallback {
		t.Fatalf("stage after voice retry = %s, want fallback", stage)
	}
	if g.Granted() {
		t.Fatal("voice retry from fallback granted consent")
	}

	if err := g.ConfirmManually(); err != nil {
		t.Fatalf("checkbox confirmation failed: %v", err)
	}
	if !g.Granted() {
		t.Fatal("checkbox should still grant from fallback")
	}
}

func TestConfirmManuallyOnlyFromFallback(t *testing.T) {
	g := NewGate(nil)
	g.Enter()

	if err := g.ConfirmManually(); !errors.Is(err, ErrNotFallback) {
		t.Fatalf("expected ErrNotFallback before fallback, got %v", err)
	}

	g.StartListening(context.Background())
	if err := g.ConfirmManually(); err != nil {
		t.Fatalf("fallback confirmation failed: %v", err)
	}
	if !g.Granted() || g.Stage() != StageDone {
		t.Fatalf("expected granted+done, got granted=%v stage=%s", g.Granted(), g.Stage())
	}

	// Done is sticky and re-confirmation is a no-op.
	if err := g.ConfirmManually(); err != nil {
		t.Fatalf("re-confirmation errored: %v", err)
	}
	if stage := g.StartListening(context.Background()); stage != StageDone {
		t.Fatalf("listening after done moved stage to %s", stage)
	}
}

func TestRestorePersistedConsent(t *testing.T) {
	g := NewGate(nil)
	g.Restore(true)

	if g.Stage() != StageDone || !g.Granted() {
		t.Fatalf("restore(true) left stage=%s granted=%v", g.Stage(), g.Granted())
	}

	g2 := NewGate(nil)
	g2.Restore(false)
	if g2.Stage() != StageIdle || g2.Granted() {
		t.Fatalf("restore(false) left stage=%s granted=%v", g2.Stage(), g2.Granted())
	}
}

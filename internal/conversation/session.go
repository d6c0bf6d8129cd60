// Package conversation holds the client-side chat session: the ordered
// transcript, the wishlist, and the one-outbound-call-per-turn flow.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sleighworks/santaline/internal/model/chat"
	"github.com/sleighworks/santaline/internal/wishlist"
)

// FallbackReply is appended in place of the assistant turn when the
// relay call fails. Failure is terminal for the turn; the child simply
// sends again.
const FallbackReply = "Oops. My sleigh hit a snow cloud. Please try again."

// windowSize bounds how much trailing history is sent per request.
const windowSize = 12

var (
	ErrConsentRequired = errors.New("consent has not been granted")
	ErrEmptyText       = errors.New("text is empty")
)

// Caller issues the outbound chat request for one turn.
type Caller interface {
	Chat(ctx context.Context, system, kidName, age string, messages []chat.Message) (string, error)
}

// Session owns the append-only transcript and the wishlist for one
// child. All mutation happens on the single UI control flow; the mutex
// only guards against stray reads from async completion callbacks.
type Session struct {
	mu        sync.Mutex
	caller    Caller
	system    string
	kidName   string
	age       string
	consented bool
	busy      bool
	messages  []chat.Message
	wishes    *wishlist.Wishlist
}

// NewSession creates a session for a child whose consent state is known.
func NewSession(caller Caller, system, kidName, age string, consented bool) *Session {
	return &Session{
		caller:    caller,
		system:    system,
		kidName:   kidName,
		age:       age,
		consented: consented,
		wishes:    wishlist.New(),
	}
}

// AddSanta appends an assistant turn without an outbound call (used for
// scripted greetings).
func (s *Session) AddSanta(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, chat.Message{Role: chat.RoleSanta, Text: text})
}

// AddElf appends a narrator turn. Elf turns are display-only and never
// forwarded to the provider.
func (s *Session) AddElf(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, chat.Message{Role: chat.RoleElf, Text: text})
}

// SubmitChildText runs one full turn: append the child message,
// categorize it, call the relay with the trailing window, and append
// either the reply or the fixed fallback. Transport failure never
// surfaces as an error; only precondition violations do.
func (s *Session) SubmitChildText(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if !s.consented {
		s.mu.Unlock()
		return "", ErrConsentRequired
	}
	if text == "" {
		s.mu.Unlock()
		return "", ErrEmptyText
	}

	s.messages = append(s.messages, chat.Message{Role: chat.RoleKid, Text: text})
	s.wishes.Add(text)
	s.busy = true

	window := s.messages
	if len(window) > windowSize {
		window = window[len(window)-windowSize:]
	}
	outbound := make([]chat.Message, len(window))
	copy(outbound, window)
	system, kidName, age := s.system, s.kidName, s.age
	s.mu.Unlock()

	reply, err := s.caller.Chat(ctx, system, kidName, age, outbound)
	if err != nil || strings.TrimSpace(reply) == "" {
		reply = FallbackReply
	}

	s.mu.Lock()
	s.messages = append(s.messages, chat.Message{Role: chat.RoleSanta, Text: reply})
	s.busy = false
	s.mu.Unlock()

	return reply, nil
}

// Messages returns a copy of the transcript in display order.
func (s *Session) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]chat.Message, len(s.messages))
	copy(copied, s.messages)
	return copied
}

// Busy reports whether a turn is in flight. Advisory only.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// KidName returns the child's first name.
func (s *Session) KidName() string { return s.kidName }

// Age returns the child's optional age string.
func (s *Session) Age() string { return s.age }

// Wishlist exposes the session's wishlist.
func (s *Session) Wishlist() *wishlist.Wishlist {
	return s.wishes
}

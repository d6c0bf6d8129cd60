package ai

import (
	"context"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	chatModel "github.com/sleighworks/santaline/internal/model/chat"
	"github.com/sleighworks/santaline/internal/model/persona"
)

// stubChatModel records the rendered prompt and returns a fixed reply.
type stubChatModel struct {
	received []*schema.Message
	reply    string
}

func (s *stubChatModel) Generate(_ context.Context, messages []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	s.received = messages
	return schema.AssistantMessage(s.reply, nil), nil
}

func (s *stubChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	reply, err := s.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	reader, writer := schema.Pipe[*schema.Message](1)
	writer.Send(reply, nil)
	writer.Close()
	return reader, nil
}

func setupService(t *testing.T, cm model.BaseChatModel) *Service {
	t.Helper()
	store := persona.NewMemoryStore(persona.Seed())
	svc, err := newServiceWithModel(context.Background(), store, cm)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestGenerateReplyReturnsModelText(t *testing.T) {
	stub := &stubChatModel{reply: "Ho ho ho, Sophie!"}
	svc := setupService(t, stub)

	reply, err := svc.GenerateReply(context.Background(), Request{
		KidName:  "Sophie",
		Age:      "9",
		UserText: "I want a lego set",
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if reply != "Ho ho ho, Sophie!" {
		t.Fatalf("reply = %q", reply)
	}
}

func TestGenerateReplyRendersSystemAndQuery(t *testing.T) {
	stub := &stubChatModel{reply: "ok"}
	svc := setupService(t, stub)

	if _, err := svc.GenerateReply(context.Background(), Request{
		System:   "custom system prompt",
		KidName:  "Sophie",
		UserText: "hello santa",
	}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if len(stub.received) < 3 {
		t.Fatalf("expected system, context line and query, got %d messages", len(stub.received))
	}
	first := stub.received[0]
	if first.Role != schema.System || first.Content != "custom system prompt" {
		t.Fatalf("first message = %s %q", first.Role, first.Content)
	}
	last := stub.received[len(stub.received)-1]
	if last.Role != schema.User || last.Content != "hello santa" {
		t.Fatalf("last message = %s %q", last.Role, last.Content)
	}
}

func TestGenerateReplyUsesPersonaPromptByDefault(t *testing.T) {
	stub := &stubChatModel{reply: "ok"}
	svc := setupService(t, stub)

	if _, err := svc.GenerateReply(context.Background(), Request{UserText: "hi"}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	santa, _ := persona.NewMemoryStore(persona.Seed()).FindByID("santa")
	if stub.received[0].Content != santa.SystemPrompt {
		t.Fatal("default system prompt should come from the santa persona")
	}
}

func TestGenerateReplyContextLine(t *testing.T) {
	stub := &stubChatModel{reply: "ok"}
	svc := setupService(t, stub)

	if _, err := svc.GenerateReply(context.Background(), Request{
		KidName:  "Sophie",
		Age:      "9",
		UserText: "hi",
	}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// The context line is the first history entry, right after system.
	if got := stub.received[1].Content; got != "Child: Sophie (age 9)." {
		t.Fatalf("context line = %q", got)
	}

	if _, err := svc.GenerateReply(context.Background(), Request{UserText: "hi"}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if got := stub.received[1].Content; got != "Child: Friend." {
		t.Fatalf("anonymous context line = %q", got)
	}
}

func TestGenerateReplyHistoryMapping(t *testing.T) {
	stub := &stubChatModel{reply: "ok"}
	svc := setupService(t, stub)

	if _, err := svc.GenerateReply(context.Background(), Request{
		KidName: "Sophie",
		History: []chatModel.Message{
			{Role: chatModel.RoleSanta, Text: "Hello Sophie!"},
			{Role: chatModel.RoleElf, Text: "consent paperwork done"},
			{Role: chatModel.RoleKid, Text: "I like trains"},
		},
		UserText: "and books",
	}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// system + context line + santa + kid + query; the elf turn is dropped.
	if len(stub.received) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(stub.received))
	}
	if stub.received[2].Role != schema.Assistant || stub.received[2].Content != "Hello Sophie!" {
		t.Fatalf("santa turn mapped wrong: %s %q", stub.received[2].Role, stub.received[2].Content)
	}
	if stub.received[3].Role != schema.User || stub.received[3].Content != "I like trains" {
		t.Fatalf("kid turn mapped wrong: %s %q", stub.received[3].Role, stub.received[3].Content)
	}
}

func TestGenerateReplyCapsHistory(t *testing.T) {
	stub := &stubChatModel{reply: "ok"}
	svc := setupService(t, stub)

	var history []chatModel.Message
	for i := 0; i < 30; i++ {
		history = append(history, chatModel.Message{Role: chatModel.RoleKid, Text: fmt.Sprintf("turn %d", i)})
	}

	if _, err := svc.GenerateReply(context.Background(), Request{History: history, UserText: "hi"}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	// system + context + capped history + query.
	if want := 1 + 1 + historyLimit + 1; len(stub.received) != want {
		t.Fatalf("expected %d messages, got %d", want, len(stub.received))
	}
	// The oldest surviving turn is turn 18 of 0..29.
	if got := stub.received[2].Content; got != "turn 18" {
		t.Fatalf("oldest surviving turn = %q", got)
	}
}

func TestGenerateReplyEmptyQueryGreets(t *testing.T) {
	stub := &stubChatModel{reply: "ok"}
	svc := setupService(t, stub)

	if _, err := svc.GenerateReply(context.Background(), Request{KidName: "Sophie"}); err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	last := stub.received[len(stub.received)-1]
	if last.Content != "Greet the child and ask one fun question." {
		t.Fatalf("empty query should turn into a greeting instruction, got %q", last.Content)
	}
}

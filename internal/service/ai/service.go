package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/sleighworks/santaline/internal/config"
	chatModel "github.com/sleighworks/santaline/internal/model/chat"
	"github.com/sleighworks/santaline/internal/model/persona"
)

// historyLimit caps how much transcript is resent to the provider per
// turn. Older history stays client-side for display only.
const historyLimit = 12

// Service generates in-character replies through an eino chain:
// system prompt + trailing history + the child's latest turn.
type Service struct {
	chatModel model.BaseChatModel
	personas  persona.Store
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService compiles the reply chain against the configured provider.
func NewService(ctx context.Context, personas persona.Store, cfg config.AIConfig) (*Service, error) {
	cm, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return newServiceWithModel(ctx, personas, cm)
}

func newServiceWithModel(ctx context.Context, personas persona.Store, cm model.BaseChatModel) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(cm)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile reply chain: %w", err)
	}

	return &Service{chatModel: cm, personas: personas, chain: runnable}, nil
}

// Request carries one reply-generation turn.
type Request struct {
	System   string // optional caller-supplied system prompt
	Persona  string // persona id, defaults to santa
	KidName  string
	Age      string
	History  []chatModel.Message
	UserText string
}

// GenerateReply runs the chain and returns the assistant text.
func (s *Service) GenerateReply(ctx context.Context, req Request) (string, error) {
	input := s.buildChainInput(req)

	response, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run reply chain: %w", err)
	}

	log.Printf("[ai] generated reply for kid=%s, length=%d", req.KidName, len(response.Content))
	return response.Content, nil
}

func (s *Service) buildChainInput(req Request) map[string]any {
	query := strings.TrimSpace(req.UserText)
	if query == "" {
		query = "Greet the child and ask one fun question."
	}

	return map[string]any{
		"system":  s.systemPrompt(req),
		"history": buildHistoryMessages(req),
		"query":   query,
	}
}

func (s *Service) systemPrompt(req Request) string {
	if system := strings.TrimSpace(req.System); system != "" {
		return system
	}

	id := req.Persona
	if id == "" {
		id = "santa"
	}
	if p, ok := s.personas.FindByID(id); ok {
		return p.SystemPrompt
	}
	return "You are a kind, funny, kid-safe Santa."
}

// buildHistoryMessages maps transcript roles onto provider roles,
// prefixed with a context line naming the child. Elf turns are local
// color and are not forwarded.
func buildHistoryMessages(req Request) []*schema.Message {
	history := make([]*schema.Message, 0, historyLimit+1)
	history = append(history, schema.UserMessage(contextLine(req.KidName, req.Age)))

	messages := req.History
	if len(messages) > historyLimit {
		messages = messages[len(messages)-historyLimit:]
	}

	for _, msg := range messages {
		switch msg.Role {
		case chatModel.RoleSanta:
			history = append(history, schema.AssistantMessage(msg.Text, nil))
		case chatModel.RoleKid:
			history = append(history, schema.UserMessage(msg.Text))
		}
	}

	return history
}

func contextLine(kidName, age string) string {
	name := strings.TrimSpace(kidName)
	if name == "" {
		name = "Friend"
	}
	if age = strings.TrimSpace(age); age != "" {
		return fmt.Sprintf("Child: %s (age %s).", name, age)
	}
	return fmt.Sprintf("Child: %s.", name)
}

package chat

import "time"

// Speaker roles shared by the transcript and the relay wire format.
const (
	RoleKid   = "kid"
	RoleSanta = "santa"
	RoleElf   = "elf"
)

// Message persists individual turns for display and model context.
type Message struct {
	ID        string    `json:"id,omitempty"`
	SessionID string    `json:"sessionId,omitempty"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

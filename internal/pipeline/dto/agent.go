package dto

// Message roles understood by the agent adapter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of an agent conversation.
type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// StreamFragment is one piece of a streamed agent response. A fragment with a
// non-nil Err is always the last one sent.
type StreamFragment struct {
	Text string
	Err  error
}

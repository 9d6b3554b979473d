package dto

// ChatRequest is the conversation so far; the last message must be from the user.
type ChatRequest struct {
	Messages []Message `json:"messages" validate:"required,min=1,max=50,dive"`
}

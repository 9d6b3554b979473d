package service

import (
	"context"

	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/prompt"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/pkg/logger"

	"github.com/google/uuid"
)

// ChatService streams agent conversations about a company.
type ChatService interface {
	// Stream answers the last user message with the company profile as
	// context. The channel closes when the answer is complete or ctx ends.
	Stream(ctx context.Context, companyID uuid.UUID, messages []dto.Message) (<-chan dto.StreamFragment, error)
}

type chatService struct {
	agent       repository.AgentRepository
	companyRepo repository.CompanyRepository
	logger      *logger.Logger
}

// NewChatService creates a new ChatService.
func NewChatService(agent repository.AgentRepository, companyRepo repository.CompanyRepository, log *logger.Logger) ChatService {
	return &chatService{agent: agent, companyRepo: companyRepo, logger: log}
}

func (s *chatService) Stream(ctx context.Context, companyID uuid.UUID, messages []dto.Message) (<-chan dto.StreamFragment, error) {
	if len(messages) == 0 {
		return nil, dto.NewFieldError("messages", "at least one message is required")
	}
	for _, m := range messages {
		if m.Role != dto.RoleUser && m.Role != dto.RoleAssistant {
			return nil, dto.NewFieldError("messages", "role must be user or assistant")
		}
	}
	if messages[len(messages)-1].Role != dto.RoleUser {
		return nil, dto.NewFieldError("messages", "last message must be from the user")
	}

	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	conversation := make([]dto.Message, 0, len(messages)+1)
	conversation = append(conversation, dto.Message{Role: dto.RoleSystem, Content: prompt.ChatSystemPrompt(company)})
	conversation = append(conversation, messages...)

	s.logger.Debug("Starting company chat",
		logger.StringField("company_id", companyID.String()),
		logger.IntField("turns", len(messages)),
	)
	return s.agent.Stream(ctx, conversation)
}

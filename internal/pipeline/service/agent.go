package service

import (
	"context"
	"errors"

	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/pkg/llmjson"
	"golang-deal-scout/pkg/logger"
)

// maxLoggedResponse bounds how much unparseable agent output is logged.
const maxLoggedResponse = 500

// ask sends a single-turn prompt and extracts the JSON reply. Only a missing
// agent configuration is returned as an error; agent and parse failures come
// back as a non-OK Result so callers can degrade per record.
func ask(ctx context.Context, agent repository.AgentRepository, log *logger.Logger, prompt, signatureKey string) (llmjson.Result, error) {
	text, err := agent.Complete(ctx, []dto.Message{{Role: dto.RoleUser, Content: prompt}})
	if err != nil {
		if errors.Is(err, dto.ErrAgentNotConfigured) {
			return llmjson.Result{}, err
		}
		log.Warn("Agent call failed", logger.ErrorField(err))
		return llmjson.FromUpstream(err), nil
	}

	res := llmjson.Parse(text, signatureKey)
	if !res.OK() {
		excerpt := text
		if len(excerpt) > maxLoggedResponse {
			excerpt = excerpt[:maxLoggedResponse]
		}
		log.Warn("Agent response could not be parsed",
			logger.StringField("reason", res.Reason),
			logger.StringField("response", excerpt),
		)
	}
	return res, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// AgentRepository invokes the hosted LLM agent.
type AgentRepository interface {
	// Complete sends the conversation and returns the full response text.
	Complete(ctx context.Context, messages []dto.Message) (string, error)
	// Stream sends the conversation and returns the response as ordered
	// fragments. The channel is closed when the response ends, after a
	// fragment carrying an error, or when ctx is cancelled.
	Stream(ctx context.Context, messages []dto.Message) (<-chan dto.StreamFragment, error)
}

// contentGenerator is the subset of genai.Models used by the adapter.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// geminiAgentRepository is an AgentRepository backed by the Google Gemini API.
type geminiAgentRepository struct {
	models         contentGenerator
	cfg            config.Gemini
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewGeminiAgentRepository creates the Gemini adapter. A nil client yields an
// adapter whose every call fails with dto.ErrAgentNotConfigured.
func NewGeminiAgentRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) AgentRepository {
	if genAiClient == nil || cfg.Gemini.APIKey == "" {
		log.Warn("Gemini API key not configured, agent calls are disabled")
		return unconfiguredAgentRepository{}
	}
	return newGeminiAgentRepository(cfg.Gemini, log, genAiClient.Models)
}

func newGeminiAgentRepository(cfg config.Gemini, log *logger.Logger, models contentGenerator) *geminiAgentRepository {
	perMinute := cfg.MaxRequestPerMinute
	if perMinute <= 0 {
		perMinute = 15
	}
	secondsPerRequest := time.Minute / time.Duration(perMinute)

	return &geminiAgentRepository{
		models:         models,
		cfg:            cfg,
		logger:         log,
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *geminiAgentRepository) Complete(ctx context.Context, messages []dto.Message) (string, error) {
	contents, genCfg, err := r.buildRequest(messages)
	if err != nil {
		return "", err
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("failed to wait for request limit: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := r.models.GenerateContent(ctx, r.cfg.Model, contents, genCfg)
	if err != nil {
		r.logger.Error("Gemini request failed", logger.ErrorField(err), logger.StringField("model", r.cfg.Model))
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := responseText(resp)
	r.logger.Debug("Gemini request completed",
		logger.StringField("model", r.cfg.Model),
		logger.IntField("response_len", len(text)),
		logger.Field("duration", time.Since(start)),
	)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini returned no content")
	}
	return text, nil
}

func (r *geminiAgentRepository) Stream(ctx context.Context, messages []dto.Message) (<-chan dto.StreamFragment, error) {
	contents, genCfg, err := r.buildRequest(messages)
	if err != nil {
		return nil, err
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	out := make(chan dto.StreamFragment)
	go func() {
		defer close(out)

		streamCtx, cancel := r.withTimeout(ctx)
		defer cancel()

		// Returning from the range loop stops the iterator, which closes the
		// underlying HTTP stream.
		for resp, err := range r.models.GenerateContentStream(streamCtx, r.cfg.Model, contents, genCfg) {
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				r.logger.Error("Gemini stream failed", logger.ErrorField(err))
				emit(ctx, out, dto.StreamFragment{Err: fmt.Errorf("gemini stream: %w", err)})
				return
			}
			text := responseText(resp)
			if text == "" {
				continue
			}
			if !emit(ctx, out, dto.StreamFragment{Text: text}) {
				return
			}
		}
	}()

	return out, nil
}

// emit delivers frag unless ctx is done, checking ctx before the select.
func emit(ctx context.Context, out chan<- dto.StreamFragment, frag dto.StreamFragment) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case out <- frag:
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *geminiAgentRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.Timeout)
}

// buildRequest maps the conversation onto Gemini contents. System messages
// are joined into the system instruction.
func (r *geminiAgentRepository) buildRequest(messages []dto.Message) ([]*genai.Content, *genai.GenerateContentConfig, error) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case dto.RoleSystem:
			system = append(system, m.Content)
		case dto.RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		case dto.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			return nil, nil, fmt.Errorf("unknown message role %q", m.Role)
		}
	}
	if len(contents) == 0 {
		return nil, nil, errors.New("conversation has no user message")
	}

	genCfg := &genai.GenerateContentConfig{}
	if r.cfg.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(r.cfg.Temperature)
	}
	if len(system) > 0 {
		genCfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	return contents, genCfg, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}

// unconfiguredAgentRepository is used when no API key is configured.
type unconfiguredAgentRepository struct{}

func (unconfiguredAgentRepository) Complete(context.Context, []dto.Message) (string, error) {
	return "", dto.ErrAgentNotConfigured
}

func (unconfiguredAgentRepository) Stream(context.Context, []dto.Message) (<-chan dto.StreamFragment, error) {
	return nil, dto.ErrAgentNotConfigured
}

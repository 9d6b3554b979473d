package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/prompt"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/pkg/logger"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ScreeningService evaluates a company against a screening criterion.
type ScreeningService interface {
	// Evaluate never fails because of the agent: agent and parse failures
	// yield a result of "error" with the reason in remarks.
	Evaluate(ctx context.Context, req dto.ScreeningRequest) (*dto.ScreeningResult, error)
}

type screeningService struct {
	cfg         config.Screening
	agent       repository.AgentRepository
	news        repository.NewsRepository
	companyRepo repository.CompanyRepository
	cache       *cache.Cache
	logger      *logger.Logger
}

// NewScreeningService creates a new ScreeningService.
func NewScreeningService(
	cfg *config.Config,
	agent repository.AgentRepository,
	news repository.NewsRepository,
	companyRepo repository.CompanyRepository,
	log *logger.Logger,
) ScreeningService {
	return &screeningService{
		cfg:         cfg.Screening,
		agent:       agent,
		news:        news,
		companyRepo: companyRepo,
		cache:       cache.New(cfg.Screening.CacheTTL, 2*cfg.Screening.CacheTTL),
		logger:      log,
	}
}

func (s *screeningService) Evaluate(ctx context.Context, req dto.ScreeningRequest) (*dto.ScreeningResult, error) {
	companyID, err := uuid.Parse(req.CompanyID)
	if err != nil {
		return nil, dto.NewFieldError("company_id", "must be a valid UUID")
	}
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	key := screeningCacheKey(company.ID, req.CriterionID, req.CriterionPrompt)
	if cached, ok := s.cache.Get(key); ok {
		result := cached.(dto.ScreeningResult)
		return &result, nil
	}

	log := s.logger.With(
		logger.StringField("company_id", req.CompanyID),
		logger.StringField("criterion_id", req.CriterionID),
	)

	res, err := ask(ctx, s.agent, log, prompt.ScreeningPrompt(company, req.CriterionPrompt, s.headlines(ctx, company.Name, log)), prompt.ScreeningKey)
	if err != nil {
		return nil, err
	}

	var out dto.ScreeningResult
	if err := res.Decode(&out); err != nil {
		return &dto.ScreeningResult{Result: dto.ScreeningError, Remarks: err.Error()}, nil
	}
	out.Result = strings.ToLower(strings.TrimSpace(out.Result))
	out.Remarks = strings.TrimSpace(out.Remarks)
	switch out.Result {
	case dto.ScreeningPass, dto.ScreeningFail, dto.ScreeningInconclusive:
	default:
		log.Warn("Unexpected screening result", logger.StringField("result", out.Result))
		return &dto.ScreeningResult{Result: dto.ScreeningError, Remarks: "agent returned unexpected result " + `"` + out.Result + `"`}, nil
	}

	s.cache.SetDefault(key, out)
	return &out, nil
}

func (s *screeningService) headlines(ctx context.Context, companyName string, log *logger.Logger) []string {
	if !s.cfg.IncludeNews || s.news == nil {
		return nil
	}
	headlines, err := s.news.Headlines(ctx, companyName)
	if err != nil {
		log.Warn("News headlines unavailable", logger.ErrorField(err))
		return nil
	}
	return headlines
}

// screeningCacheKey covers the prompt text so an edited criterion is re-evaluated.
func screeningCacheKey(companyID uuid.UUID, criterionID, criterionPrompt string) string {
	sum := sha256.Sum256([]byte(criterionPrompt))
	return companyID.String() + "|" + criterionID + "|" + hex.EncodeToString(sum[:8])
}

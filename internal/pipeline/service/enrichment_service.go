package service

import (
	"context"
	"errors"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/prompt"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/internal/pipeline/schema"
	"golang-deal-scout/pkg/llmjson"
	"golang-deal-scout/pkg/logger"
	"golang-deal-scout/pkg/utils"

	"github.com/google/uuid"
)

// EnrichmentService fills missing company fields with agent-sourced data.
type EnrichmentService interface {
	Enrich(ctx context.Context, companyID uuid.UUID, actor string) (*dto.EnrichmentResult, error)
	// EnrichBatch enriches companies one at a time in request order. A failure
	// on one company is reported in its result and does not stop the batch.
	EnrichBatch(ctx context.Context, companyIDs []uuid.UUID, actor string) (*dto.BatchEnrichResponse, error)
}

type enrichmentService struct {
	cfg         config.Enrichment
	agent       repository.AgentRepository
	website     repository.WebsiteRepository
	companyRepo repository.CompanyRepository
	auditRepo   repository.AuditRepository
	logger      *logger.Logger
}

// NewEnrichmentService creates a new EnrichmentService.
func NewEnrichmentService(
	cfg *config.Config,
	agent repository.AgentRepository,
	website repository.WebsiteRepository,
	companyRepo repository.CompanyRepository,
	auditRepo repository.AuditRepository,
	log *logger.Logger,
) EnrichmentService {
	return &enrichmentService{
		cfg:         cfg.Enrichment,
		agent:       agent,
		website:     website,
		companyRepo: companyRepo,
		auditRepo:   auditRepo,
		logger:      log,
	}
}

func (s *enrichmentService) Enrich(ctx context.Context, companyID uuid.UUID, actor string) (*dto.EnrichmentResult, error) {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, company, actor)
}

func (s *enrichmentService) EnrichBatch(ctx context.Context, companyIDs []uuid.UUID, actor string) (*dto.BatchEnrichResponse, error) {
	resp := &dto.BatchEnrichResponse{Results: make([]dto.EnrichmentResult, 0, len(companyIDs))}
	for _, id := range companyIDs {
		if !utils.ShouldContinue(ctx, s.logger) {
			return nil, ctx.Err()
		}

		result, err := s.Enrich(ctx, id, actor)
		if errors.Is(err, dto.ErrAgentNotConfigured) {
			return nil, err
		}
		if err != nil {
			s.logger.Warn("Enrichment failed", logger.ErrorField(err), logger.StringField("company_id", id.String()))
			result = &dto.EnrichmentResult{CompanyID: id.String(), Status: dto.EnrichmentError, FieldsUpdated: []string{}, Error: err.Error()}
		}

		switch result.Status {
		case dto.EnrichmentUpdated:
			resp.Updated++
		case dto.EnrichmentError:
			resp.Failed++
		}
		resp.Results = append(resp.Results, *result)
	}
	return resp, nil
}

func (s *enrichmentService) enrich(ctx context.Context, company *entity.Company, actor string) (*dto.EnrichmentResult, error) {
	result := &dto.EnrichmentResult{
		CompanyID:     company.ID.String(),
		Name:          company.Name,
		Status:        dto.EnrichmentUnchanged,
		FieldsUpdated: []string{},
	}
	log := s.logger.With(logger.StringField("company_id", result.CompanyID))

	missing := missingFields(company)
	if len(missing) == 0 {
		return result, nil
	}

	res, err := ask(ctx, s.agent, log, prompt.EnrichmentPrompt(company, missing, s.websiteExcerpt(ctx, company, log)), prompt.EnrichmentKey)
	if err != nil {
		return nil, err
	}
	fields, err := enrichmentFields(res)
	if err != nil {
		result.Status = dto.EnrichmentError
		result.Error = err.Error()
		return result, nil
	}

	plan := PlanEnrichment(company.FieldValues(), fields)
	if len(plan.Rejected) > 0 {
		log.Warn("Dropped enrichment fields", logger.Field("fields", plan.Rejected))
	}
	if len(plan.Updates) == 0 {
		return result, nil
	}

	// The snapshot is as old as the agent call; the write re-checks each column.
	written, err := s.companyRepo.FillMissing(ctx, company.ID, plan.Updates)
	if err != nil {
		log.Error("Failed to write enrichment", logger.ErrorField(err))
		result.Status = dto.EnrichmentError
		result.Error = err.Error()
		return result, nil
	}
	if len(written) < len(plan.FieldsUpdated) {
		log.Info("Enrichment fields filled concurrently", logger.IntField("planned", len(plan.FieldsUpdated)), logger.IntField("written", len(written)))
	}
	if len(written) == 0 {
		return result, nil
	}

	result.Status = dto.EnrichmentUpdated
	result.FieldsUpdated = written
	appendAudit(ctx, s.auditRepo, log, &entity.DealAuditLog{
		CompanyID: company.ID,
		Action:    entity.AuditEnriched,
		Actor:     actor,
	}, map[string]any{"fields_updated": written})

	log.Info("Company enriched", logger.Field("fields_updated", written))
	return result, nil
}

func (s *enrichmentService) websiteExcerpt(ctx context.Context, company *entity.Company, log *logger.Logger) string {
	if !s.cfg.FetchWebsite || s.website == nil || company.Website == nil || *company.Website == "" {
		return ""
	}
	excerpt, err := s.website.FetchExcerpt(ctx, *company.Website)
	if err != nil {
		log.Warn("Website excerpt unavailable", logger.ErrorField(err))
		return ""
	}
	return excerpt
}

// missingFields returns the enrichable fields with no value on company.
func missingFields(company *entity.Company) []schema.Field {
	values := company.FieldValues()
	var missing []schema.Field
	for _, f := range schema.EnrichableFields() {
		if isMissing(values[f.Name]) {
			missing = append(missing, f)
		}
	}
	return missing
}

// enrichmentFields reads the "fields" object of an enrichment reply. Replies
// that skip the wrapper and return the columns at top level are accepted too.
func enrichmentFields(res llmjson.Result) (map[string]any, error) {
	var payload dto.EnrichmentPayload
	if err := res.Decode(&payload); err == nil && payload.Fields != nil {
		return payload.Fields, nil
	}
	var flat map[string]any
	if err := res.Decode(&flat); err != nil {
		return nil, err
	}
	delete(flat, prompt.EnrichmentKey)
	return flat, nil
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/internal/pipeline/schema"
	"golang-deal-scout/pkg/logger"

	"github.com/google/uuid"
)

// CompanyService manages pipeline companies, their notes and audit history.
type CompanyService interface {
	Create(ctx context.Context, req *dto.CreateCompanyRequest, actor string) (*entity.Company, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	List(ctx context.Context, filter dto.CompanyFilter) ([]entity.Company, error)
	// Update writes whitelisted columns. A null value clears the column.
	// The pipeline stage is not writable here; use PromoteStage.
	Update(ctx context.Context, id uuid.UUID, fields map[string]any, actor string) (*entity.Company, error)
	Import(ctx context.Context, req *dto.ImportCompaniesRequest, actor string) (*dto.ImportSummary, error)
	// PromoteStage moves a company strictly forward in the pipeline.
	PromoteStage(ctx context.Context, id uuid.UUID, stage entity.PipelineStage, actor string) (*entity.Company, error)
	AddNote(ctx context.Context, id uuid.UUID, body, author string) (*entity.CompanyNote, error)
	ListNotes(ctx context.Context, id uuid.UUID) ([]entity.CompanyNote, error)
	AuditHistory(ctx context.Context, id uuid.UUID) ([]entity.DealAuditLog, error)
}

type companyService struct {
	companyRepo repository.CompanyRepository
	noteRepo    repository.NoteRepository
	auditRepo   repository.AuditRepository
	logger      *logger.Logger
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(
	companyRepo repository.CompanyRepository,
	noteRepo repository.NoteRepository,
	auditRepo repository.AuditRepository,
	log *logger.Logger,
) CompanyService {
	return &companyService{
		companyRepo: companyRepo,
		noteRepo:    noteRepo,
		auditRepo:   auditRepo,
		logger:      log,
	}
}

func (s *companyService) Create(ctx context.Context, req *dto.CreateCompanyRequest, actor string) (*entity.Company, error) {
	company := req.ToEntity()
	company.Name = strings.TrimSpace(company.Name)
	if company.Name == "" {
		return nil, dto.NewFieldError("name", "name is required")
	}
	if company.PipelineStage != nil && !company.PipelineStage.Valid() {
		return nil, dto.NewFieldError("pipeline_stage", "unknown pipeline stage")
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		s.logger.Error("Failed to create company", logger.ErrorField(err), logger.StringField("name", company.Name))
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	appendAudit(ctx, s.auditRepo, s.logger, &entity.DealAuditLog{
		CompanyID: company.ID,
		Action:    entity.AuditCompanyCreated,
		ToStage:   company.PipelineStage,
		Actor:     actor,
	}, nil)
	return company, nil
}

func (s *companyService) Get(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	return s.companyRepo.FindByID(ctx, id)
}

func (s *companyService) List(ctx context.Context, filter dto.CompanyFilter) ([]entity.Company, error) {
	return s.companyRepo.List(ctx, filter)
}

func (s *companyService) Update(ctx context.Context, id uuid.UUID, fields map[string]any, actor string) (*entity.Company, error) {
	if len(fields) == 0 {
		return nil, dto.NewFieldError("fields", "no fields to update")
	}

	updates := make(map[string]any, len(fields))
	problems := map[string]string{}
	for key, value := range fields {
		f, ok := schema.Lookup(key)
		if !ok {
			problems[key] = "unknown or read-only field"
			continue
		}
		if value == nil {
			if key == "name" {
				problems[key] = "name cannot be cleared"
				continue
			}
			updates[key] = nil
			continue
		}
		coerced, err := schema.Coerce(f, value)
		if err != nil {
			problems[key] = err.Error()
			continue
		}
		updates[key] = coerced
	}
	if len(problems) > 0 {
		return nil, &dto.FieldError{Fields: problems}
	}

	if err := s.companyRepo.UpdateFields(ctx, id, updates); err != nil {
		return nil, err
	}

	changed := make([]string, 0, len(updates))
	for key := range updates {
		changed = append(changed, key)
	}
	sort.Strings(changed)
	appendAudit(ctx, s.auditRepo, s.logger, &entity.DealAuditLog{
		CompanyID: id,
		Action:    entity.AuditCompanyUpdated,
		Actor:     actor,
	}, map[string]any{"fields": changed})

	return s.companyRepo.FindByID(ctx, id)
}

func (s *companyService) Import(ctx context.Context, req *dto.ImportCompaniesRequest, actor string) (*dto.ImportSummary, error) {
	summary := &dto.ImportSummary{Names: []string{}, Failures: []dto.RecordFailure{}}

	for i, record := range req.Companies {
		company, err := companyFromRecord(record)
		if err != nil {
			name, _ := record["name"].(string)
			summary.Failures = append(summary.Failures, dto.RecordFailure{Index: i, Name: name, Error: err.Error()})
			continue
		}

		if err := s.companyRepo.Create(ctx, company); err != nil {
			s.logger.Warn("Failed to import company", logger.ErrorField(err), logger.IntField("index", i))
			summary.Failures = append(summary.Failures, dto.RecordFailure{Index: i, Name: company.Name, Error: err.Error()})
			continue
		}
		appendAudit(ctx, s.auditRepo, s.logger, &entity.DealAuditLog{
			CompanyID: company.ID,
			Action:    entity.AuditCompanyImported,
			Actor:     actor,
		}, nil)
		summary.Imported++
		summary.Names = append(summary.Names, company.Name)
	}

	s.logger.Info("Company import completed",
		logger.IntField("records", len(req.Companies)),
		logger.IntField("imported", summary.Imported),
		logger.IntField("failed", len(summary.Failures)),
	)
	return summary, nil
}

// companyFromRecord builds a company from an import row. Unknown columns and
// values that do not fit their column are dropped; a missing name fails the row.
func companyFromRecord(record map[string]any) (*entity.Company, error) {
	clean, _ := schema.Sanitize(record)
	name, _ := clean["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	company := &entity.Company{Source: entity.SourceImport}
	for key, value := range clean {
		if err := company.SetField(key, value); err != nil {
			return nil, err
		}
	}
	return company, nil
}

func (s *companyService) PromoteStage(ctx context.Context, id uuid.UUID, stage entity.PipelineStage, actor string) (*entity.Company, error) {
	if !stage.Valid() {
		return nil, dto.NewFieldError("stage", "unknown pipeline stage")
	}
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := company.PipelineStage
	if entity.StageRank(from) >= stage.Rank() {
		return nil, fmt.Errorf("%w: company is at %s", dto.ErrStageRegression, stageName(from))
	}

	advanced, err := s.companyRepo.AdvanceStage(ctx, id, from, stage)
	if err != nil {
		return nil, fmt.Errorf("failed to advance stage: %w", err)
	}
	if !advanced {
		return nil, fmt.Errorf("%w: stage changed concurrently", dto.ErrStageRegression)
	}

	appendAudit(ctx, s.auditRepo, s.logger, &entity.DealAuditLog{
		CompanyID: id,
		Action:    entity.AuditStageChanged,
		FromStage: from,
		ToStage:   &stage,
		Actor:     actor,
	}, nil)

	company.PipelineStage = &stage
	return company, nil
}

func stageName(s *entity.PipelineStage) string {
	if s == nil {
		return "no stage"
	}
	return string(*s)
}

func (s *companyService) AddNote(ctx context.Context, id uuid.UUID, body, author string) (*entity.CompanyNote, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, dto.NewFieldError("body", "note body is required")
	}
	if _, err := s.companyRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	note := &entity.CompanyNote{CompanyID: id, Author: author, Body: body}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return note, nil
}

func (s *companyService) ListNotes(ctx context.Context, id uuid.UUID) ([]entity.CompanyNote, error) {
	if _, err := s.companyRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.noteRepo.ListByCompany(ctx, id)
}

func (s *companyService) AuditHistory(ctx context.Context, id uuid.UUID) ([]entity.DealAuditLog, error) {
	if _, err := s.companyRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.auditRepo.ListByCompany(ctx, id)
}

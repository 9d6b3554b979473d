package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/prompt"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/pkg/llmjson"
	"golang-deal-scout/pkg/logger"
	"golang-deal-scout/pkg/telegram"
	"golang-deal-scout/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
	"gorm.io/datatypes"
)

// DiscoveryService runs discovery scans and manages their results.
type DiscoveryService interface {
	// RunForThesis scans a stored thesis and records the scan time.
	RunForThesis(ctx context.Context, thesisID uuid.UUID, trigger entity.ScanTrigger) (*dto.DiscoveryRunResponse, error)
	// Run scans an ad-hoc thesis text.
	Run(ctx context.Context, req dto.RunDiscoveryRequest) (*dto.DiscoveryRunResponse, error)
	// ScanDue scans every active thesis whose next scan time has passed.
	ScanDue(ctx context.Context) (int, error)
	List(ctx context.Context, filter dto.DiscoveryFilter) ([]entity.DiscoveryResult, error)
	AddToPipeline(ctx context.Context, id uuid.UUID, req dto.AddToPipelineRequest, actor string) (*entity.Company, error)
	Dismiss(ctx context.Context, id uuid.UUID) error
}

type discoveryService struct {
	cfg           config.Scanner
	agent         repository.AgentRepository
	companyRepo   repository.CompanyRepository
	discoveryRepo repository.DiscoveryRepository
	thesisRepo    repository.ThesisRepository
	auditRepo     repository.AuditRepository
	runRepo       repository.ScanRunRepository
	notifier      telegram.Notifier
	logger        *logger.Logger
}

// NewDiscoveryService creates a new DiscoveryService. notifier may be nil.
func NewDiscoveryService(
	cfg *config.Config,
	agent repository.AgentRepository,
	companyRepo repository.CompanyRepository,
	discoveryRepo repository.DiscoveryRepository,
	thesisRepo repository.ThesisRepository,
	auditRepo repository.AuditRepository,
	runRepo repository.ScanRunRepository,
	notifier telegram.Notifier,
	log *logger.Logger,
) DiscoveryService {
	return &discoveryService{
		cfg:           cfg.Scanner,
		agent:         agent,
		companyRepo:   companyRepo,
		discoveryRepo: discoveryRepo,
		thesisRepo:    thesisRepo,
		auditRepo:     auditRepo,
		runRepo:       runRepo,
		notifier:      notifier,
		logger:        log,
	}
}

func (s *discoveryService) RunForThesis(ctx context.Context, thesisID uuid.UUID, trigger entity.ScanTrigger) (*dto.DiscoveryRunResponse, error) {
	thesis, err := s.thesisRepo.FindByID(ctx, thesisID)
	if err != nil {
		return nil, err
	}

	run := s.startRun(ctx, &thesis.ID, trigger)
	resp, err := s.run(ctx, thesis.Content, thesis.CandidatesPerScan, &thesis.ID)
	s.finishRun(ctx, run, resp, err)
	if err != nil {
		return nil, err
	}
	resp.ThesisID = thesis.ID.String()
	resp.RunID = run.ID.String()

	if err := MarkScanned(ctx, s.thesisRepo, thesis, utils.TimeNowUTC()); err != nil {
		s.logger.Error("Failed to record thesis scan", logger.ErrorField(err), logger.StringField("thesis_id", thesis.ID.String()))
	}
	s.notify(thesis.Title, resp)
	return resp, nil
}

func (s *discoveryService) Run(ctx context.Context, req dto.RunDiscoveryRequest) (*dto.DiscoveryRunResponse, error) {
	run := s.startRun(ctx, nil, entity.TriggerAdHoc)
	resp, err := s.run(ctx, req.Thesis, req.Count, nil)
	s.finishRun(ctx, run, resp, err)
	if err != nil {
		return nil, err
	}
	resp.RunID = run.ID.String()
	s.notify("Ad-hoc thesis", resp)
	return resp, nil
}

func (s *discoveryService) ScanDue(ctx context.Context) (int, error) {
	due, err := s.thesisRepo.FindDue(ctx, utils.TimeNowUTC())
	if err != nil {
		return 0, fmt.Errorf("failed to find due theses: %w", err)
	}

	scanned := 0
	for _, thesis := range due {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		scanCtx, cancel := context.WithTimeout(ctx, s.cfg.ScanTimeout)
		resp, err := s.RunForThesis(scanCtx, thesis.ID, entity.TriggerScheduled)
		cancel()
		if err != nil {
			if errors.Is(err, dto.ErrAgentNotConfigured) {
				return scanned, err
			}
			s.logger.Error("Scheduled scan failed", logger.ErrorField(err), logger.StringField("thesis_id", thesis.ID.String()))
			continue
		}
		scanned++
		s.logger.Info("Scheduled scan completed",
			logger.StringField("thesis_id", thesis.ID.String()),
			logger.IntField("inserted", resp.Count),
		)
	}
	return scanned, nil
}

func (s *discoveryService) run(ctx context.Context, thesisText string, count int, thesisID *uuid.UUID) (*dto.DiscoveryRunResponse, error) {
	thesisText = strings.TrimSpace(thesisText)
	if thesisText == "" {
		return nil, dto.NewFieldError("thesis", "thesis text is empty")
	}
	count = s.candidateCount(count)

	exclusions, err := s.exclusions(ctx)
	if err != nil {
		return nil, err
	}

	res, err := ask(ctx, s.agent, s.logger, prompt.DiscoveryPrompt(thesisText, count, exclusions), prompt.DiscoveryKey)
	if err != nil {
		return nil, err
	}
	var payload dto.DiscoveryPayload
	if err := res.Decode(&payload); err != nil {
		return nil, err
	}

	kept, skipped := FilterNew(payload.Companies, func(c dto.DiscoveredCompany) string { return c.CompanyName }, exclusions)

	records := make([]*entity.DiscoveryResult, 0, len(kept))
	for _, c := range kept {
		records = append(records, s.toResult(c, thesisText, thesisID))
	}
	inserted, failures := InsertCandidates(ctx, s.discoveryRepo, records, utils.TimeNowUTC())

	skippedNames := make([]string, 0, len(skipped))
	for _, c := range skipped {
		skippedNames = append(skippedNames, c.CompanyName)
	}
	for _, f := range failures {
		s.logger.Error("Failed to insert discovery result", logger.StringField("company", f.Name), logger.StringField("error", f.Error))
	}

	s.logger.Info("Discovery run completed",
		logger.IntField("returned", len(payload.Companies)),
		logger.IntField("inserted", len(inserted)),
		logger.IntField("skipped", len(skipped)),
		logger.IntField("failed", len(failures)),
	)

	return &dto.DiscoveryRunResponse{
		Count:     len(inserted),
		Companies: inserted,
		Skipped:   skippedNames,
		Failures:  failures,
	}, nil
}

// startRun records a running scan. A failed insert is logged and the scan
// proceeds with an unsaved record.
func (s *discoveryService) startRun(ctx context.Context, thesisID *uuid.UUID, trigger entity.ScanTrigger) *entity.ScanRun {
	run := &entity.ScanRun{
		ID:        uuid.New(),
		ThesisID:  thesisID,
		Trigger:   trigger,
		Status:    entity.ScanRunRunning,
		StartedAt: utils.TimeNowUTC(),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		s.logger.Error("Failed to record scan run", logger.ErrorField(err), logger.StringField("trigger", string(trigger)))
	}
	return run
}

func (s *discoveryService) finishRun(ctx context.Context, run *entity.ScanRun, resp *dto.DiscoveryRunResponse, runErr error) {
	completed := utils.TimeNowUTC()
	run.CompletedAt = &completed
	if runErr != nil {
		run.Status = entity.ScanRunFailed
		msg := runErr.Error()
		run.Error = &msg
	} else {
		run.Status = entity.ScanRunCompleted
		run.Inserted = resp.Count
		run.Skipped = len(resp.Skipped)
		run.Failed = len(resp.Failures)
	}
	// The scan context may already be done when the agent timed out.
	if err := s.runRepo.Update(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Error("Failed to update scan run", logger.ErrorField(err), logger.StringField("run_id", run.ID.String()))
	}
}

func (s *discoveryService) candidateCount(count int) int {
	if count <= 0 {
		count = s.cfg.DefaultCandidates
	}
	if count <= 0 {
		count = 10
	}
	if s.cfg.MaxCandidates > 0 && count > s.cfg.MaxCandidates {
		count = s.cfg.MaxCandidates
	}
	return count
}

// exclusions returns every company name plus the names of pending results.
// Added results are already companies and are never reconsidered.
func (s *discoveryService) exclusions(ctx context.Context) ([]string, error) {
	companies, err := s.companyRepo.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list company names: %w", err)
	}
	pending, err := s.discoveryRepo.PendingNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending discovery names: %w", err)
	}
	return append(companies, pending...), nil
}

func (s *discoveryService) toResult(c dto.DiscoveredCompany, thesisText string, thesisID *uuid.UUID) *entity.DiscoveryResult {
	log := s.logger.With(logger.StringField("company", c.CompanyName))
	result := &entity.DiscoveryResult{
		ThesisID:       thesisID,
		ThesisSnapshot: thesisText,
		CompanyName:    strings.TrimSpace(c.CompanyName),
		Sector:         optionalText(c.Sector),
		Description:    optionalText(c.Description),
		MatchReason:    optionalText(c.MatchReason),
	}

	if c.MatchScore != nil {
		score, err := llmjson.NumberInRange(c.MatchScore, 0, 100)
		if err != nil {
			log.Warn("Rejected match score", logger.ErrorField(err), logger.Field("value", c.MatchScore))
		} else {
			result.MatchScore = &score
		}
	}
	result.EstimatedRevenueUSDMn = optionalAmount(c.EstimatedRevenueUSDMn, "estimated_revenue_usd_mn", log)
	result.EstimatedValuationUSDMn = optionalAmount(c.EstimatedValuationUSDMn, "estimated_valuation_usd_mn", log)

	if c.Website != "" {
		if website, ok := NormalizeWebsite(c.Website); ok {
			result.Website = &website
		} else {
			log.Warn("Rejected website", logger.StringField("value", c.Website))
		}
	}

	if raw, err := json.Marshal(c); err == nil {
		result.RawPayload = datatypes.JSON(raw)
	}
	return result
}

func (s *discoveryService) List(ctx context.Context, filter dto.DiscoveryFilter) ([]entity.DiscoveryResult, error) {
	return s.discoveryRepo.List(ctx, filter)
}

// AddToPipeline creates a company from a pending result and flips the result
// exactly once. The flip and the insert share a transaction, so a concurrent
// second add gets ErrAlreadyAdded and leaves no company behind.
func (s *discoveryService) AddToPipeline(ctx context.Context, id uuid.UUID, req dto.AddToPipelineRequest, actor string) (*entity.Company, error) {
	result, err := s.discoveryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if result.IsAddedToPipeline {
		return nil, dto.ErrAlreadyAdded
	}

	stage := entity.StageL0
	if req.Stage != "" {
		stage = entity.PipelineStage(req.Stage)
	}
	company := &entity.Company{
		Name:          result.CompanyName,
		Segment:       result.Sector,
		Description:   result.Description,
		Website:       result.Website,
		PipelineStage: &stage,
		Source:        entity.SourceDiscovery,
	}
	flipped, err := s.discoveryRepo.AddCompany(ctx, result.ID, company)
	if err != nil {
		return nil, fmt.Errorf("failed to add discovery result to pipeline: %w", err)
	}
	if !flipped {
		return nil, dto.ErrAlreadyAdded
	}

	details := map[string]any{"discovery_result_id": result.ID.String()}
	if result.MatchScore != nil {
		details["match_score"] = *result.MatchScore
	}
	appendAudit(ctx, s.auditRepo, s.logger, &entity.DealAuditLog{
		CompanyID: company.ID,
		Action:    entity.AuditDiscoveryAdded,
		ToStage:   &stage,
		Actor:     actor,
	}, details)
	return company, nil
}

func (s *discoveryService) Dismiss(ctx context.Context, id uuid.UUID) error {
	result, err := s.discoveryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if result.IsAddedToPipeline {
		return dto.ErrAlreadyAdded
	}
	deleted, err := s.discoveryRepo.DeletePending(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return dto.ErrAlreadyAdded
	}
	return nil
}

func (s *discoveryService) notify(title string, resp *dto.DiscoveryRunResponse) {
	if s.notifier == nil {
		return
	}
	summary := telegram.DiscoverySummary{
		ThesisTitle: title,
		Inserted:    resp.Companies,
		Skipped:     len(resp.Skipped),
		Failed:      len(resp.Failures),
	}
	for _, msg := range telegram.FormatDiscoverySummary(summary) {
		if err := s.notifier.SendMessage(msg); err != nil {
			s.logger.Warn("Failed to send discovery summary", logger.ErrorField(err))
			return
		}
	}
}

// NormalizeWebsite reduces a candidate website to scheme and lower-case host
// and rejects hosts without a registrable domain.
func NormalizeWebsite(raw string) (string, bool) {
	normalized, err := repository.NormalizeURL(raw)
	if err != nil {
		return "", false
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if _, err := publicsuffix.EffectiveTLDPlusOne(host); err != nil {
		return "", false
	}
	return u.Scheme + "://" + host, true
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalAmount(v any, field string, log *logger.Logger) *float64 {
	if v == nil {
		return nil
	}
	n, err := llmjson.Number(v)
	if err != nil || n < 0 {
		log.Warn("Rejected amount", logger.StringField("field", field), logger.Field("value", v))
		return nil
	}
	return &n
}

package service

import (
	"context"
	"fmt"
	"strings"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/pkg/logger"
	"golang-deal-scout/pkg/utils"

	"github.com/google/uuid"
)

// ThesisService manages investment theses and triggers their scans.
type ThesisService interface {
	Create(ctx context.Context, req *dto.CreateThesisRequest, actor string) (*entity.InvestmentThesis, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.InvestmentThesis, error)
	List(ctx context.Context, activeOnly bool) ([]entity.InvestmentThesis, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateThesisRequest) (*entity.InvestmentThesis, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ScanNow runs a discovery scan for the thesis and waits for it.
	ScanNow(ctx context.Context, id uuid.UUID) (*dto.DiscoveryRunResponse, error)
	// RequestScan queues a scan for the scan service.
	RequestScan(ctx context.Context, id uuid.UUID, actor string) (*dto.ScanAcceptedResponse, error)
}

type thesisService struct {
	cfg        config.Scanner
	thesisRepo repository.ThesisRepository
	queue      repository.ScanQueueRepository
	discovery  DiscoveryService
	logger     *logger.Logger
}

// NewThesisService creates a new ThesisService.
func NewThesisService(
	cfg *config.Config,
	thesisRepo repository.ThesisRepository,
	queue repository.ScanQueueRepository,
	discovery DiscoveryService,
	log *logger.Logger,
) ThesisService {
	return &thesisService{
		cfg:        cfg.Scanner,
		thesisRepo: thesisRepo,
		queue:      queue,
		discovery:  discovery,
		logger:     log,
	}
}

func (s *thesisService) Create(ctx context.Context, req *dto.CreateThesisRequest, actor string) (*entity.InvestmentThesis, error) {
	thesis := &entity.InvestmentThesis{
		Title:             strings.TrimSpace(req.Title),
		Content:           strings.TrimSpace(req.Content),
		IsActive:          true,
		ScanFrequency:     entity.ScanWeekly,
		CandidatesPerScan: s.cfg.DefaultCandidates,
		CreatedBy:         actor,
	}
	if req.IsActive != nil {
		thesis.IsActive = *req.IsActive
	}
	if req.ScanFrequency != "" {
		thesis.ScanFrequency = entity.ScanFrequency(req.ScanFrequency)
	}
	if req.CandidatesPerScan > 0 {
		thesis.CandidatesPerScan = req.CandidatesPerScan
	}
	if err := s.validate(thesis); err != nil {
		return nil, err
	}

	if err := s.thesisRepo.Create(ctx, thesis); err != nil {
		s.logger.Error("Failed to create thesis", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to create thesis: %w", err)
	}
	return thesis, nil
}

func (s *thesisService) Get(ctx context.Context, id uuid.UUID) (*entity.InvestmentThesis, error) {
	return s.thesisRepo.FindByID(ctx, id)
}

func (s *thesisService) List(ctx context.Context, activeOnly bool) ([]entity.InvestmentThesis, error) {
	return s.thesisRepo.List(ctx, activeOnly)
}

func (s *thesisService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateThesisRequest) (*entity.InvestmentThesis, error) {
	thesis, err := s.thesisRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		thesis.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		thesis.Content = strings.TrimSpace(*req.Content)
	}
	if req.IsActive != nil {
		thesis.IsActive = *req.IsActive
	}
	reschedule := false
	if req.ScanFrequency != nil && entity.ScanFrequency(*req.ScanFrequency) != thesis.ScanFrequency {
		thesis.ScanFrequency = entity.ScanFrequency(*req.ScanFrequency)
		// Reschedule from the last scan so a shorter cadence takes effect immediately.
		if thesis.LastScanAt != nil {
			thesis.NextScanAt = utils.ToPointer(NextScan(*thesis.LastScanAt, thesis.ScanFrequency))
			reschedule = true
		}
	}
	if req.CandidatesPerScan != nil {
		thesis.CandidatesPerScan = *req.CandidatesPerScan
	}
	if err := s.validate(thesis); err != nil {
		return nil, err
	}

	if err := s.thesisRepo.Update(ctx, thesis, reschedule); err != nil {
		return nil, fmt.Errorf("failed to update thesis: %w", err)
	}
	return thesis, nil
}

func (s *thesisService) validate(thesis *entity.InvestmentThesis) error {
	switch {
	case thesis.Title == "":
		return dto.NewFieldError("title", "title is required")
	case thesis.Content == "":
		return dto.NewFieldError("content", "content is required")
	case !thesis.ScanFrequency.Valid():
		return dto.NewFieldError("scan_frequency", "must be daily, weekly or monthly")
	case thesis.CandidatesPerScan < 1 || thesis.CandidatesPerScan > s.cfg.MaxCandidates:
		return dto.NewFieldError("candidates_per_scan", fmt.Sprintf("must be between 1 and %d", s.cfg.MaxCandidates))
	}
	return nil
}

func (s *thesisService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.thesisRepo.Delete(ctx, id)
}

func (s *thesisService) ScanNow(ctx context.Context, id uuid.UUID) (*dto.DiscoveryRunResponse, error) {
	return s.discovery.RunForThesis(ctx, id, entity.TriggerManual)
}

func (s *thesisService) RequestScan(ctx context.Context, id uuid.UUID, actor string) (*dto.ScanAcceptedResponse, error) {
	if _, err := s.thesisRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	messageID, err := s.queue.Publish(ctx, dto.ScanRequestMessage{ThesisID: id.String(), RequestedBy: actor})
	if err != nil {
		s.logger.Error("Failed to queue thesis scan", logger.ErrorField(err), logger.StringField("thesis_id", id.String()))
		return nil, err
	}

	s.logger.Info("Thesis scan queued", logger.StringField("thesis_id", id.String()), logger.StringField("message_id", messageID))
	return &dto.ScanAcceptedResponse{ThesisID: id.String(), MessageID: messageID}, nil
}

package service

import (
	"context"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/dto"
	"golang-deal-scout/internal/pipeline/repository"
	"golang-deal-scout/pkg/logger"

	"github.com/google/uuid"
)

// defaultRunHistory caps how many runs a history listing returns.
const defaultRunHistory = 50

// ScanRunService reads the discovery run history.
type ScanRunService interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.ScanRunResponse, error)
	List(ctx context.Context, thesisID *uuid.UUID, limit int) ([]*dto.ScanRunResponse, error)
}

type scanRunService struct {
	runRepo    repository.ScanRunRepository
	thesisRepo repository.ThesisRepository
	logger     *logger.Logger
}

// NewScanRunService creates a new ScanRunService.
func NewScanRunService(runRepo repository.ScanRunRepository, thesisRepo repository.ThesisRepository, log *logger.Logger) ScanRunService {
	return &scanRunService{runRepo: runRepo, thesisRepo: thesisRepo, logger: log}
}

func (s *scanRunService) Get(ctx context.Context, id uuid.UUID) (*dto.ScanRunResponse, error) {
	run, err := s.runRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toScanRunResponse(run), nil
}

func (s *scanRunService) List(ctx context.Context, thesisID *uuid.UUID, limit int) ([]*dto.ScanRunResponse, error) {
	if thesisID != nil {
		if _, err := s.thesisRepo.FindByID(ctx, *thesisID); err != nil {
			return nil, err
		}
	}
	if limit <= 0 || limit > defaultRunHistory {
		limit = defaultRunHistory
	}
	runs, err := s.runRepo.List(ctx, thesisID, limit)
	if err != nil {
		s.logger.Error("Failed to list scan runs", logger.ErrorField(err))
		return nil, err
	}
	out := make([]*dto.ScanRunResponse, 0, len(runs))
	for i := range runs {
		out = append(out, toScanRunResponse(&runs[i]))
	}
	return out, nil
}

func toScanRunResponse(run *entity.ScanRun) *dto.ScanRunResponse {
	resp := &dto.ScanRunResponse{
		ID:          run.ID.String(),
		Trigger:     string(run.Trigger),
		Status:      string(run.Status),
		Inserted:    run.Inserted,
		Skipped:     run.Skipped,
		Failed:      run.Failed,
		StartedAt:   run.StartedAt,
		CompletedAt: run.CompletedAt,
	}
	if run.ThesisID != nil {
		resp.ThesisID = run.ThesisID.String()
	}
	if run.Error != nil {
		resp.Error = *run.Error
	}
	if run.CompletedAt != nil {
		resp.Duration = run.CompletedAt.Sub(run.StartedAt).Milliseconds()
	}
	return resp
}

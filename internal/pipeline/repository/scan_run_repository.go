package repository

import (
	"context"

	"golang-deal-scout/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanRunRepository stores the history of discovery runs.
type ScanRunRepository interface {
	Create(ctx context.Context, run *entity.ScanRun) error
	Update(ctx context.Context, run *entity.ScanRun) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ScanRun, error)
	// List returns the newest runs first, optionally for one thesis.
	List(ctx context.Context, thesisID *uuid.UUID, limit int) ([]entity.ScanRun, error)
}

type scanRunRepository struct {
	db *gorm.DB
}

// NewScanRunRepository creates a new GORM-based scan run repository.
func NewScanRunRepository(db *gorm.DB) ScanRunRepository {
	return &scanRunRepository{db: db}
}

func (r *scanRunRepository) Create(ctx context.Context, run *entity.ScanRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *scanRunRepository) Update(ctx context.Context, run *entity.ScanRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *scanRunRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ScanRun, error) {
	var run entity.ScanRun
	if err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &run, nil
}

func (r *scanRunRepository) List(ctx context.Context, thesisID *uuid.UUID, limit int) ([]entity.ScanRun, error) {
	query := r.db.WithContext(ctx).Order("started_at DESC")
	if thesisID != nil {
		query = query.Where("thesis_id = ?", *thesisID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	var runs []entity.ScanRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

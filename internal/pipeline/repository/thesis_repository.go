package repository

import (
	"context"
	"time"

	"golang-deal-scout/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ThesisRepository persists investment theses.
type ThesisRepository interface {
	Create(ctx context.Context, thesis *entity.InvestmentThesis) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.InvestmentThesis, error)
	List(ctx context.Context, activeOnly bool) ([]entity.InvestmentThesis, error)
	// Update writes the editable columns of thesis. next_scan_at is written only when reschedule is set.
	Update(ctx context.Context, thesis *entity.InvestmentThesis, reschedule bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	// FindDue returns active theses whose next scan is unset or not after now.
	FindDue(ctx context.Context, now time.Time) ([]entity.InvestmentThesis, error)
	MarkScanned(ctx context.Context, id uuid.UUID, lastScanAt, nextScanAt time.Time) error
}

type thesisRepository struct {
	db *gorm.DB
}

// NewThesisRepository creates a new ThesisRepository.
func NewThesisRepository(db *gorm.DB) ThesisRepository {
	return &thesisRepository{db: db}
}

func (r *thesisRepository) Create(ctx context.Context, thesis *entity.InvestmentThesis) error {
	return r.db.WithContext(ctx).Create(thesis).Error
}

func (r *thesisRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.InvestmentThesis, error) {
	var thesis entity.InvestmentThesis
	if err := r.db.WithContext(ctx).First(&thesis, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &thesis, nil
}

func (r *thesisRepository) List(ctx context.Context, activeOnly bool) ([]entity.InvestmentThesis, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var theses []entity.InvestmentThesis
	if err := query.Find(&theses).Error; err != nil {
		return nil, err
	}
	return theses, nil
}

var thesisEditableColumns = []string{"title", "content", "is_active", "scan_frequency", "candidates_per_scan", "updated_at"}

func (r *thesisRepository) Update(ctx context.Context, thesis *entity.InvestmentThesis, reschedule bool) error {
	columns := thesisEditableColumns
	if reschedule {
		columns = append(append([]string{}, columns...), "next_scan_at")
	}
	result := r.db.WithContext(ctx).Model(thesis).Select(columns).Updates(thesis)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *thesisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.InvestmentThesis{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *thesisRepository) FindDue(ctx context.Context, now time.Time) ([]entity.InvestmentThesis, error) {
	var theses []entity.InvestmentThesis
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("next_scan_at IS NULL OR next_scan_at <= ?", now).
		Order("next_scan_at ASC").
		Find(&theses).Error
	if err != nil {
		return nil, err
	}
	return theses, nil
}

func (r *thesisRepository) MarkScanned(ctx context.Context, id uuid.UUID, lastScanAt, nextScanAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&entity.InvestmentThesis{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_scan_at": lastScanAt,
			"next_scan_at": nextScanAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

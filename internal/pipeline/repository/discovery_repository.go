package repository

import (
	"context"
	"errors"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/dto"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DiscoveryRepository persists discovery results.
type DiscoveryRepository interface {
	Create(ctx context.Context, result *entity.DiscoveryResult) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.DiscoveryResult, error)
	List(ctx context.Context, filter dto.DiscoveryFilter) ([]entity.DiscoveryResult, error)
	// PendingNames returns the names of results not yet added to the pipeline.
	PendingNames(ctx context.Context) ([]string, error)
	// AddCompany flips is_added_to_pipeline to true if it is still false and
	// inserts company in the same transaction. It reports whether this call
	// performed the flip; when it did not, nothing is written.
	AddCompany(ctx context.Context, id uuid.UUID, company *entity.Company) (bool, error)
	// DeletePending removes a result that was not added to the pipeline.
	DeletePending(ctx context.Context, id uuid.UUID) (bool, error)
}

type discoveryRepository struct {
	db *gorm.DB
}

// NewDiscoveryRepository creates a new DiscoveryRepository.
func NewDiscoveryRepository(db *gorm.DB) DiscoveryRepository {
	return &discoveryRepository{db: db}
}

func (r *discoveryRepository) Create(ctx context.Context, result *entity.DiscoveryResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *discoveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.DiscoveryResult, error) {
	var result entity.DiscoveryResult
	if err := r.db.WithContext(ctx).First(&result, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &result, nil
}

func (r *discoveryRepository) List(ctx context.Context, filter dto.DiscoveryFilter) ([]entity.DiscoveryResult, error) {
	query := r.db.WithContext(ctx).Model(&entity.DiscoveryResult{})
	switch filter.Status {
	case "", "pending":
		query = query.Where("is_added_to_pipeline = ?", false)
	case "added":
		query = query.Where("is_added_to_pipeline = ?", true)
	}
	if filter.ThesisID != "" {
		query = query.Where("thesis_id = ?", filter.ThesisID)
	}

	var results []entity.DiscoveryResult
	if err := query.Order("discovered_at DESC").Order("match_score DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *discoveryRepository) PendingNames(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Model(&entity.DiscoveryResult{}).
		Where("is_added_to_pipeline = ?", false).
		Order("company_name ASC").
		Pluck("company_name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

var errAlreadyFlipped = errors.New("discovery result already added")

func (r *discoveryRepository) AddCompany(ctx context.Context, id uuid.UUID, company *entity.Company) (bool, error) {
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&entity.DiscoveryResult{}).
			Where("id = ? AND is_added_to_pipeline = ?", id, false).
			Updates(map[string]any{
				"is_added_to_pipeline": true,
				"added_company_id":     company.ID,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return errAlreadyFlipped
		}
		return tx.Create(company).Error
	})
	if errors.Is(err, errAlreadyFlipped) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *discoveryRepository) DeletePending(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND is_added_to_pipeline = ?", id, false).
		Delete(&entity.DiscoveryResult{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

package repository

import (
	"context"

	"golang-deal-scout/internal/entity"
	"golang-deal-scout/internal/pipeline/dto"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentRepository persists document metadata. Object bytes live in the
// ObjectStorage.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.CompanyDocument) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.CompanyDocument, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.CompanyDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *entity.CompanyDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.CompanyDocument, error) {
	var doc entity.CompanyDocument
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func (r *documentRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.CompanyDocument, error) {
	var docs []entity.CompanyDocument
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at DESC").Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.CompanyDocument{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return dto.ErrNotFound
	}
	return nil
}

package repository

import (
	"context"

	"golang-deal-scout/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NoteRepository persists company notes.
type NoteRepository interface {
	Create(ctx context.Context, note *entity.CompanyNote) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.CompanyNote, error)
}

type noteRepository struct {
	db *gorm.DB
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *entity.CompanyNote) error {
	return r.db.WithContext(ctx).Create(note).Error
}

func (r *noteRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.CompanyNote, error) {
	var notes []entity.CompanyNote
	err := r.db.WithContext(ctx).Where("company_id = ?", companyID).Order("created_at DESC").Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

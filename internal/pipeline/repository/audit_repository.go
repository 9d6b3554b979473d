package repository

import (
	"context"

	"golang-deal-scout/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditRepository appends and reads deal lifecycle records. Records are never
// updated or deleted.
type AuditRepository interface {
	Append(ctx context.Context, record *entity.DealAuditLog) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.DealAuditLog, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, record *entity.DealAuditLog) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *auditRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.DealAuditLog, error) {
	var records []entity.DealAuditLog
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

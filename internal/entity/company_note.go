package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanyNote is a free-text note attached to a company.
type CompanyNote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Author    string    `json:"author"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CompanyNote) TableName() string {
	return "company_notes"
}

func (n *CompanyNote) BeforeCreate(tx *gorm.DB) error {
	ensureID(&n.ID)
	return nil
}

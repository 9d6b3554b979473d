package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentStatus is the text-extraction state of an uploaded document.
type DocumentStatus string

const (
	DocumentProcessed   DocumentStatus = "processed"
	DocumentUnsupported DocumentStatus = "unsupported"
	DocumentFailed      DocumentStatus = "failed"
)

// CompanyDocument is a file attachment stored in object storage.
type CompanyDocument struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	FileName         string         `gorm:"not null" json:"file_name"`
	ContentType      string         `json:"content_type"`
	SizeBytes        int64          `json:"size_bytes"`
	StorageKey       string         `gorm:"not null;uniqueIndex" json:"storage_key"`
	ProcessingStatus DocumentStatus `gorm:"size:16;not null" json:"processing_status"`
	ProcessingError  *string        `json:"processing_error,omitempty"`
	ExtractedText    *string        `gorm:"type:text" json:"-"`
	UploadedBy       string         `json:"uploaded_by"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (CompanyDocument) TableName() string {
	return "company_documents"
}

func (d *CompanyDocument) BeforeCreate(tx *gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

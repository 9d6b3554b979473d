package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions.
const (
	AuditCompanyCreated   = "company_created"
	AuditCompanyImported  = "company_imported"
	AuditCompanyUpdated   = "company_updated"
	AuditStageChanged     = "stage_changed"
	AuditDiscoveryAdded   = "discovery_added"
	AuditEnriched         = "enriched"
	AuditDocumentUploaded = "document_uploaded"
	AuditDocumentDeleted  = "document_deleted"
)

// DealAuditLog is an append-only lifecycle record for a company.
type DealAuditLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Action    string         `gorm:"size:32;not null" json:"action"`
	FromStage *PipelineStage `gorm:"size:2" json:"from_stage,omitempty"`
	ToStage   *PipelineStage `gorm:"size:2" json:"to_stage,omitempty"`
	Actor     string         `json:"actor"`
	Details   datatypes.JSON `json:"details,omitempty" swaggertype:"object"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the DealAuditLog model.
func (DealAuditLog) TableName() string {
	return "deal_audit_logs"
}

// BeforeCreate assigns a UUID when none was set.
func (a *DealAuditLog) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

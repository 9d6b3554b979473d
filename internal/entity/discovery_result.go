package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DiscoveryResult is a candidate company proposed by a discovery run.
// IsAddedToPipeline flips to true exactly once, when the candidate is promoted.
type DiscoveryResult struct {
	ID                      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ThesisID                *uuid.UUID     `gorm:"type:uuid;index" json:"thesis_id"`
	ThesisSnapshot          string         `gorm:"type:text" json:"thesis_snapshot"`
	CompanyName             string         `gorm:"not null" json:"company_name"`
	Sector                  *string        `json:"sector"`
	Description             *string        `gorm:"type:text" json:"description"`
	MatchScore              *float64       `json:"match_score"`
	MatchReason             *string        `gorm:"type:text" json:"match_reason"`
	Website                 *string        `json:"website"`
	EstimatedRevenueUSDMn   *float64       `gorm:"column:estimated_revenue_usd_mn" json:"estimated_revenue_usd_mn"`
	EstimatedValuationUSDMn *float64       `gorm:"column:estimated_valuation_usd_mn" json:"estimated_valuation_usd_mn"`
	RawPayload              datatypes.JSON `json:"raw_payload" swaggertype:"object"`
	IsAddedToPipeline       bool           `gorm:"not null;default:false;index" json:"is_added_to_pipeline"`
	AddedCompanyID          *uuid.UUID     `gorm:"type:uuid" json:"added_company_id"`
	DiscoveredAt            time.Time      `gorm:"not null" json:"discovered_at"`
}

// TableName specifies the table name for the DiscoveryResult model.
func (DiscoveryResult) TableName() string {
	return "discovery_results"
}

// BeforeCreate assigns a UUID when none was set.
func (d *DiscoveryResult) BeforeCreate(tx *gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

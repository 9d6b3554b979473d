package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanFrequency is how often a thesis should be re-scanned.
type ScanFrequency string

const (
	ScanDaily   ScanFrequency = "daily"
	ScanWeekly  ScanFrequency = "weekly"
	ScanMonthly ScanFrequency = "monthly"
)

// Valid reports whether f is a known frequency.
func (f ScanFrequency) Valid() bool {
	switch f {
	case ScanDaily, ScanWeekly, ScanMonthly:
		return true
	}
	return false
}

// InvestmentThesis describes the acquisition criteria that drive discovery runs.
type InvestmentThesis struct {
	ID                uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Title             string        `gorm:"not null" json:"title"`
	Content           string        `gorm:"type:text;not null" json:"content"`
	IsActive          bool          `gorm:"not null" json:"is_active"`
	ScanFrequency     ScanFrequency `gorm:"size:16;not null;default:weekly" json:"scan_frequency"`
	LastScanAt        *time.Time    `json:"last_scan_at"`
	NextScanAt        *time.Time    `gorm:"index" json:"next_scan_at"`
	CandidatesPerScan int           `gorm:"not null;default:10" json:"candidates_per_scan"`
	CreatedBy         string        `json:"created_by"`
	CreatedAt         time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the InvestmentThesis model.
func (InvestmentThesis) TableName() string {
	return "investment_theses"
}

// BeforeCreate assigns a UUID when none was set.
func (t *InvestmentThesis) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

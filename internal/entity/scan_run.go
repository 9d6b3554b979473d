package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScanTrigger says what started a discovery run.
type ScanTrigger string

const (
	TriggerManual    ScanTrigger = "manual"
	TriggerQueued    ScanTrigger = "queued"
	TriggerScheduled ScanTrigger = "scheduled"
	TriggerAdHoc     ScanTrigger = "adhoc"
)

// ScanRunStatus is the lifecycle state of a discovery run.
type ScanRunStatus string

const (
	ScanRunRunning   ScanRunStatus = "running"
	ScanRunCompleted ScanRunStatus = "completed"
	ScanRunFailed    ScanRunStatus = "failed"
)

// ScanRun records one discovery run and its outcome counts.
type ScanRun struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ThesisID    *uuid.UUID    `gorm:"type:uuid;index" json:"thesis_id,omitempty"`
	Trigger     ScanTrigger   `gorm:"size:16;not null" json:"trigger"`
	Status      ScanRunStatus `gorm:"size:16;not null" json:"status"`
	Inserted    int           `gorm:"not null;default:0" json:"inserted"`
	Skipped     int           `gorm:"not null;default:0" json:"skipped"`
	Failed      int           `gorm:"not null;default:0" json:"failed"`
	Error       *string       `json:"error,omitempty"`
	StartedAt   time.Time     `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// TableName specifies the table name for the ScanRun model.
func (ScanRun) TableName() string {
	return "scan_runs"
}

// BeforeCreate assigns a UUID when none was set.
func (r *ScanRun) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

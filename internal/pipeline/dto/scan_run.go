package dto

import "time"

// ScanRunResponse is the DTO for API responses containing a discovery run.
type ScanRunResponse struct {
	ID          string     `json:"id"`
	ThesisID    string     `json:"thesis_id,omitempty"`
	Trigger     string     `json:"trigger"`
	Status      string     `json:"status"`
	Inserted    int        `json:"inserted"`
	Skipped     int        `json:"skipped"`
	Failed      int        `json:"failed"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Duration    int64      `json:"duration_ms"`
}

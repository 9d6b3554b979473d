package dto

// CreateThesisRequest is the DTO for creating an investment thesis.
type CreateThesisRequest struct {
	Title             string `json:"title" validate:"required,max=255"`
	Content           string `json:"content" validate:"required"`
	IsActive          *bool  `json:"is_active"`
	ScanFrequency     string `json:"scan_frequency" validate:"omitempty,oneof=daily weekly monthly"`
	CandidatesPerScan int    `json:"candidates_per_scan" validate:"omitempty,min=1,max=50"`
}

// UpdateThesisRequest is the DTO for updating an investment thesis.
type UpdateThesisRequest struct {
	Title             *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content           *string `json:"content" validate:"omitempty,min=1"`
	IsActive          *bool   `json:"is_active"`
	ScanFrequency     *string `json:"scan_frequency" validate:"omitempty,oneof=daily weekly monthly"`
	CandidatesPerScan *int    `json:"candidates_per_scan" validate:"omitempty,min=1,max=50"`
}

// ScanRequestMessage is published to the scan stream for asynchronous runs.
type ScanRequestMessage struct {
	ThesisID    string `json:"thesis_id"`
	RequestedBy string `json:"requested_by"`
}

// ScanAcceptedResponse is returned when a scan was queued.
type ScanAcceptedResponse struct {
	ThesisID  string `json:"thesis_id"`
	MessageID string `json:"message_id"`
}

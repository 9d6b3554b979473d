package dto

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAgentNotConfigured is returned by every agent call when no API key is configured.
	ErrAgentNotConfigured = errors.New("agent is not configured")
	// ErrStorageNotConfigured is returned by document operations when no bucket is configured.
	ErrStorageNotConfigured = errors.New("object storage is not configured")
	// ErrQueueNotConfigured is returned by asynchronous scan requests when no redis is configured.
	ErrQueueNotConfigured = errors.New("scan queue is not configured")
	// ErrAlreadyAdded is returned when a discovery result was already promoted to the pipeline.
	ErrAlreadyAdded = errors.New("discovery result already added to pipeline")
	// ErrStageRegression is returned when a promotion does not move a company forward.
	ErrStageRegression = errors.New("pipeline stage can only advance")
	// ErrValidation marks invalid input detected below the HTTP layer.
	ErrValidation = errors.New("validation failed")
)

// Error codes returned alongside selected error responses.
const (
	CodeAgentNotConfigured   = "agent_not_configured"
	CodeStorageNotConfigured = "storage_not_configured"
	CodeQueueNotConfigured   = "queue_not_configured"
)

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// FieldError is an ErrValidation carrying the offending fields.
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string {
	return ErrValidation.Error()
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

// NewFieldError builds a FieldError for a single field.
func NewFieldError(field, problem string) *FieldError {
	return &FieldError{Fields: map[string]string{field: problem}}
}

package dto

import "time"

// SignedURLResponse carries a presigned object URL.
type SignedURLResponse struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UploadURLRequest asks for a presigned upload URL.
type UploadURLRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type"`
}

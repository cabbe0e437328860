package domain

import "time"

type AnimalImage struct {
	ID           string    `json:"id"`
	AnimalID     string    `json:"animal_id"`
	URL          string    `json:"url"`
	BlobName     string    `json:"blob_name"`
	Caption      string    `json:"caption"`
	DisplayOrder int       `json:"display_order"`
	IsPrimary    bool      `json:"is_primary"`
	UploadedBy   *string   `json:"uploaded_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type AnimalDocument struct {
	ID           string    `json:"id"`
	AnimalID     string    `json:"animal_id"`
	URL          string    `json:"url"`
	BlobName     string    `json:"blob_name"`
	FileName     string    `json:"file_name"`
	DocumentType string    `json:"document_type"`
	Description  string    `json:"description"`
	UploadedBy   *string   `json:"uploaded_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// UploadTicket is a short-lived grant for a client to write one blob directly.
type UploadTicket struct {
	BlobName  string    `json:"blob_name"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type DownloadTicket struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

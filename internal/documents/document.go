// Package documents implements the regulatory document domain.
// It provides types, data access, and business logic for document
// upload, registration, metadata management, and blob storage integration.
package documents

import (
	"time"

	"github.com/google/uuid"
)

// Document represents an uploaded regulatory document within a policy
// space, with its metadata and blob storage reference.
type Document struct {
	ID               uuid.UUID `json:"id"`
	PolicySpaceID    string    `json:"policy_space_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	SizeBytes        int64     `json:"size_bytes"`
	PageCount        *int      `json:"page_count"`
	StorageKey       string    `json:"storage_key"`
	Description      string    `json:"description"`
	CreatedBy        string    `json:"created_by"`
	Status           string    `json:"status"`
	UploadedAt       time.Time `json:"uploaded_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreateCommand carries the data needed to upload and register a new
// document. Data holds the raw file bytes. PageCount is optional and may
// be extracted by the caller via pdfcpu; nil values are stored as NULL.
type CreateCommand struct {
	Data          []byte
	Filename      string
	ContentType   string
	PolicySpaceID string
	CreatedBy     string
	Description   string
	PageCount     *int
}

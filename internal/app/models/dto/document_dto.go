package dto

import (
	"github.com/unigate/admissions/internal/app/models"
)

// DocumentResponse is a stored document with a short-lived download link
type DocumentResponse struct {
	*models.Document
	URL string `json:"url,omitempty" example:"http://localhost:8080/api/v1/files?token=..."`
}

// UploadResponse lists the documents created by one upload
type UploadResponse struct {
	Documents []*models.Document `json:"documents"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is the metadata row of an uploaded application file
type Document struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	StudentID      uuid.UUID    `json:"studentId" db:"student_id"`
	TermID         uuid.UUID    `json:"termId" db:"term_id"`
	AcademicYearID uuid.UUID    `json:"academicYearId" db:"academic_year_id"`
	DocumentType   DocumentType `json:"documentType" db:"document_type" example:"transcript"`
	FileName       string       `json:"fileName" db:"file_name" example:"transcript.pdf"`
	StoragePath    string       `json:"storagePath" db:"storage_path" example:"transcripts/7b4c..._1717171717171_transcript.pdf"`
	ContentType    string       `json:"contentType" db:"content_type" example:"application/pdf"`
	FileSize       int64        `json:"fileSize" db:"file_size"`
	CountryID      *uuid.UUID   `json:"countryId,omitempty" db:"country_id"`
	IsActive       bool         `json:"isActive" db:"is_active"`
	CreatedAt      time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time    `json:"updatedAt" db:"updated_at"`
}

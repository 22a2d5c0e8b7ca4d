package models

// Role names stored in the roles table
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Status codes seeded into application_status
const (
	StatusDraft       = "DRAFT"
	StatusSubmitted   = "SUBMITTED"
	StatusUnderReview = "UNDER_REVIEW"
	StatusApproved    = "APPROVED"
	StatusRejected    = "REJECTED"
)

// DocumentType identifies the kind of uploaded application document
type DocumentType string

const (
	DocumentNationalID DocumentType = "national_id"
	DocumentTranscript DocumentType = "transcript"
)

// Folder is the storage prefix documents of this type are written under
func (t DocumentType) Folder() string {
	switch t {
	case DocumentNationalID:
		return "national_id"
	case DocumentTranscript:
		return "transcripts"
	}
	return string(t)
}

// Valid reports whether t is a known document type
func (t DocumentType) Valid() bool {
	return t == DocumentNationalID || t == DocumentTranscript
}

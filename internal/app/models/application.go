package models

import (
	"time"

	"github.com/google/uuid"
)

// Application is one admission request of a student for a term and academic year.
// (student_id, term_id, academic_year_id) is unique.
type Application struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	StudentID         uuid.UUID  `json:"studentId" db:"student_id"`
	TermID            uuid.UUID  `json:"termId" db:"term_id"`
	AcademicYearID    uuid.UUID  `json:"academicYearId" db:"academic_year_id"`
	DegreeProgramID   *uuid.UUID `json:"degreeProgramId,omitempty" db:"degree_program_id"`
	AcademicLevelID   *uuid.UUID `json:"academicLevelId,omitempty" db:"academic_level_id"`
	StatusID          *uuid.UUID `json:"statusId,omitempty" db:"status_id"`
	StudentTypeID     *uuid.UUID `json:"studentTypeId,omitempty" db:"student_type_id"`
	ScholarshipID     *uuid.UUID `json:"scholarshipId,omitempty" db:"scholarship_id"`
	StudentLocationID *uuid.UUID `json:"studentLocationId,omitempty" db:"student_location_id"`
	Notes             *string    `json:"notes,omitempty" db:"notes"`
	TermCondition     bool       `json:"termCondition" db:"term_condition"`
	SubmittedAt       *time.Time `json:"submittedAt,omitempty" db:"submitted_at"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`
}

// IsSubmitted reports whether the final wizard step has been completed
func (a *Application) IsSubmitted() bool {
	return a != nil && a.TermCondition
}

// HasEducation reports whether the education step has been completed
func (a *Application) HasEducation() bool {
	return a != nil && a.DegreeProgramID != nil && a.AcademicLevelID != nil
}

// ApplicationKey is the natural key of an application
type ApplicationKey struct {
	StudentID      uuid.UUID
	TermID         uuid.UUID
	AcademicYearID uuid.UUID
}

// ApplicationSummary is an application with its lookup references resolved to
// display names, as shown on the student dashboard and the admin screens.
type ApplicationSummary struct {
	Application
	TermName            *string `json:"termName,omitempty"`
	AcademicYearName    *string `json:"academicYearName,omitempty"`
	AcademicLevelName   *string `json:"academicLevelName,omitempty"`
	DegreeProgramName   *string `json:"degreeProgramName,omitempty"`
	StatusCode          *string `json:"statusCode,omitempty"`
	StatusName          *string `json:"statusName,omitempty"`
	ScholarshipName     *string `json:"scholarshipName,omitempty"`
	StudentTypeName     *string `json:"studentTypeName,omitempty"`
	StudentLocationName *string `json:"studentLocationName,omitempty"`
	DocumentCount       int     `json:"documentCount"`
}

package dto

import (
	"github.com/google/uuid"

	"github.com/unigate/admissions/internal/app/models"
)

// EducationRequest is the second wizard step
type EducationRequest struct {
	TermID          uuid.UUID `json:"termId" binding:"required"`
	AcademicYearID  uuid.UUID `json:"academicYearId" binding:"required"`
	AcademicLevelID uuid.UUID `json:"academicLevelId" binding:"required"`
	DegreeProgramID uuid.UUID `json:"degreeProgramId" binding:"required"`
}

// SubmitRequest is the final wizard step
type SubmitRequest struct {
	TermID         uuid.UUID `json:"termId" binding:"required"`
	AcademicYearID uuid.UUID `json:"academicYearId" binding:"required"`
	TermsAccepted  bool      `json:"termsAccepted"`
}

// ApplicationKeyQuery selects an application of the signed-in student
type ApplicationKeyQuery struct {
	TermID         string `form:"termId" binding:"required,uuid"`
	AcademicYearID string `form:"academicYearId" binding:"required,uuid"`
}

// ProgressResponse tells the wizard where to resume
type ProgressResponse struct {
	NextStep    int                 `json:"nextStep" example:"2"`
	Submitted   bool                `json:"submitted"`
	Student     *models.Student     `json:"student,omitempty"`
	Application *models.Application `json:"application,omitempty"`
	Documents   []*DocumentResponse `json:"documents"`
}

// ReviewRequest carries the fields an administrator can change on an application
type ReviewRequest struct {
	StatusID          *uuid.UUID `json:"statusId,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	ScholarshipID     *uuid.UUID `json:"scholarshipId,omitempty"`
	StudentTypeID     *uuid.UUID `json:"studentTypeId,omitempty"`
	StudentLocationID *uuid.UUID `json:"studentLocationId,omitempty"`
}

// IntakePersonalInfo is the personal part of a one-shot submission
type IntakePersonalInfo struct {
	Email       string  `json:"email"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Phone       *string `json:"phone,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty" example:"2004-05-17"`
}

// IntakeEducationInfo is the education part of a one-shot submission
type IntakeEducationInfo struct {
	TermID          uuid.UUID `json:"termId"`
	AcademicYearID  uuid.UUID `json:"academicYearId"`
	AcademicLevelID uuid.UUID `json:"academicLevelId"`
	DegreeProgramID uuid.UUID `json:"degreeProgramId"`
}

// IntakeRequest is the one-shot application submission
type IntakeRequest struct {
	PersonalInfo  *IntakePersonalInfo  `json:"personalInfo"`
	EducationInfo *IntakeEducationInfo `json:"educationInfo"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Student is the applicant profile owned by one user account
type Student struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	UserID               uuid.UUID  `json:"userId" db:"user_id"`
	SchoolID             *string    `json:"schoolId,omitempty" db:"school_id" example:"S-2024-0113"`
	FirstName            string     `json:"firstName" db:"first_name" example:"Jane"`
	MiddleName           *string    `json:"middleName,omitempty" db:"middle_name"`
	LastName             string     `json:"lastName" db:"last_name" example:"Doe"`
	AdditionalName       *string    `json:"additionalName,omitempty" db:"additional_name"`
	Email                string     `json:"email" db:"email" example:"jane.doe@example.com"`
	WhatsApp             *string    `json:"whatsApp,omitempty" db:"whats_app"`
	Phone                *string    `json:"phone,omitempty" db:"phone"`
	DateOfBirth          *time.Time `json:"dateOfBirth,omitempty" db:"date_of_birth"`
	GenderID             *uuid.UUID `json:"genderId,omitempty" db:"gender_id"`
	NationalityCountryID *uuid.UUID `json:"nationalityCountryId,omitempty" db:"nationality_country_id"`
	CurrentCountryID     *uuid.UUID `json:"currentCountryId,omitempty" db:"current_country_id"`
	IsActive             bool       `json:"isActive" db:"is_active"`
	CreatedAt            time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time  `json:"updatedAt" db:"updated_at"`
}

// HasPersonalInfo reports whether the first wizard step has been completed
func (s *Student) HasPersonalInfo() bool {
	return s != nil && s.FirstName != "" && s.LastName != ""
}

// StudentOverview is one row of the admin students screen: a student joined
// with the most recent application and the names it resolves to.
type StudentOverview struct {
	Student
	ApplicationID      *uuid.UUID `json:"applicationId,omitempty"`
	TermName           *string    `json:"termName,omitempty"`
	AcademicYearName   *string    `json:"academicYearName,omitempty"`
	StatusName         *string    `json:"statusName,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	CurrentCountryName *string    `json:"currentCountryName,omitempty"`
}

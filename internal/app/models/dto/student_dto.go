package dto

import (
	"github.com/google/uuid"
)

// PersonalInfoRequest is the first wizard step
type PersonalInfoRequest struct {
	FirstName            string     `json:"firstName" binding:"required,max=100" example:"Jane"`
	MiddleName           *string    `json:"middleName,omitempty" binding:"omitempty,max=100"`
	LastName             string     `json:"lastName" binding:"required,max=100" example:"Doe"`
	AdditionalName       *string    `json:"additionalName,omitempty" binding:"omitempty,max=100"`
	Email                string     `json:"email,omitempty" binding:"omitempty,email" example:"jane.doe@example.com"`
	WhatsApp             *string    `json:"whatsApp,omitempty" binding:"omitempty,phone" example:"+254 700 000000"`
	Phone                *string    `json:"phone,omitempty" binding:"omitempty,phone" example:"+254 700 000000"`
	DateOfBirth          *string    `json:"dateOfBirth,omitempty" binding:"omitempty,datetime=2006-01-02" example:"2004-05-17"`
	GenderID             *uuid.UUID `json:"genderId,omitempty"`
	NationalityCountryID *uuid.UUID `json:"nationalityCountryId,omitempty"`
	CurrentCountryID     *uuid.UUID `json:"currentCountryId,omitempty"`
}

// StudentListQuery holds the filters of the admin students screen
type StudentListQuery struct {
	Status       string `form:"status"`
	Term         string `form:"term"`
	AcademicYear string `form:"academicYear"`
	Country      string `form:"country"`
	Search       string `form:"search"`
	SortBy       string `form:"sortBy" example:"first_name"`
	SortDir      string `form:"sortDir" binding:"omitempty,oneof=asc desc ASC DESC" example:"asc"`
}

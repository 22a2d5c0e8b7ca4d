package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unigate/admissions/internal/pkg/validation"
)

// LookupBase carries the columns every lookup table shares
type LookupBase struct {
	ID        uuid.UUID `json:"id"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Base gives the lookup engine access to the shared columns
func (b *LookupBase) Base() *LookupBase { return b }

// LookupRecord is implemented by every lookup table model. Values and the
// leading entries of Targets follow the writable column order of the table's
// definition; read-only joined columns come last in Targets.
type LookupRecord interface {
	Base() *LookupBase
	Values() []any
	Targets() []any
	Normalize()
	Validate() error
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Term is an intake period such as Fall or Spring
type Term struct {
	LookupBase
	TermCode    string  `json:"termCode" example:"FALL" validate:"lookupcode"`
	TermName    string  `json:"termName" example:"Fall"`
	Description *string `json:"description,omitempty"`
}

func (t *Term) Values() []any  { return []any{t.TermCode, t.TermName, t.Description} }
func (t *Term) Targets() []any { return []any{&t.TermCode, &t.TermName, &t.Description} }
func (t *Term) Normalize() {
	t.TermCode = strings.ToUpper(strings.TrimSpace(t.TermCode))
	t.TermName = strings.TrimSpace(t.TermName)
	t.Description = trimPtr(t.Description)
}
func (t *Term) Validate() error {
	if t.TermCode == "" || t.TermName == "" {
		return errors.New("Term code and name are required!")
	}
	return validation.CheckFormat(t)
}

// AcademicYear is a year an application is made for, e.g. 2025-2026
type AcademicYear struct {
	LookupBase
	YearCode    string  `json:"yearCode" example:"2025-2026" validate:"lookupcode"`
	YearName    string  `json:"yearName" example:"2025 - 2026"`
	Description *string `json:"description,omitempty"`
}

func (a *AcademicYear) Values() []any  { return []any{a.YearCode, a.YearName, a.Description} }
func (a *AcademicYear) Targets() []any { return []any{&a.YearCode, &a.YearName, &a.Description} }
func (a *AcademicYear) Normalize() {
	a.YearCode = strings.TrimSpace(a.YearCode)
	a.YearName = strings.TrimSpace(a.YearName)
	a.Description = trimPtr(a.Description)
}
func (a *AcademicYear) Validate() error {
	if a.YearCode == "" || a.YearName == "" {
		return errors.New("Year code and name are required!")
	}
	return validation.CheckFormat(a)
}

// AcademicLevel is a study level such as Undergraduate
type AcademicLevel struct {
	LookupBase
	LevelName string `json:"levelName" example:"Undergraduate"`
}

func (a *AcademicLevel) Values() []any  { return []any{a.LevelName} }
func (a *AcademicLevel) Targets() []any { return []any{&a.LevelName} }
func (a *AcademicLevel) Normalize()     { a.LevelName = strings.TrimSpace(a.LevelName) }
func (a *AcademicLevel) Validate() error {
	if a.LevelName == "" {
		return errors.New("Level name is required!")
	}
	return nil
}

// DegreeProgram belongs to an academic level
type DegreeProgram struct {
	LookupBase
	ProgramName string     `json:"programName" example:"Computer Science"`
	ProgramCode string     `json:"programCode" example:"BSC-CS" validate:"lookupcode"`
	LevelID     *uuid.UUID `json:"levelId,omitempty"`
	Description *string    `json:"description,omitempty"`
	Div         *string    `json:"div,omitempty" example:"Engineering"`
	Degree      *string    `json:"degree,omitempty" example:"BSc"`
	LevelName   *string    `json:"levelName,omitempty"` // read-only, joined from academic_level
}

func (d *DegreeProgram) Values() []any {
	return []any{d.ProgramName, d.ProgramCode, d.LevelID, d.Description, d.Div, d.Degree}
}
func (d *DegreeProgram) Targets() []any {
	return []any{&d.ProgramName, &d.ProgramCode, &d.LevelID, &d.Description, &d.Div, &d.Degree, &d.LevelName}
}
func (d *DegreeProgram) Normalize() {
	d.ProgramName = strings.TrimSpace(d.ProgramName)
	d.ProgramCode = strings.TrimSpace(d.ProgramCode)
	d.Description = trimPtr(d.Description)
	d.Div = trimPtr(d.Div)
	d.Degree = trimPtr(d.Degree)
}
func (d *DegreeProgram) Validate() error {
	if d.ProgramName == "" || d.ProgramCode == "" {
		return errors.New("Program name and code are required!")
	}
	if d.LevelID == nil || *d.LevelID == uuid.Nil {
		return errors.New("Academic level is required!")
	}
	return validation.CheckFormat(d)
}

// Country with its ISO 3166 codes
type Country struct {
	LookupBase
	CountryName string `json:"countryName" example:"Kenya"`
	ISO2        string `json:"iso2" example:"KE" validate:"iso2"`
	ISO3        string `json:"iso3" example:"KEN" validate:"iso3"`
}

func (c *Country) Values() []any  { return []any{c.CountryName, c.ISO2, c.ISO3} }
func (c *Country) Targets() []any { return []any{&c.CountryName, &c.ISO2, &c.ISO3} }
func (c *Country) Normalize() {
	c.CountryName = strings.TrimSpace(c.CountryName)
	c.ISO2 = strings.ToUpper(strings.TrimSpace(c.ISO2))
	c.ISO3 = strings.ToUpper(strings.TrimSpace(c.ISO3))
}
func (c *Country) Validate() error {
	if c.CountryName == "" || c.ISO2 == "" || c.ISO3 == "" {
		return errors.New("All fields are required.")
	}
	return validation.CheckFormat(c)
}

// ApplicationStatus is a stage of the review workflow
type ApplicationStatus struct {
	LookupBase
	StatusCode  string  `json:"statusCode" example:"SUBMITTED" validate:"lookupcode"`
	StatusName  string  `json:"statusName" example:"Submitted"`
	Description *string `json:"description,omitempty"`
}

func (s *ApplicationStatus) Values() []any  { return []any{s.StatusCode, s.StatusName, s.Description} }
func (s *ApplicationStatus) Targets() []any { return []any{&s.StatusCode, &s.StatusName, &s.Description} }
func (s *ApplicationStatus) Normalize() {
	s.StatusCode = strings.ToUpper(strings.TrimSpace(s.StatusCode))
	s.StatusName = strings.TrimSpace(s.StatusName)
	s.Description = trimPtr(s.Description)
}
func (s *ApplicationStatus) Validate() error {
	if s.StatusCode == "" || s.StatusName == "" {
		return errors.New("Status code and name are required!")
	}
	return validation.CheckFormat(s)
}

// Scholarship that may be awarded on review
type Scholarship struct {
	LookupBase
	ScholarshipCode string  `json:"scholarshipCode" example:"MERIT50" validate:"lookupcode"`
	ScholarshipName string  `json:"scholarshipName" example:"Merit 50%"`
	Description     *string `json:"description,omitempty"`
	Order           int     `json:"order"`
}

func (s *Scholarship) Values() []any {
	return []any{s.ScholarshipCode, s.ScholarshipName, s.Description, s.Order}
}
func (s *Scholarship) Targets() []any {
	return []any{&s.ScholarshipCode, &s.ScholarshipName, &s.Description, &s.Order}
}
func (s *Scholarship) Normalize() {
	s.ScholarshipCode = strings.TrimSpace(s.ScholarshipCode)
	s.ScholarshipName = strings.TrimSpace(s.ScholarshipName)
	s.Description = trimPtr(s.Description)
}
func (s *Scholarship) Validate() error {
	if s.ScholarshipName == "" || s.ScholarshipCode == "" {
		return errors.New("Scholarship name and code are required!")
	}
	return validation.CheckFormat(s)
}

// StudentType classifies applicants, e.g. freshman or transfer
type StudentType struct {
	LookupBase
	StudentCode string  `json:"studentCode" example:"TRANSFER" validate:"lookupcode"`
	TypeName    string  `json:"studentType" example:"Transfer"`
	Description *string `json:"description,omitempty"`
	Order       int     `json:"order"`
}

func (s *StudentType) Values() []any  { return []any{s.StudentCode, s.TypeName, s.Description, s.Order} }
func (s *StudentType) Targets() []any { return []any{&s.StudentCode, &s.TypeName, &s.Description, &s.Order} }
func (s *StudentType) Normalize() {
	s.StudentCode = strings.TrimSpace(s.StudentCode)
	s.TypeName = strings.TrimSpace(s.TypeName)
	s.Description = trimPtr(s.Description)
}
func (s *StudentType) Validate() error {
	if s.StudentCode == "" || s.TypeName == "" {
		return errors.New("Student code and type are required!")
	}
	return validation.CheckFormat(s)
}

// StudentLocation is where the applicant will study from, e.g. on campus or online
type StudentLocation struct {
	LookupBase
	LocationCode string  `json:"locationCode" example:"ONCAMPUS" validate:"lookupcode"`
	LocationName string  `json:"locationName" example:"On campus"`
	Description  *string `json:"description,omitempty"`
}

func (s *StudentLocation) Values() []any  { return []any{s.LocationCode, s.LocationName, s.Description} }
func (s *StudentLocation) Targets() []any { return []any{&s.LocationCode, &s.LocationName, &s.Description} }
func (s *StudentLocation) Normalize() {
	s.LocationCode = strings.TrimSpace(s.LocationCode)
	s.LocationName = strings.TrimSpace(s.LocationName)
	s.Description = trimPtr(s.Description)
}
func (s *StudentLocation) Validate() error {
	if s.LocationCode == "" || s.LocationName == "" {
		return errors.New("Location code and name are required!")
	}
	return validation.CheckFormat(s)
}

// Role a user account can hold
type Role struct {
	LookupBase
	RoleName string `json:"roleName" example:"admin"`
	Order    int    `json:"order"`
}

func (r *Role) Values() []any  { return []any{r.RoleName, r.Order} }
func (r *Role) Targets() []any { return []any{&r.RoleName, &r.Order} }
func (r *Role) Normalize()     { r.RoleName = strings.ToLower(strings.TrimSpace(r.RoleName)) }
func (r *Role) Validate() error {
	if r.RoleName == "" {
		return errors.New("Role name is required!")
	}
	return nil
}

// UserRole assigns a role to a user account
type UserRole struct {
	LookupBase
	UserID    uuid.UUID `json:"userId"`
	RoleID    uuid.UUID `json:"roleId"`
	RoleName  *string   `json:"roleName,omitempty"`  // read-only
	UserEmail *string   `json:"userEmail,omitempty"` // read-only
}

func (u *UserRole) Values() []any  { return []any{u.UserID, u.RoleID} }
func (u *UserRole) Targets() []any { return []any{&u.UserID, &u.RoleID, &u.RoleName, &u.UserEmail} }
func (u *UserRole) Normalize()     {}
func (u *UserRole) Validate() error {
	if u.UserID == uuid.Nil || u.RoleID == uuid.Nil {
		return errors.New("User ID and Role ID are required!")
	}
	return nil
}

// Gender option shown on the personal information step
type Gender struct {
	LookupBase
	GenderName string `json:"genderName" example:"Female"`
}

func (g *Gender) Values() []any  { return []any{g.GenderName} }
func (g *Gender) Targets() []any { return []any{&g.GenderName} }
func (g *Gender) Normalize()     { g.GenderName = strings.TrimSpace(g.GenderName) }
func (g *Gender) Validate() error {
	if g.GenderName == "" {
		return errors.New("Gender name is required!")
	}
	return nil
}

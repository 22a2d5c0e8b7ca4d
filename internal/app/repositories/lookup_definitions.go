package repositories

import "github.com/unigate/admissions/internal/app/models"

// Lookup slugs
const (
	LookupTerms               = "terms"
	LookupAcademicYears       = "academic-years"
	LookupAcademicLevels      = "academic-levels"
	LookupDegreePrograms      = "degree-programs"
	LookupCountries           = "countries"
	LookupApplicationStatuses = "application-statuses"
	LookupScholarships        = "scholarships"
	LookupStudentTypes        = "student-types"
	LookupStudentLocations    = "student-locations"
	LookupRoles               = "roles"
	LookupUserRoles           = "user-roles"
	LookupGenders             = "genders"
)

// Definitions returns every reference table exposed through the lookup API
func Definitions() []LookupDefinition {
	return []LookupDefinition{
		{
			Slug:      LookupTerms,
			Table:     "term",
			Label:     "term",
			Columns:   []string{"term_code", "term_name", "description"},
			OrderBy:   []string{"t.term_name ASC"},
			Public:    true,
			NewRecord: func() models.LookupRecord { return &models.Term{} },
		},
		{
			Slug:      LookupAcademicYears,
			Table:     "academic_year",
			Label:     "academic year",
			Columns:   []string{"year_code", "year_name", "description"},
			OrderBy:   []string{"t.year_name ASC"},
			Public:    true,
			NewRecord: func() models.LookupRecord { return &models.AcademicYear{} },
		},
		{
			Slug:      LookupAcademicLevels,
			Table:     "academic_level",
			Label:     "academic level",
			Columns:   []string{"level_name"},
			OrderBy:   []string{"t.level_name ASC"},
			Public:    true,
			NewRecord: func() models.LookupRecord { return &models.AcademicLevel{} },
		},
		{
			Slug:      LookupDegreePrograms,
			Table:     "degree_programs",
			Label:     "degree program",
			Columns:   []string{"program_name", "program_code", "level_id", "description", "div", "degree"},
			ReadOnly:  []string{"al.level_name"},
			Joins:     []string{"academic_level al ON al.id = t.level_id"},
			OrderBy:   []string{"al.level_name ASC", "t.program_name ASC"},
			Public:    true,
			NewRecord: func() models.LookupRecord { return &models.DegreeProgram{} },
		},
		{
			Slug:      LookupCountries,
			Table:     "country",
			Label:     "country",
			Columns:   []string{"country_name", "iso_2", "iso_3"},
			OrderBy:   []string{"t.country_name ASC"},
			Public:    true,
			NewRecord: func() models.LookupRecord { return &models.Country{} },
		},
		{
			Slug:      LookupApplicationStatuses,
			Table:     "application_status",
			Label:     "application status",
			Columns:   []string{"status_code", "status_name", "description"},
			OrderBy:   []string{"t.status_name ASC"},
			Public:    true,
			NewRecord: func() models.LookupRecord { return &models.ApplicationStatus{} },
		},
		{
			Slug:      LookupScholarships,
			Table:     "scholarships",
			Label:     "scholarship",
			Columns:   []string{"scholarship_code", "scholarship_name", "description", "sort_order"},
			OrderBy:   []string{"t.scholarship_name ASC"},
			NewRecord: func() models.LookupRecord { return &models.Scholarship{} },
		},
		{
			Slug:      LookupStudentTypes,
			Table:     "student_type",
			Label:     "student type",
			Columns:   []string{"student_code", "student_type", "description", "sort_order"},
			OrderBy:   []string{"t.student_type ASC"},
			NewRecord: func() models.LookupRecord { return &models.StudentType{} },
		},
		{
			Slug:      LookupStudentLocations,
			Table:     "student_location",
			Label:     "student location",
			Columns:   []string{"location_code", "location_name", "description"},
			OrderBy:   []string{"t.location_name ASC"},
			NewRecord: func() models.LookupRecord { return &models.StudentLocation{} },
		},
		{
			Slug:      LookupRoles,
			Table:     "roles",
			Label:     "role",
			Columns:   []string{"role_name", "sort_order"},
			OrderBy:   []string{"t.sort_order ASC", "t.role_name ASC"},
			NewRecord: func() models.LookupRecord { return &models.Role{} },
		},
		{
			Slug:     LookupUserRoles,
			Table:    "user_role",
			Label:    "user role",
			Columns:  []string{"user_id", "role_id"},
			ReadOnly: []string{"r.role_name", "u.email"},
			Joins: []string{
				"roles r ON r.id = t.role_id",
				"users u ON u.id = t.user_id",
			},
			OrderBy:   []string{"t.created_at DESC"},
			NewRecord: func() models.LookupRecord { return &models.UserRole{} },
		},
		{
			Slug:      LookupGenders,
			Table:     "gender",
			Label:     "gender",
			Columns:   []string{"gender_name"},
			OrderBy:   []string{"t.gender_name ASC"},
			Public:    true,
			NewRecord: func() models.LookupRecord { return &models.Gender{} },
		},
	}
}

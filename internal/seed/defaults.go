package seed

import (
	appModels "github.com/unigate/admissions/internal/app/models"
	appRepos "github.com/unigate/admissions/internal/app/repositories"
)

type lookupGroup struct {
	slug    string
	records []appModels.LookupRecord
}

func desc(s string) *string { return &s }

// defaultLookups lists the rows a fresh install needs. Roles and statuses are
// referenced by code, so they must exist before anyone signs up.
func defaultLookups() []lookupGroup {
	return []lookupGroup{
		{
			slug: appRepos.LookupRoles,
			records: []appModels.LookupRecord{
				&appModels.Role{RoleName: appModels.RoleAdmin, Order: 1},
				&appModels.Role{RoleName: appModels.RoleStudent, Order: 2},
			},
		},
		{
			slug: appRepos.LookupApplicationStatuses,
			records: []appModels.LookupRecord{
				&appModels.ApplicationStatus{StatusCode: appModels.StatusDraft, StatusName: "Draft", Description: desc("Application is being filled in")},
				&appModels.ApplicationStatus{StatusCode: appModels.StatusSubmitted, StatusName: "Submitted", Description: desc("Waiting for review")},
				&appModels.ApplicationStatus{StatusCode: appModels.StatusUnderReview, StatusName: "Under Review"},
				&appModels.ApplicationStatus{StatusCode: appModels.StatusApproved, StatusName: "Approved"},
				&appModels.ApplicationStatus{StatusCode: appModels.StatusRejected, StatusName: "Rejected"},
			},
		},
		{
			slug: appRepos.LookupTerms,
			records: []appModels.LookupRecord{
				&appModels.Term{TermCode: "FALL", TermName: "Fall"},
				&appModels.Term{TermCode: "SPRING", TermName: "Spring"},
				&appModels.Term{TermCode: "SUMMER", TermName: "Summer"},
			},
		},
		{
			slug: appRepos.LookupGenders,
			records: []appModels.LookupRecord{
				&appModels.Gender{GenderName: "Female"},
				&appModels.Gender{GenderName: "Male"},
			},
		},
		{
			slug: appRepos.LookupAcademicLevels,
			records: []appModels.LookupRecord{
				&appModels.AcademicLevel{LevelName: "Undergraduate"},
				&appModels.AcademicLevel{LevelName: "Graduate"},
			},
		},
		{
			slug: appRepos.LookupCountries,
			records: []appModels.LookupRecord{
				&appModels.Country{CountryName: "Kenya", ISO2: "KE", ISO3: "KEN"},
				&appModels.Country{CountryName: "Nigeria", ISO2: "NG", ISO3: "NGA"},
				&appModels.Country{CountryName: "United Kingdom", ISO2: "GB", ISO3: "GBR"},
				&appModels.Country{CountryName: "United States", ISO2: "US", ISO3: "USA"},
			},
		},
	}
}

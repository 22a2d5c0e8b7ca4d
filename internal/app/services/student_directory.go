package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/helpers"
)

// DefaultStudentSort is the column the admin students screen is sorted by
const DefaultStudentSort = "first_name"

type overviewField func(o *models.StudentOverview) string

// studentSortFields maps the accepted sort keys to the value compared
var studentSortFields = map[string]overviewField{
	"school_id":       func(o *models.StudentOverview) string { return deref(o.SchoolID) },
	"term":            func(o *models.StudentOverview) string { return deref(o.TermName) },
	"academic_year":   func(o *models.StudentOverview) string { return deref(o.AcademicYearName) },
	"status":          func(o *models.StudentOverview) string { return deref(o.StatusName) },
	"notes":           func(o *models.StudentOverview) string { return deref(o.Notes) },
	"first_name":      func(o *models.StudentOverview) string { return o.FirstName },
	"middle_name":     func(o *models.StudentOverview) string { return deref(o.MiddleName) },
	"last_name":       func(o *models.StudentOverview) string { return o.LastName },
	"additional_name": func(o *models.StudentOverview) string { return deref(o.AdditionalName) },
	"date_of_birth":   func(o *models.StudentOverview) string { return helpers.FormatDate(o.DateOfBirth) },
	"current_country": func(o *models.StudentOverview) string { return deref(o.CurrentCountryName) },
}

// searchFields are matched by the free text search, in display order
var searchFields = []string{
	"school_id", "term", "academic_year", "status", "notes",
	"first_name", "middle_name", "last_name", "additional_name",
	"date_of_birth", "current_country",
}

// FilterStudents keeps the overviews matching every filter of q. Matching is case-insensitive.
func FilterStudents(items []*models.StudentOverview, q dto.StudentListQuery) []*models.StudentOverview {
	status := strings.ToLower(strings.TrimSpace(q.Status))
	term := strings.ToLower(strings.TrimSpace(q.Term))
	year := strings.ToLower(strings.TrimSpace(q.AcademicYear))
	country := strings.ToLower(strings.TrimSpace(q.Country))
	search := strings.ToLower(strings.TrimSpace(q.Search))

	filtered := make([]*models.StudentOverview, 0, len(items))
	for _, o := range items {
		if status != "" && strings.ToLower(deref(o.StatusName)) != status {
			continue
		}
		if term != "" && strings.ToLower(deref(o.TermName)) != term {
			continue
		}
		if year != "" && strings.ToLower(deref(o.AcademicYearName)) != year {
			continue
		}
		if country != "" && strings.ToLower(deref(o.CurrentCountryName)) != country {
			continue
		}
		if search != "" && !matchesSearch(o, search) {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered
}

func matchesSearch(o *models.StudentOverview, needle string) bool {
	for _, key := range searchFields {
		if strings.Contains(strings.ToLower(studentSortFields[key](o)), needle) {
			return true
		}
	}
	return false
}

// SortStudents orders items in place by sortBy ("" means first_name) and sortDir (asc|desc)
func SortStudents(items []*models.StudentOverview, sortBy, sortDir string) error {
	if sortBy == "" {
		sortBy = DefaultStudentSort
	}
	field, ok := studentSortFields[sortBy]
	if !ok {
		return apperrors.NewValidationError(fmt.Sprintf("Invalid sort field: %s", sortBy))
	}

	desc := false
	switch strings.ToLower(sortDir) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return apperrors.NewValidationError(fmt.Sprintf("Invalid sort direction: %s", sortDir))
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(field(items[i])), strings.ToLower(field(items[j]))
		if desc {
			return a > b
		}
		return a < b
	})
	return nil
}

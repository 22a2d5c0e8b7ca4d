package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/pkg/apperrors"
)

func strPtr(s string) *string { return &s }

func overview(first, last, term, status, country string, dob string) *models.StudentOverview {
	o := &models.StudentOverview{}
	o.ID = uuid.New()
	o.FirstName = first
	o.LastName = last
	if term != "" {
		o.TermName = strPtr(term)
	}
	if status != "" {
		o.StatusName = strPtr(status)
	}
	if country != "" {
		o.CurrentCountryName = strPtr(country)
	}
	if dob != "" {
		d, _ := time.Parse("2006-01-02", dob)
		o.DateOfBirth = &d
	}
	return o
}

func directory() []*models.StudentOverview {
	return []*models.StudentOverview{
		overview("zara", "Otieno", "Fall", "Submitted", "Kenya", "2003-01-15"),
		overview("Amina", "Mwangi", "Spring", "Draft", "Uganda", "2001-07-30"),
		overview("brian", "Kato", "Fall", "Approved", "Kenya", ""),
	}
}

func firstNames(items []*models.StudentOverview) []string {
	names := make([]string, 0, len(items))
	for _, o := range items {
		names = append(names, o.FirstName)
	}
	return names
}

func TestFilterStudents(t *testing.T) {
	items := directory()

	got := FilterStudents(items, dto.StudentListQuery{Term: "fall"})
	assert.ElementsMatch(t, []string{"zara", "brian"}, firstNames(got))

	got = FilterStudents(items, dto.StudentListQuery{Term: "FALL", Country: "kenya", Status: "approved"})
	assert.Equal(t, []string{"brian"}, firstNames(got))

	got = FilterStudents(items, dto.StudentListQuery{Search: "mwan"})
	assert.Equal(t, []string{"Amina"}, firstNames(got))

	got = FilterStudents(items, dto.StudentListQuery{Search: "2003-01"})
	assert.Equal(t, []string{"zara"}, firstNames(got), "dates are searched in ISO form")

	got = FilterStudents(items, dto.StudentListQuery{Search: "UGANDA"})
	assert.Equal(t, []string{"Amina"}, firstNames(got))

	assert.Len(t, FilterStudents(items, dto.StudentListQuery{}), 3)
}

func TestSortStudents(t *testing.T) {
	items := directory()

	require.NoError(t, SortStudents(items, "", ""))
	assert.Equal(t, []string{"Amina", "brian", "zara"}, firstNames(items), "default is first_name asc, case-insensitive")

	require.NoError(t, SortStudents(items, "last_name", "desc"))
	assert.Equal(t, []string{"zara", "Amina", "brian"}, firstNames(items))

	require.NoError(t, SortStudents(items, "date_of_birth", "asc"))
	assert.Equal(t, []string{"brian", "Amina", "zara"}, firstNames(items), "missing dates sort first")

	err := SortStudents(items, "password_hash", "asc")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	err = SortStudents(items, "term", "sideways")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestListWithLatestApplication_Paginates(t *testing.T) {
	students := newFakeStudents()
	students.overviews = directory()
	svc := NewStudentService(students, newFakeApplications(), zerolog.Nop())

	page, total, err := svc.ListWithLatestApplication(context.Background(), dto.StudentListQuery{SortBy: "first_name"}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"zara"}, firstNames(page))

	_, _, err = svc.ListWithLatestApplication(context.Background(), dto.StudentListQuery{SortBy: "nope"}, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUpdateProfile_BirthDateBeforeToday(t *testing.T) {
	svc := NewStudentService(newFakeStudents(), newFakeApplications(), zerolog.Nop())
	svc.(*studentServiceImpl).now = func() time.Time { return time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	today := "2025-06-01"
	_, err := svc.UpdateProfile(ctx, uuid.New(), "jane@example.com", &dto.PersonalInfoRequest{FirstName: "Jane", LastName: "Doe", DateOfBirth: &today})
	assert.EqualError(t, err, "Date of birth must be in the past")

	yesterday := "2025-05-31"
	student, err := svc.UpdateProfile(ctx, uuid.New(), "jane@example.com", &dto.PersonalInfoRequest{FirstName: "Jane", LastName: "Doe", DateOfBirth: &yesterday})
	require.NoError(t, err)
	assert.Equal(t, yesterday, student.DateOfBirth.Format("2006-01-02"))
}

func TestUpdateProfile_Validation(t *testing.T) {
	svc := NewStudentService(newFakeStudents(), newFakeApplications(), zerolog.Nop())
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.UpdateProfile(ctx, userID, "jane@example.com", &dto.PersonalInfoRequest{FirstName: " ", LastName: "Doe"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")
	_, err = svc.UpdateProfile(ctx, userID, "jane@example.com", &dto.PersonalInfoRequest{FirstName: "Jane", LastName: "Doe", DateOfBirth: &future})
	assert.EqualError(t, err, "Date of birth must be in the past")

	_, err = svc.UpdateProfile(ctx, userID, "jane@example.com", &dto.PersonalInfoRequest{FirstName: "Jane", LastName: "Doe", Phone: strPtr("call me")})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	student, err := svc.UpdateProfile(ctx, userID, "jane@example.com", &dto.PersonalInfoRequest{
		FirstName:   " Jane ",
		LastName:    "Doe",
		MiddleName:  strPtr("  "),
		Phone:       strPtr("+254 700 000000"),
		DateOfBirth: strPtr("2004-05-17"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane", student.FirstName)
	assert.Nil(t, student.MiddleName)
	assert.Equal(t, "jane@example.com", student.Email, "session email is used when none is given")
	assert.Equal(t, "2004-05-17", student.DateOfBirth.Format("2006-01-02"))
}

func TestListApplications_UnknownStudent(t *testing.T) {
	svc := NewStudentService(newFakeStudents(), newFakeApplications(), zerolog.Nop())

	_, err := svc.ListApplications(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

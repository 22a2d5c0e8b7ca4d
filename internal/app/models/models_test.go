package models

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestTerm_NormalizeAndValidate(t *testing.T) {
	term := &Term{TermCode: " fall ", TermName: " Fall ", Description: strPtr("   ")}
	term.Normalize()
	assert.Equal(t, "FALL", term.TermCode)
	assert.Equal(t, "Fall", term.TermName)
	assert.Nil(t, term.Description, "blank descriptions become NULL")
	assert.NoError(t, term.Validate())

	err := (&Term{TermCode: "FALL"}).Validate()
	require.Error(t, err)
	assert.Equal(t, "Term code and name are required!", err.Error())
}

func TestLookupCodes_RejectBadFormat(t *testing.T) {
	long := "FALL_" + strings.Repeat("X", 40)
	records := []LookupRecord{
		&Term{TermCode: "bad code!<>", TermName: "x"},
		&Term{TermCode: long, TermName: "x"},
		&AcademicYear{YearCode: "2025/2026", YearName: "x"},
		&DegreeProgram{ProgramName: "x", ProgramCode: "BSC CS", LevelID: func() *uuid.UUID { id := uuid.New(); return &id }()},
		&ApplicationStatus{StatusCode: "IN REVIEW", StatusName: "x"},
		&Scholarship{ScholarshipCode: "50%", ScholarshipName: "x"},
		&StudentType{StudentCode: "<b>", TypeName: "x"},
		&StudentLocation{LocationCode: "on.campus", LocationName: "x"},
	}
	for _, rec := range records {
		rec.Normalize()
		err := rec.Validate()
		require.Error(t, err, "%T", rec)
		assert.Contains(t, err.Error(), "may only contain letters, digits", "%T", rec)
	}

	term := &Term{TermCode: "bad code!<>", TermName: "x"}
	term.Normalize()
	assert.EqualError(t, term.Validate(), "termCode may only contain letters, digits, '_' and '-' (at most 32 characters)")

	ok := &AcademicYear{YearCode: "2025-2026", YearName: "2025 - 2026"}
	assert.NoError(t, ok.Validate())
}

func TestCountry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		country Country
		wantErr string
	}{
		{"valid after normalize", Country{CountryName: " Kenya ", ISO2: "ke", ISO3: "ken"}, ""},
		{"missing field", Country{CountryName: "Kenya", ISO2: "KE"}, "All fields are required."},
		{"iso2 too long", Country{CountryName: "Kenya", ISO2: "KEN", ISO3: "KEN"}, "ISO 2 code must be exactly 2 letters."},
		{"iso3 with digits", Country{CountryName: "Kenya", ISO2: "KE", ISO3: "K3N"}, "ISO 3 code must be exactly 3 letters."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.country
			c.Normalize()
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestDegreeProgram_RequiresLevel(t *testing.T) {
	p := &DegreeProgram{ProgramName: "Computer Science", ProgramCode: "BSC-CS"}
	assert.EqualError(t, p.Validate(), "Academic level is required!")

	nilLevel := uuid.Nil
	p.LevelID = &nilLevel
	assert.Error(t, p.Validate())

	level := uuid.New()
	p.LevelID = &level
	assert.NoError(t, p.Validate())
}

func TestRole_NormalizeLowercases(t *testing.T) {
	r := &Role{RoleName: " Admin "}
	r.Normalize()
	assert.Equal(t, RoleAdmin, r.RoleName)
}

func TestUserRole_Validate(t *testing.T) {
	assert.Error(t, (&UserRole{UserID: uuid.New()}).Validate())
	assert.NoError(t, (&UserRole{UserID: uuid.New(), RoleID: uuid.New()}).Validate())
}

func TestLookupRecords_EmptyAreInvalid(t *testing.T) {
	records := []LookupRecord{
		&Term{}, &AcademicYear{}, &AcademicLevel{}, &DegreeProgram{}, &Country{}, &ApplicationStatus{},
		&Scholarship{}, &StudentType{}, &StudentLocation{}, &Role{}, &UserRole{}, &Gender{},
	}
	for _, rec := range records {
		rec.Normalize()
		assert.Error(t, rec.Validate(), "%T", rec)
		assert.NotNil(t, rec.Base())
	}
}

func TestDocumentType(t *testing.T) {
	assert.Equal(t, "transcripts", DocumentTranscript.Folder())
	assert.Equal(t, "national_id", DocumentNationalID.Folder())
	assert.True(t, DocumentTranscript.Valid())
	assert.False(t, DocumentType("selfie").Valid())
}

func TestWizardProgressHelpers(t *testing.T) {
	var student *Student
	assert.False(t, student.HasPersonalInfo())
	assert.True(t, (&Student{FirstName: "Jane", LastName: "Doe"}).HasPersonalInfo())

	var app *Application
	assert.False(t, app.IsSubmitted())
	assert.False(t, app.HasEducation())

	program, level := uuid.New(), uuid.New()
	app = &Application{DegreeProgramID: &program}
	assert.False(t, app.HasEducation())
	app.AcademicLevelID = &level
	assert.True(t, app.HasEducation())
	app.TermCondition = true
	assert.True(t, app.IsSubmitted())
}

func TestUser_HasRole(t *testing.T) {
	u := &User{Roles: []string{RoleStudent}}
	assert.True(t, u.HasRole(RoleStudent))
	assert.False(t, u.HasRole(RoleAdmin))
}

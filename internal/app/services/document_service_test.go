package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/pkg/apperrors"
)

func TestUpload_RequiresEducationStep(t *testing.T) {
	f := newWizardFixture(true)
	id := memFile("passport.pdf", pdfBytes)
	in := UploadInput{TermID: f.termID, AcademicYearID: f.yearID, NationalID: &id}

	_, err := f.docSvc.Upload(context.Background(), f.userID, in)
	assert.ErrorIs(t, err, apperrors.ErrWizardOrder)

	f.completePersonal(t)
	_, err = f.docSvc.Upload(context.Background(), f.userID, in)
	assert.ErrorIs(t, err, apperrors.ErrWizardOrder)
}

func TestUpload_StoresEveryFile(t *testing.T) {
	f := newWizardFixture(true)
	student := f.completePersonal(t)
	f.completeEducation(t)

	kenya, uganda, tanzania := uuid.New(), uuid.New(), uuid.New()
	id := memFile("../My Passport.pdf", pdfBytes)
	docs, err := f.docSvc.Upload(context.Background(), f.userID, UploadInput{
		TermID:               f.termID,
		AcademicYearID:       f.yearID,
		NationalID:           &id,
		NationalIDCountryID:  &kenya,
		Transcripts:          []FileUpload{memFile("grades.png", pngBytes), memFile("grades.png", pdfBytes)},
		TranscriptCountryIDs: []uuid.UUID{uganda, tanzania},
	})
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, models.DocumentNationalID, docs[0].DocumentType)
	assert.True(t, strings.HasPrefix(docs[0].StoragePath, "national_id/"+student.ID.String()+"_"))
	assert.True(t, strings.HasSuffix(docs[0].StoragePath, "_My_Passport.pdf"))
	assert.Equal(t, "My_Passport.pdf", docs[0].FileName)
	assert.Equal(t, "application/pdf", docs[0].ContentType)
	assert.Equal(t, kenya, *docs[0].CountryID)

	assert.Equal(t, models.DocumentTranscript, docs[1].DocumentType)
	assert.True(t, strings.HasPrefix(docs[1].StoragePath, "transcripts/"))
	assert.Equal(t, "image/png", docs[1].ContentType)
	assert.Equal(t, uganda, *docs[1].CountryID)
	assert.Equal(t, tanzania, *docs[2].CountryID)
	assert.NotEqual(t, docs[1].StoragePath, docs[2].StoragePath)

	assert.Len(t, f.storage.objects, 3)
	assert.Len(t, f.docs.docs, 3)
}

func TestUpload_RejectsBadFiles(t *testing.T) {
	f := newWizardFixture(true)
	f.completePersonal(t)
	f.completeEducation(t)
	ctx := context.Background()

	text := memFile("notes.txt", []byte("just some plain text"))
	_, err := f.docSvc.Upload(ctx, f.userID, UploadInput{TermID: f.termID, AcademicYearID: f.yearID, NationalID: &text})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFile)

	svg := memFile("id.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(document.cookie)</script></svg>`))
	_, err = f.docSvc.Upload(ctx, f.userID, UploadInput{TermID: f.termID, AcademicYearID: f.yearID, NationalID: &svg})
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedFile, "scriptable images are refused")

	big := memFile("scan.pdf", pdfBytes)
	big.Size = 2 << 20
	_, err = f.docSvc.Upload(ctx, f.userID, UploadInput{TermID: f.termID, AcademicYearID: f.yearID, NationalID: &big})
	assert.ErrorIs(t, err, apperrors.ErrFileTooLarge)

	_, err = f.docSvc.Upload(ctx, f.userID, UploadInput{TermID: f.termID, AcademicYearID: f.yearID})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.docSvc.Upload(ctx, f.userID, UploadInput{
		TermID:               f.termID,
		AcademicYearID:       f.yearID,
		Transcripts:          []FileUpload{memFile("a.pdf", pdfBytes)},
		TranscriptCountryIDs: []uuid.UUID{uuid.New(), uuid.New()},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	assert.Empty(t, f.storage.objects)
	assert.Empty(t, f.docs.docs)
}

func TestUpload_CleansUpOnFailure(t *testing.T) {
	f := newWizardFixture(true)
	f.completePersonal(t)
	f.completeEducation(t)
	id := memFile("passport.pdf", pdfBytes)
	in := UploadInput{
		TermID:         f.termID,
		AcademicYearID: f.yearID,
		NationalID:     &id,
		Transcripts:    []FileUpload{memFile("t.pdf", pdfBytes)},
	}

	f.storage.failOn = "transcripts/"
	_, err := f.docSvc.Upload(context.Background(), f.userID, in)
	require.Error(t, err)
	assert.Empty(t, f.storage.objects)

	f.storage.failOn = ""
	f.docs.batchErr = errors.New("insert failed")
	_, err = f.docSvc.Upload(context.Background(), f.userID, in)
	require.Error(t, err)
	assert.Empty(t, f.storage.objects)
}

func TestDeleteForOwner(t *testing.T) {
	f := newWizardFixture(false)
	f.completePersonal(t)
	app := f.completeEducation(t)
	f.uploadNationalID(t)
	ctx := context.Background()

	var doc *models.Document
	for _, d := range f.docs.docs {
		doc = d
	}
	require.NotNil(t, doc)

	err := f.docSvc.DeleteForOwner(ctx, uuid.New(), doc.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound, "unknown user has no student")

	f.apps.apps[app.ID].TermCondition = true
	err = f.docSvc.DeleteForOwner(ctx, f.userID, doc.ID)
	assert.ErrorIs(t, err, apperrors.ErrApplicationLocked)

	f.apps.apps[app.ID].TermCondition = false
	require.NoError(t, f.docSvc.DeleteForOwner(ctx, f.userID, doc.ID))
	assert.Empty(t, f.docs.docs)
	assert.Empty(t, f.storage.objects)
}

func TestListForOwner_EnforcesOwnership(t *testing.T) {
	f := newWizardFixture(false)
	f.completePersonal(t)
	app := f.completeEducation(t)
	f.uploadNationalID(t)
	ctx := context.Background()

	docs, err := f.docSvc.ListForOwner(ctx, f.userID, app.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].URL, "ttl=1m0s")

	intruder := uuid.New()
	f.students.put(&models.Student{UserID: intruder, FirstName: "M", LastName: "X"})
	_, err = f.docSvc.ListForOwner(ctx, intruder, app.ID)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	adminDocs, err := f.docSvc.ListForApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Len(t, adminDocs, 1)
}

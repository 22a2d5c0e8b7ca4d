package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/filestorage"
)

// FileUpload is one file received in a multipart upload
type FileUpload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// UploadInput is the documents step of the wizard
type UploadInput struct {
	TermID               uuid.UUID
	AcademicYearID       uuid.UUID
	NationalID           *FileUpload
	NationalIDCountryID  *uuid.UUID
	Transcripts          []FileUpload
	TranscriptCountryIDs []uuid.UUID
}

// DocumentService stores application documents and hands out signed links to them
type DocumentService interface {
	Upload(ctx context.Context, userID uuid.UUID, in UploadInput) ([]*models.Document, error)
	ListByKey(ctx context.Context, key models.ApplicationKey) ([]*dto.DocumentResponse, error)
	ListForApplication(ctx context.Context, applicationID uuid.UUID) ([]*dto.DocumentResponse, error)
	ListForOwner(ctx context.Context, userID, applicationID uuid.UUID) ([]*dto.DocumentResponse, error)
	DeleteForOwner(ctx context.Context, userID, documentID uuid.UUID) error
}

// DocumentConfig holds the upload limits and link lifetime
type DocumentConfig struct {
	MaxUploadBytes int64
	SignedURLTTL   time.Duration
}

type documentServiceImpl struct {
	studentRepo     studentStore
	applicationRepo applicationStore
	documentRepo    documentStore
	storage         filestorage.Storage
	config          DocumentConfig
	logger          zerolog.Logger
	now             func() time.Time
}

// NewDocumentService creates a new document service
func NewDocumentService(
	studentRepo studentStore,
	applicationRepo applicationStore,
	documentRepo documentStore,
	storage filestorage.Storage,
	config DocumentConfig,
	logger zerolog.Logger,
) DocumentService {
	return &documentServiceImpl{
		studentRepo:     studentRepo,
		applicationRepo: applicationRepo,
		documentRepo:    documentRepo,
		storage:         storage,
		config:          config,
		logger:          logger,
		now:             time.Now,
	}
}

type pendingFile struct {
	upload      FileUpload
	docType     models.DocumentType
	countryID   *uuid.UUID
	contentType string
}

// validateUpload checks the shape of the request before any file is read
func (s *documentServiceImpl) validateUpload(in UploadInput) ([]*pendingFile, error) {
	if in.TermID == uuid.Nil || in.AcademicYearID == uuid.Nil {
		return nil, apperrors.NewValidationError("Term and academic year are required")
	}
	if in.NationalID == nil && len(in.Transcripts) == 0 {
		return nil, apperrors.NewValidationError("At least one document is required")
	}
	if len(in.TranscriptCountryIDs) > 0 && len(in.TranscriptCountryIDs) != len(in.Transcripts) {
		return nil, apperrors.NewValidationError("Each transcript needs exactly one country")
	}

	var files []*pendingFile
	if in.NationalID != nil {
		files = append(files, &pendingFile{upload: *in.NationalID, docType: models.DocumentNationalID, countryID: in.NationalIDCountryID})
	}
	for i, t := range in.Transcripts {
		f := &pendingFile{upload: t, docType: models.DocumentTranscript}
		if len(in.TranscriptCountryIDs) > 0 {
			id := in.TranscriptCountryIDs[i]
			f.countryID = &id
		}
		files = append(files, f)
	}
	return files, nil
}

// sniff checks the size and the real content type of a file
func (s *documentServiceImpl) sniff(f *pendingFile) error {
	if s.config.MaxUploadBytes > 0 && f.upload.Size > s.config.MaxUploadBytes {
		return apperrors.NewCustomError(apperrors.ErrFileTooLarge,
			fmt.Sprintf("%s exceeds the %d byte upload limit", f.upload.Filename, s.config.MaxUploadBytes))
	}

	r, err := f.upload.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.upload.Filename, err)
	}
	defer r.Close()

	contentType, ok, err := filestorage.DetectDocumentMIME(r)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.upload.Filename, err)
	}
	if !ok {
		return apperrors.NewCustomError(apperrors.ErrUnsupportedFile,
			fmt.Sprintf("%s is %s; only PDF and image files are accepted", f.upload.Filename, contentType))
	}
	f.contentType = contentType
	return nil
}

func (s *documentServiceImpl) store(ctx context.Context, path string, f *pendingFile) error {
	r, err := f.upload.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.upload.Filename, err)
	}
	defer r.Close()
	return s.storage.Save(ctx, path, r, f.upload.Size, f.contentType)
}

// removeStored deletes objects written by a batch that did not complete
func (s *documentServiceImpl) removeStored(paths []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, p := range paths {
		if err := s.storage.Delete(ctx, p); err != nil {
			s.logger.Error().Err(err).Str("path", p).Msg("Failed to remove orphaned upload")
		}
	}
}

// Upload stores the documents of the session user's application
func (s *documentServiceImpl) Upload(ctx context.Context, userID uuid.UUID, in UploadInput) ([]*models.Document, error) {
	files, err := s.validateUpload(in)
	if err != nil {
		return nil, err
	}

	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}
	if !student.HasPersonalInfo() {
		return nil, apperrors.NewCustomError(apperrors.ErrWizardOrder, "Complete your personal information first")
	}

	key := models.ApplicationKey{StudentID: student.ID, TermID: in.TermID, AcademicYearID: in.AcademicYearID}
	app, err := s.applicationRepo.FindByKey(ctx, key)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}
	if !app.HasEducation() {
		return nil, apperrors.NewCustomError(apperrors.ErrWizardOrder, "Complete your education information first")
	}
	if app.IsSubmitted() {
		return nil, apperrors.NewCustomError(apperrors.ErrApplicationLocked, "Documents cannot be added to a submitted application")
	}

	for _, f := range files {
		if err := s.sniff(f); err != nil {
			return nil, err
		}
	}

	now := s.now()
	docs := make([]*models.Document, 0, len(files))
	stored := make([]string, 0, len(files))
	for i, f := range files {
		// Files of one batch share a timestamp; offset it so equal names do not collide
		path := filestorage.DocumentPath(f.docType.Folder(), student.ID, now.Add(time.Duration(i)*time.Millisecond), f.upload.Filename)
		if err := s.store(ctx, path, f); err != nil {
			s.removeStored(stored)
			return nil, err
		}
		stored = append(stored, path)

		docs = append(docs, &models.Document{
			StudentID:      student.ID,
			TermID:         in.TermID,
			AcademicYearID: in.AcademicYearID,
			DocumentType:   f.docType,
			FileName:       filestorage.SanitizeFilename(f.upload.Filename),
			StoragePath:    path,
			ContentType:    f.contentType,
			FileSize:       f.upload.Size,
			CountryID:      f.countryID,
		})
	}

	if err := s.documentRepo.CreateBatch(ctx, docs); err != nil {
		s.removeStored(stored)
		return nil, err
	}

	s.logger.Info().
		Str("studentID", student.ID.String()).
		Str("applicationID", app.ID.String()).
		Int("count", len(docs)).
		Msg("Application documents uploaded")
	return docs, nil
}

// sign attaches a short-lived link to every document
func (s *documentServiceImpl) sign(ctx context.Context, docs []*models.Document) ([]*dto.DocumentResponse, error) {
	out := make([]*dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		url, err := s.storage.SignedURL(ctx, d.StoragePath, s.config.SignedURLTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to sign %s: %w", d.StoragePath, err)
		}
		out = append(out, &dto.DocumentResponse{Document: d, URL: url})
	}
	return out, nil
}

func (s *documentServiceImpl) ListByKey(ctx context.Context, key models.ApplicationKey) ([]*dto.DocumentResponse, error) {
	docs, err := s.documentRepo.ListByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.sign(ctx, docs)
}

func (s *documentServiceImpl) ListForApplication(ctx context.Context, applicationID uuid.UUID) ([]*dto.DocumentResponse, error) {
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return s.ListByKey(ctx, applicationKey(app))
}

// ListForOwner lists the documents of an application owned by the session user
func (s *documentServiceImpl) ListForOwner(ctx context.Context, userID, applicationID uuid.UUID) ([]*dto.DocumentResponse, error) {
	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	app, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.StudentID != student.ID {
		return nil, apperrors.NewResourceNotFoundError("Application not found")
	}
	return s.ListByKey(ctx, applicationKey(app))
}

// DeleteForOwner removes a document of the session user while its application is still open
func (s *documentServiceImpl) DeleteForOwner(ctx context.Context, userID, documentID uuid.UUID) error {
	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	doc, err := s.documentRepo.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.StudentID != student.ID {
		return apperrors.NewResourceNotFoundError("Document not found")
	}

	app, err := s.applicationRepo.FindByKey(ctx, models.ApplicationKey{
		StudentID:      doc.StudentID,
		TermID:         doc.TermID,
		AcademicYearID: doc.AcademicYearID,
	})
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return err
	}
	if app.IsSubmitted() {
		return apperrors.NewCustomError(apperrors.ErrApplicationLocked, "Documents of a submitted application cannot be deleted")
	}

	if err := s.documentRepo.Delete(ctx, doc.ID); err != nil {
		return err
	}
	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Error().Err(err).Str("path", doc.StoragePath).Msg("Document row deleted but stored file remains")
	}
	return nil
}

func applicationKey(app *models.Application) models.ApplicationKey {
	return models.ApplicationKey{
		StudentID:      app.StudentID,
		TermID:         app.TermID,
		AcademicYearID: app.AcademicYearID,
	}
}

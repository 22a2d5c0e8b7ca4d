package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/helpers"
)

// Wizard steps, in the order a student completes them
const (
	StepPersonal  = 1
	StepEducation = 2
	StepDocuments = 3
	StepSubmit    = 4
	StepDone      = 5
)

// ApplicationService drives the application wizard and the student dashboard
type ApplicationService interface {
	SaveEducation(ctx context.Context, userID uuid.UUID, req *dto.EducationRequest) (*models.Application, error)
	Submit(ctx context.Context, userID uuid.UUID, req *dto.SubmitRequest) (*models.ApplicationSummary, error)
	Progress(ctx context.Context, userID uuid.UUID, termID, academicYearID uuid.UUID) (*dto.ProgressResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*models.ApplicationSummary, error)
	Intake(ctx context.Context, userID uuid.UUID, sessionEmail string, req *dto.IntakeRequest) (*models.ApplicationSummary, error)
}

// WizardConfig holds the switches of the application wizard
type WizardConfig struct {
	RequireDocuments bool
}

type applicationServiceImpl struct {
	studentRepo     studentStore
	applicationRepo applicationStore
	documentRepo    documentStore
	students        StudentService
	documents       DocumentService
	notifier        Notifier
	config          WizardConfig
	logger          zerolog.Logger
	now             func() time.Time
}

// NewApplicationService creates a new application service
func NewApplicationService(
	studentRepo studentStore,
	applicationRepo applicationStore,
	documentRepo documentStore,
	students StudentService,
	documents DocumentService,
	notifier Notifier,
	config WizardConfig,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationServiceImpl{
		studentRepo:     studentRepo,
		applicationRepo: applicationRepo,
		documentRepo:    documentRepo,
		students:        students,
		documents:       documents,
		notifier:        notifier,
		config:          config,
		logger:          logger,
		now:             time.Now,
	}
}

// studentWithProfile returns the session user's student once the personal step is done
func (s *applicationServiceImpl) studentWithProfile(ctx context.Context, userID uuid.UUID) (*models.Student, error) {
	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}
	if !student.HasPersonalInfo() {
		return nil, apperrors.NewCustomError(apperrors.ErrWizardOrder, "Complete your personal information first")
	}
	return student, nil
}

// findApplication returns nil without error when the student has no application for the key
func (s *applicationServiceImpl) findApplication(ctx context.Context, key models.ApplicationKey) (*models.Application, error) {
	app, err := s.applicationRepo.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return app, nil
}

// validateProgramLevel checks that the program is offered at the chosen level
func (s *applicationServiceImpl) validateProgramLevel(ctx context.Context, programID, levelID uuid.UUID) error {
	programLevel, err := s.applicationRepo.ProgramLevel(ctx, programID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return apperrors.NewValidationError("Selected degree program does not exist")
		}
		return err
	}
	if programLevel != nil && *programLevel != levelID {
		return apperrors.NewValidationError("Selected degree program is not offered at the selected academic level")
	}
	return nil
}

// SaveEducation records the education step, creating the application when needed
func (s *applicationServiceImpl) SaveEducation(ctx context.Context, userID uuid.UUID, req *dto.EducationRequest) (*models.Application, error) {
	if req.TermID == uuid.Nil || req.AcademicYearID == uuid.Nil || req.AcademicLevelID == uuid.Nil || req.DegreeProgramID == uuid.Nil {
		return nil, apperrors.NewValidationError("Term, academic year, academic level and degree program are required")
	}

	student, err := s.studentWithProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.validateProgramLevel(ctx, req.DegreeProgramID, req.AcademicLevelID); err != nil {
		return nil, err
	}

	key := models.ApplicationKey{StudentID: student.ID, TermID: req.TermID, AcademicYearID: req.AcademicYearID}
	app, err := s.findApplication(ctx, key)
	if err != nil {
		return nil, err
	}

	if app != nil {
		if app.IsSubmitted() {
			return nil, apperrors.NewCustomError(apperrors.ErrApplicationLocked, "A submitted application cannot be changed")
		}
		if err := s.applicationRepo.UpdateEducation(ctx, app.ID, req.DegreeProgramID, req.AcademicLevelID); err != nil {
			return nil, err
		}
		return s.applicationRepo.GetByID(ctx, app.ID)
	}

	draftID, err := s.applicationRepo.StatusIDByCode(ctx, models.StatusDraft)
	if err != nil {
		return nil, err
	}
	app = &models.Application{
		StudentID:       student.ID,
		TermID:          req.TermID,
		AcademicYearID:  req.AcademicYearID,
		DegreeProgramID: &req.DegreeProgramID,
		AcademicLevelID: &req.AcademicLevelID,
		StatusID:        draftID,
	}
	if err := s.applicationRepo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("studentID", student.ID.String()).
		Str("applicationID", app.ID.String()).
		Msg("Application created")
	return app, nil
}

// Submit completes the wizard for the application identified by the request
func (s *applicationServiceImpl) Submit(ctx context.Context, userID uuid.UUID, req *dto.SubmitRequest) (*models.ApplicationSummary, error) {
	if !req.TermsAccepted {
		return nil, apperrors.NewValidationError("You must accept the terms and conditions to submit your application.")
	}

	student, err := s.studentWithProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := models.ApplicationKey{StudentID: student.ID, TermID: req.TermID, AcademicYearID: req.AcademicYearID}
	app, err := s.findApplication(ctx, key)
	if err != nil {
		return nil, err
	}
	return s.submit(ctx, student, app, s.config.RequireDocuments)
}

func (s *applicationServiceImpl) submit(ctx context.Context, student *models.Student, app *models.Application, requireDocuments bool) (*models.ApplicationSummary, error) {
	if !app.HasEducation() {
		return nil, apperrors.NewCustomError(apperrors.ErrWizardOrder, "Complete your education information first")
	}
	if app.IsSubmitted() {
		return nil, apperrors.ErrAlreadySubmitted
	}

	if requireDocuments {
		count, err := s.documentRepo.CountByType(ctx, applicationKey(app), models.DocumentNationalID)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, apperrors.NewCustomError(apperrors.ErrWizardOrder, "Upload your national ID before submitting")
		}
	}

	submittedID, err := s.applicationRepo.StatusIDByCode(ctx, models.StatusSubmitted)
	if err != nil {
		return nil, err
	}
	if err := s.applicationRepo.MarkSubmitted(ctx, app.ID, submittedID, s.now()); err != nil {
		return nil, err
	}

	summary, err := s.applicationRepo.GetSummary(ctx, app.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("studentID", student.ID.String()).
		Str("applicationID", app.ID.String()).
		Msg("Application submitted")
	s.notifier.SubmissionReceived(ctx, student, summary)
	return summary, nil
}

// Progress reports the step the wizard should resume at, with the data saved so far
func (s *applicationServiceImpl) Progress(ctx context.Context, userID uuid.UUID, termID, academicYearID uuid.UUID) (*dto.ProgressResponse, error) {
	resp := &dto.ProgressResponse{NextStep: StepPersonal, Documents: []*dto.DocumentResponse{}}

	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return resp, nil
		}
		return nil, err
	}
	resp.Student = student
	if !student.HasPersonalInfo() {
		return resp, nil
	}

	resp.NextStep = StepEducation
	app, err := s.findApplication(ctx, models.ApplicationKey{StudentID: student.ID, TermID: termID, AcademicYearID: academicYearID})
	if err != nil {
		return nil, err
	}
	if app == nil {
		return resp, nil
	}
	resp.Application = app
	if !app.HasEducation() {
		return resp, nil
	}

	docs, err := s.documents.ListByKey(ctx, applicationKey(app))
	if err != nil {
		return nil, err
	}
	resp.Documents = docs

	switch {
	case app.IsSubmitted():
		resp.NextStep = StepDone
		resp.Submitted = true
	case len(docs) == 0:
		resp.NextStep = StepDocuments
	default:
		resp.NextStep = StepSubmit
	}
	return resp, nil
}

// ListMine lists the session user's applications, newest first
func (s *applicationServiceImpl) ListMine(ctx context.Context, userID uuid.UUID) ([]*models.ApplicationSummary, error) {
	student, err := s.studentRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return []*models.ApplicationSummary{}, nil
		}
		return nil, err
	}
	return s.applicationRepo.ListSummariesByStudent(ctx, student.ID)
}

// validateIntake checks that every required field of a one-shot submission is present
func validateIntake(req *dto.IntakeRequest) error {
	missing := apperrors.NewBadRequestError("Missing required fields")
	if req == nil || req.PersonalInfo == nil || req.EducationInfo == nil {
		return missing
	}
	p, e := req.PersonalInfo, req.EducationInfo
	if strings.TrimSpace(p.Email) == "" || strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return missing
	}
	if e.TermID == uuid.Nil || e.AcademicYearID == uuid.Nil || e.AcademicLevelID == uuid.Nil || e.DegreeProgramID == uuid.Nil {
		return missing
	}
	return nil
}

// Intake runs the personal, education and submit steps from a single request
func (s *applicationServiceImpl) Intake(ctx context.Context, userID uuid.UUID, sessionEmail string, req *dto.IntakeRequest) (*models.ApplicationSummary, error) {
	if err := validateIntake(req); err != nil {
		return nil, err
	}
	p, e := req.PersonalInfo, req.EducationInfo
	if !strings.EqualFold(strings.TrimSpace(p.Email), sessionEmail) {
		return nil, apperrors.NewForbiddenError("Email does not match the signed-in account")
	}

	personal := &dto.PersonalInfoRequest{
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Email:       p.Email,
		Phone:       p.Phone,
		DateOfBirth: p.DateOfBirth,
	}
	// Keep whatever the student already filled in through the wizard
	if current, err := s.studentRepo.GetByUserID(ctx, userID); err == nil {
		personal.MiddleName = current.MiddleName
		personal.AdditionalName = current.AdditionalName
		personal.WhatsApp = current.WhatsApp
		personal.GenderID = current.GenderID
		personal.NationalityCountryID = current.NationalityCountryID
		personal.CurrentCountryID = current.CurrentCountryID
		if personal.Phone == nil {
			personal.Phone = current.Phone
		}
		if personal.DateOfBirth == nil && current.DateOfBirth != nil {
			dob := helpers.FormatDate(current.DateOfBirth)
			personal.DateOfBirth = &dob
		}
	} else if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}

	student, err := s.students.UpdateProfile(ctx, userID, sessionEmail, personal)
	if err != nil {
		return nil, err
	}

	app, err := s.SaveEducation(ctx, userID, &dto.EducationRequest{
		TermID:          e.TermID,
		AcademicYearID:  e.AcademicYearID,
		AcademicLevelID: e.AcademicLevelID,
		DegreeProgramID: e.DegreeProgramID,
	})
	if err != nil {
		return nil, err
	}

	return s.submit(ctx, student, app, false)
}

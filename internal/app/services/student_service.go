package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/helpers"
	"github.com/unigate/admissions/internal/pkg/validation"
)

// StudentService manages student profiles and the admin student directory
type StudentService interface {
	EnsureForUser(ctx context.Context, userID uuid.UUID, email string) (*models.Student, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Student, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, sessionEmail string, req *dto.PersonalInfoRequest) (*models.Student, error)
	ListWithLatestApplication(ctx context.Context, q dto.StudentListQuery, page, size int) ([]*models.StudentOverview, int64, error)
	GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error)
	ListApplications(ctx context.Context, studentID uuid.UUID) ([]*models.ApplicationSummary, error)
}

type studentServiceImpl struct {
	studentRepo     studentStore
	applicationRepo applicationStore
	logger          zerolog.Logger
	now             func() time.Time
}

// NewStudentService creates a new student service
func NewStudentService(studentRepo studentStore, applicationRepo applicationStore, logger zerolog.Logger) StudentService {
	return &studentServiceImpl{
		studentRepo:     studentRepo,
		applicationRepo: applicationRepo,
		logger:          logger,
		now:             time.Now,
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// validatePersonalInfo checks the personal info step and builds the profile from it
func (s *studentServiceImpl) validatePersonalInfo(userID uuid.UUID, sessionEmail string, req *dto.PersonalInfoRequest) (*models.Student, error) {
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, apperrors.NewValidationError("First name and last name are required")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		email = sessionEmail
	}
	if !validation.IsEmail(email) {
		return nil, apperrors.NewValidationError("Invalid email format")
	}

	whatsApp, phone := trimOptional(req.WhatsApp), trimOptional(req.Phone)
	for _, p := range []*string{whatsApp, phone} {
		if p != nil && !validation.IsPhone(*p) {
			return nil, apperrors.NewValidationError("Invalid phone number: " + *p)
		}
	}

	dob, err := helpers.ParseDate(trimOptional(req.DateOfBirth))
	if err != nil {
		return nil, apperrors.NewValidationError("Date of birth must be a date in YYYY-MM-DD format")
	}
	if dob != nil && !dob.Before(helpers.StartOfDay(s.now())) {
		return nil, apperrors.NewValidationError("Date of birth must be in the past")
	}

	return &models.Student{
		UserID:               userID,
		FirstName:            firstName,
		MiddleName:           trimOptional(req.MiddleName),
		LastName:             lastName,
		AdditionalName:       trimOptional(req.AdditionalName),
		Email:                email,
		WhatsApp:             whatsApp,
		Phone:                phone,
		DateOfBirth:          dob,
		GenderID:             req.GenderID,
		NationalityCountryID: req.NationalityCountryID,
		CurrentCountryID:     req.CurrentCountryID,
	}, nil
}

func (s *studentServiceImpl) EnsureForUser(ctx context.Context, userID uuid.UUID, email string) (*models.Student, error) {
	return s.studentRepo.EnsureForUser(ctx, userID, email)
}

func (s *studentServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Student, error) {
	return s.studentRepo.GetByUserID(ctx, userID)
}

// UpdateProfile saves the personal info step for the session user
func (s *studentServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, sessionEmail string, req *dto.PersonalInfoRequest) (*models.Student, error) {
	student, err := s.validatePersonalInfo(userID, sessionEmail, req)
	if err != nil {
		return nil, err
	}
	if err := s.studentRepo.UpsertProfile(ctx, student); err != nil {
		return nil, err
	}
	s.logger.Info().Str("userID", userID.String()).Str("studentID", student.ID.String()).Msg("Student profile saved")
	return student, nil
}

// ListWithLatestApplication returns one page of the admin students screen and the total after filtering
func (s *studentServiceImpl) ListWithLatestApplication(ctx context.Context, q dto.StudentListQuery, page, size int) ([]*models.StudentOverview, int64, error) {
	all, err := s.studentRepo.ListOverviews(ctx)
	if err != nil {
		return nil, 0, err
	}

	filtered := FilterStudents(all, q)
	if err := SortStudents(filtered, q.SortBy, q.SortDir); err != nil {
		return nil, 0, err
	}
	return helpers.PageOf(filtered, helpers.Page{Number: page, Size: size}), int64(len(filtered)), nil
}

func (s *studentServiceImpl) GetStudent(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

func (s *studentServiceImpl) ListApplications(ctx context.Context, studentID uuid.UUID) ([]*models.ApplicationSummary, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	return s.applicationRepo.ListSummariesByStudent(ctx, studentID)
}

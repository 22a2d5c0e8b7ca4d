package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/app/repositories"
	"github.com/unigate/admissions/internal/pkg/apperrors"
)

// ReviewService lets administrators update submitted applications
type ReviewService interface {
	UpdateApplication(ctx context.Context, applicationID uuid.UUID, req *dto.ReviewRequest) (*models.ApplicationSummary, error)
}

type reviewServiceImpl struct {
	studentRepo     studentStore
	applicationRepo applicationStore
	notifier        Notifier
	logger          zerolog.Logger
}

// NewReviewService creates a new review service
func NewReviewService(studentRepo studentStore, applicationRepo applicationStore, notifier Notifier, logger zerolog.Logger) ReviewService {
	return &reviewServiceImpl{
		studentRepo:     studentRepo,
		applicationRepo: applicationRepo,
		notifier:        notifier,
		logger:          logger,
	}
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// UpdateApplication applies the review fields present in req and notifies the student
// when the status changed.
func (s *reviewServiceImpl) UpdateApplication(ctx context.Context, applicationID uuid.UUID, req *dto.ReviewRequest) (*models.ApplicationSummary, error) {
	if req.StatusID == nil && req.Notes == nil && req.ScholarshipID == nil && req.StudentTypeID == nil && req.StudentLocationID == nil {
		return nil, apperrors.NewValidationError("Nothing to update")
	}

	before, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	update := repositories.ReviewUpdate{
		StatusID:          req.StatusID,
		ScholarshipID:     req.ScholarshipID,
		StudentTypeID:     req.StudentTypeID,
		StudentLocationID: req.StudentLocationID,
	}
	if req.Notes != nil {
		notes := strings.TrimSpace(*req.Notes)
		update.Notes = &notes
	}
	if err := s.applicationRepo.UpdateReview(ctx, applicationID, update); err != nil {
		return nil, err
	}

	after, err := s.applicationRepo.GetSummary(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if req.StatusID != nil && !sameID(before.StatusID, after.StatusID) {
		student, err := s.studentRepo.GetByID(ctx, after.StudentID)
		if err != nil {
			s.logger.Error().Err(err).Str("applicationID", applicationID.String()).Msg("Could not load student to notify")
			return after, nil
		}
		s.logger.Info().
			Str("applicationID", applicationID.String()).
			Str("status", deref(after.StatusCode)).
			Msg("Application status changed")
		s.notifier.StatusChanged(ctx, student, after)
	}
	return after, nil
}

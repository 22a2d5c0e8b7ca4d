package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/repositories"
)

// The interfaces below are the slices of the repositories each service uses.

type userStore interface {
	CreateWithStudent(ctx context.Context, user *models.User, student *models.Student, roleName string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
}

type tokenStore interface {
	CreateToken(ctx context.Context, token string, userID uuid.UUID, expiresAt time.Time) error
	GetToken(ctx context.Context, token string) (*models.Token, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

type roleStore interface {
	RoleNames(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type studentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Student, error)
	EnsureForUser(ctx context.Context, userID uuid.UUID, email string) (*models.Student, error)
	UpsertProfile(ctx context.Context, s *models.Student) error
	ListOverviews(ctx context.Context) ([]*models.StudentOverview, error)
}

type applicationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	FindByKey(ctx context.Context, key models.ApplicationKey) (*models.Application, error)
	Create(ctx context.Context, a *models.Application) error
	UpdateEducation(ctx context.Context, id uuid.UUID, programID, levelID uuid.UUID) error
	MarkSubmitted(ctx context.Context, id uuid.UUID, statusID *uuid.UUID, at time.Time) error
	UpdateReview(ctx context.Context, id uuid.UUID, u repositories.ReviewUpdate) error
	ListSummariesByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.ApplicationSummary, error)
	GetSummary(ctx context.Context, id uuid.UUID) (*models.ApplicationSummary, error)
	StatusIDByCode(ctx context.Context, code string) (*uuid.UUID, error)
	ProgramLevel(ctx context.Context, programID uuid.UUID) (*uuid.UUID, error)
}

type documentStore interface {
	CreateBatch(ctx context.Context, docs []*models.Document) error
	ListByKey(ctx context.Context, key models.ApplicationKey) ([]*models.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByType(ctx context.Context, key models.ApplicationKey, docType models.DocumentType) (int, error)
}

type lookupTables interface {
	Table(slug string) (repositories.LookupTable, bool)
	Slugs() []string
}

var (
	_ userStore        = (*repositories.UserRepository)(nil)
	_ tokenStore       = (*repositories.TokenRepository)(nil)
	_ roleStore        = (*repositories.RoleRepository)(nil)
	_ studentStore     = (*repositories.StudentRepository)(nil)
	_ applicationStore = (*repositories.ApplicationRepository)(nil)
	_ documentStore    = (*repositories.DocumentRepository)(nil)
	_ lookupTables     = (*repositories.LookupRegistry)(nil)
)

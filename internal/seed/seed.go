package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/unigate/admissions/internal/app/models"
	appRepos "github.com/unigate/admissions/internal/app/repositories"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/auth"
)

// AdminAccount is the administrator created on first start
type AdminAccount struct {
	Email    string
	Password string
}

type lookupTables interface {
	Table(slug string) (appRepos.LookupTable, bool)
}

type accounts interface {
	GetByEmail(ctx context.Context, email string) (*appModels.User, error)
	CreateWithStudent(ctx context.Context, user *appModels.User, student *appModels.Student, roleName string) error
}

type roleAssigner interface {
	Assign(ctx context.Context, userID uuid.UUID, roleName string) error
}

// Seeder inserts the reference data a fresh database needs
type Seeder struct {
	tables lookupTables
	users  accounts
	roles  roleAssigner
	logger zerolog.Logger
}

// NewSeeder creates a Seeder over the given repositories
func NewSeeder(tables lookupTables, users accounts, roles roleAssigner, lgr zerolog.Logger) *Seeder {
	return &Seeder{tables: tables, users: users, roles: roles, logger: lgr}
}

// CreateDefaultData seeds lookups and the bootstrap admin if they don't exist.
// Failures are collected so one bad row does not stop the rest.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, admin AdminAccount, lgr zerolog.Logger) error {
	repos := appRepos.NewRepositories(dbPool)
	return NewSeeder(repos.Lookups, repos.UserRepository, repos.RoleRepository, lgr).Run(ctx, admin)
}

// Run seeds the default lookups, then the admin account
func (s *Seeder) Run(ctx context.Context, admin AdminAccount) error {
	s.logger.Info().Msg("Checking/Creating default data (lookups, admin)...")

	var finalErr error
	for _, group := range defaultLookups() {
		created, err := s.seedTable(ctx, group.slug, group.records)
		if err != nil {
			s.logger.Error().Err(err).Str("slug", group.slug).Msg("Error seeding lookup table")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if created > 0 {
			s.logger.Info().Str("slug", group.slug).Int("created", created).Msg("Default lookup rows created")
		}
	}

	if err := s.seedAdmin(ctx, admin); err != nil {
		s.logger.Error().Err(err).Msg("Error creating default admin user")
		finalErr = errors.Join(finalErr, err)
	}

	return finalErr
}

// seedTable creates the records that are not there yet; a unique violation means the row exists
func (s *Seeder) seedTable(ctx context.Context, slug string, records []appModels.LookupRecord) (int, error) {
	table, ok := s.tables.Table(slug)
	if !ok {
		return 0, fmt.Errorf("unknown lookup table %q", slug)
	}

	created := 0
	for _, rec := range records {
		rec.Normalize()
		if _, err := table.Create(ctx, rec); err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Seeder) seedAdmin(ctx context.Context, admin AdminAccount) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" {
		s.logger.Info().Msg("No admin email configured, skipping admin account")
		return nil
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		// Make sure a configured admin keeps the role across restarts
		return s.roles.Assign(ctx, existing.ID, appModels.RoleAdmin)
	case !errors.Is(err, apperrors.ErrResourceNotFound):
		return err
	}

	if len(admin.Password) < auth.MinPasswordLength {
		return fmt.Errorf("admin password must be at least %d characters long", auth.MinPasswordLength)
	}
	hash, err := auth.HashPassword(admin.Password)
	if err != nil {
		return fmt.Errorf("error hashing admin password: %w", err)
	}

	user := &appModels.User{Email: email, PasswordHash: hash}
	student := &appModels.Student{Email: email, FirstName: "Admissions", LastName: "Administrator"}
	if err := s.users.CreateWithStudent(ctx, user, student, appModels.RoleAdmin); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil
		}
		return err
	}

	s.logger.Info().Str("email", email).Msg("Default admin user created")
	return nil
}

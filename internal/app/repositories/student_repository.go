package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/db"
	"github.com/unigate/admissions/internal/pkg/dberrors"
	"github.com/unigate/admissions/internal/pkg/logger"
)

var studentColumns = []string{
	"s.id", "s.user_id", "s.school_id", "s.first_name", "s.middle_name", "s.last_name", "s.additional_name",
	"s.email", "s.whats_app", "s.phone", "s.date_of_birth", "s.gender_id", "s.nationality_country_id",
	"s.current_country_id", "s.is_active", "s.created_at", "s.updated_at",
}

func studentTargets(s *models.Student) []any {
	return []any{
		&s.ID, &s.UserID, &s.SchoolID, &s.FirstName, &s.MiddleName, &s.LastName, &s.AdditionalName,
		&s.Email, &s.WhatsApp, &s.Phone, &s.DateOfBirth, &s.GenderID, &s.NationalityCountryID,
		&s.CurrentCountryID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	}
}

// StudentRepository handles student profile database operations
type StudentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{db: db, sb: builder()}
}

func insertStudent(ctx context.Context, q db.Querier, sb squirrel.StatementBuilderType, s *models.Student) error {
	sql, args, err := sb.Insert("student").
		Columns("user_id", "first_name", "last_name", "email").
		Values(s.UserID, s.FirstName, s.LastName, s.Email).
		Suffix("RETURNING id, is_active, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}
	if err := q.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		logger.Error().Err(err).Str("userID", s.UserID.String()).Msg("Error executing create student query")
		return dberrors.Translate(err, "student")
	}
	return nil
}

func (r *StudentRepository) getBy(ctx context.Context, column string, value uuid.UUID) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("student s").
		Where(squirrel.Eq{column: value}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}
	var s models.Student
	if err := r.db.QueryRow(ctx, sql, args...).Scan(studentTargets(&s)...); err != nil {
		return nil, dberrors.Translate(err, "student")
	}
	return &s, nil
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	return r.getBy(ctx, "s.id", id)
}

// GetByUserID retrieves the student owned by a user account
func (r *StudentRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Student, error) {
	return r.getBy(ctx, "s.user_id", userID)
}

// EnsureForUser returns the student of the user, creating an empty profile when none exists
func (r *StudentRepository) EnsureForUser(ctx context.Context, userID uuid.UUID, email string) (*models.Student, error) {
	sql, args, err := r.sb.Insert("student").
		Columns("user_id", "email").
		Values(userID, email).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ensure student query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error ensuring student row")
		return nil, dberrors.Translate(err, "student")
	}
	return r.GetByUserID(ctx, userID)
}

// UpsertProfile writes the personal information of the user's student profile
func (r *StudentRepository) UpsertProfile(ctx context.Context, s *models.Student) error {
	sql, args, err := r.sb.Insert("student").
		Columns("user_id", "first_name", "middle_name", "last_name", "additional_name", "email",
			"whats_app", "phone", "date_of_birth", "gender_id", "nationality_country_id", "current_country_id").
		Values(s.UserID, s.FirstName, s.MiddleName, s.LastName, s.AdditionalName, s.Email,
			s.WhatsApp, s.Phone, s.DateOfBirth, s.GenderID, s.NationalityCountryID, s.CurrentCountryID).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			middle_name = EXCLUDED.middle_name,
			last_name = EXCLUDED.last_name,
			additional_name = EXCLUDED.additional_name,
			email = EXCLUDED.email,
			whats_app = EXCLUDED.whats_app,
			phone = EXCLUDED.phone,
			date_of_birth = EXCLUDED.date_of_birth,
			gender_id = EXCLUDED.gender_id,
			nationality_country_id = EXCLUDED.nationality_country_id,
			current_country_id = EXCLUDED.current_country_id,
			updated_at = NOW()
		RETURNING id, school_id, is_active, created_at, updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert student query: %w", err)
	}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.SchoolID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		logger.Error().Err(err).Str("userID", s.UserID.String()).Msg("Error upserting student profile")
		return dberrors.Translate(err, "student")
	}
	return nil
}

// ListOverviews loads every student with their most recent application and
// the names that application references.
func (r *StudentRepository) ListOverviews(ctx context.Context) ([]*models.StudentOverview, error) {
	cols := append(append([]string{}, studentColumns...),
		"la.id", "t.term_name", "ay.year_name", "st.status_name", "la.notes", "cc.country_name")

	sql, args, err := r.sb.Select(cols...).
		From("student s").
		JoinClause(`LEFT JOIN LATERAL (
			SELECT a.* FROM application a
			WHERE a.student_id = s.id
			ORDER BY a.created_at DESC
			LIMIT 1
		) la ON TRUE`).
		LeftJoin("term t ON t.id = la.term_id").
		LeftJoin("academic_year ay ON ay.id = la.academic_year_id").
		LeftJoin("application_status st ON st.id = la.status_id").
		LeftJoin("country cc ON cc.id = s.current_country_id").
		OrderBy("s.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying student overviews")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.StudentOverview, error) {
		var o models.StudentOverview
		targets := append(studentTargets(&o.Student),
			&o.ApplicationID, &o.TermName, &o.AcademicYearName, &o.StatusName, &o.Notes, &o.CurrentCountryName)
		if err := row.Scan(targets...); err != nil {
			return nil, err
		}
		return &o, nil
	})
}

package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/dberrors"
	"github.com/unigate/admissions/internal/pkg/logger"
)

var applicationColumns = []string{
	"a.id", "a.student_id", "a.term_id", "a.academic_year_id", "a.degree_program_id", "a.academic_level_id",
	"a.status_id", "a.student_type_id", "a.scholarship_id", "a.student_location_id", "a.notes",
	"a.term_condition", "a.submitted_at", "a.created_at", "a.updated_at",
}

func applicationTargets(a *models.Application) []any {
	return []any{
		&a.ID, &a.StudentID, &a.TermID, &a.AcademicYearID, &a.DegreeProgramID, &a.AcademicLevelID,
		&a.StatusID, &a.StudentTypeID, &a.ScholarshipID, &a.StudentLocationID, &a.Notes,
		&a.TermCondition, &a.SubmittedAt, &a.CreatedAt, &a.UpdatedAt,
	}
}

// ReviewUpdate carries the fields an administrator may change on an application.
// Nil fields are left untouched.
type ReviewUpdate struct {
	StatusID          *uuid.UUID
	Notes             *string
	ScholarshipID     *uuid.UUID
	StudentTypeID     *uuid.UUID
	StudentLocationID *uuid.UUID
}

// ApplicationRepository handles application database operations
type ApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{db: db, sb: builder()}
}

func (r *ApplicationRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.Application, error) {
	sql, args, err := r.sb.Select(applicationColumns...).
		From("application a").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}
	var a models.Application
	if err := r.db.QueryRow(ctx, sql, args...).Scan(applicationTargets(&a)...); err != nil {
		return nil, dberrors.Translate(err, "application")
	}
	return &a, nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	return r.getOne(ctx, squirrel.Eq{"a.id": id})
}

// FindByKey retrieves the application of a student for a term and academic year
func (r *ApplicationRepository) FindByKey(ctx context.Context, key models.ApplicationKey) (*models.Application, error) {
	return r.getOne(ctx, squirrel.Eq{
		"a.student_id":       key.StudentID,
		"a.term_id":          key.TermID,
		"a.academic_year_id": key.AcademicYearID,
	})
}

// Create inserts a new application
func (r *ApplicationRepository) Create(ctx context.Context, a *models.Application) error {
	sql, args, err := r.sb.Insert("application").
		Columns("student_id", "term_id", "academic_year_id", "degree_program_id", "academic_level_id", "status_id").
		Values(a.StudentID, a.TermID, a.AcademicYearID, a.DegreeProgramID, a.AcademicLevelID, a.StatusID).
		Suffix("RETURNING id, term_condition, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create application query: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.TermCondition, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, "application_student_term_year_key") {
			return apperrors.NewConflictError("an application for this term and academic year already exists")
		}
		logger.Error().Err(err).Str("studentID", a.StudentID.String()).Msg("Error executing create application query")
		return dberrors.Translate(err, "application")
	}
	return nil
}

// UpdateEducation changes the program and level of an application
func (r *ApplicationRepository) UpdateEducation(ctx context.Context, id uuid.UUID, programID, levelID uuid.UUID) error {
	sql, args, err := r.sb.Update("application").
		Set("degree_program_id", programID).
		Set("academic_level_id", levelID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update education query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

// MarkSubmitted records acceptance of the terms and the submission time
func (r *ApplicationRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, statusID *uuid.UUID, at time.Time) error {
	q := r.sb.Update("application").
		Set("term_condition", true).
		Set("submitted_at", at).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "term_condition": false})
	if statusID != nil {
		q = q.Set("status_id", *statusID)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build submit application query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return dberrors.Translate(err, "application")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAlreadySubmitted
	}
	return nil
}

// UpdateReview applies an administrator's review fields
func (r *ApplicationRepository) UpdateReview(ctx context.Context, id uuid.UUID, u ReviewUpdate) error {
	q := r.sb.Update("application").Set("updated_at", squirrel.Expr("NOW()")).Where(squirrel.Eq{"id": id})
	if u.StatusID != nil {
		q = q.Set("status_id", *u.StatusID)
	}
	if u.Notes != nil {
		q = q.Set("notes", *u.Notes)
	}
	if u.ScholarshipID != nil {
		q = q.Set("scholarship_id", *u.ScholarshipID)
	}
	if u.StudentTypeID != nil {
		q = q.Set("student_type_id", *u.StudentTypeID)
	}
	if u.StudentLocationID != nil {
		q = q.Set("student_location_id", *u.StudentLocationID)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build review application query: %w", err)
	}
	return r.execOne(ctx, sql, args)
}

func (r *ApplicationRepository) execOne(ctx context.Context, sql string, args []any) error {
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing application update")
		return dberrors.Translate(err, "application")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("application not found")
	}
	return nil
}

// summaryQuery selects applications with resolved names and their document count
func (r *ApplicationRepository) summaryQuery() squirrel.SelectBuilder {
	cols := append(append([]string{}, applicationColumns...),
		"t.term_name", "ay.year_name", "al.level_name", "dp.program_name", "st.status_code", "st.status_name",
		"sc.scholarship_name", "sty.student_type", "sl.location_name",
		`(SELECT COUNT(*) FROM application_documents d
			WHERE d.student_id = a.student_id AND d.term_id = a.term_id AND d.academic_year_id = a.academic_year_id)`,
	)
	return r.sb.Select(cols...).
		From("application a").
		LeftJoin("term t ON t.id = a.term_id").
		LeftJoin("academic_year ay ON ay.id = a.academic_year_id").
		LeftJoin("academic_level al ON al.id = a.academic_level_id").
		LeftJoin("degree_programs dp ON dp.id = a.degree_program_id").
		LeftJoin("application_status st ON st.id = a.status_id").
		LeftJoin("scholarships sc ON sc.id = a.scholarship_id").
		LeftJoin("student_type sty ON sty.id = a.student_type_id").
		LeftJoin("student_location sl ON sl.id = a.student_location_id")
}

func scanSummary(row pgx.CollectableRow) (*models.ApplicationSummary, error) {
	var s models.ApplicationSummary
	targets := append(applicationTargets(&s.Application),
		&s.TermName, &s.AcademicYearName, &s.AcademicLevelName, &s.DegreeProgramName, &s.StatusCode, &s.StatusName,
		&s.ScholarshipName, &s.StudentTypeName, &s.StudentLocationName, &s.DocumentCount)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSummariesByStudent lists a student's applications, newest first
func (r *ApplicationRepository) ListSummariesByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.ApplicationSummary, error) {
	sql, args, err := r.summaryQuery().
		Where(squirrel.Eq{"a.student_id": studentID}).
		OrderBy("a.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list applications query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("studentID", studentID.String()).Msg("Error querying applications")
		return nil, fmt.Errorf("error querying applications: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, scanSummary)
}

// GetSummary retrieves one application with resolved names
func (r *ApplicationRepository) GetSummary(ctx context.Context, id uuid.UUID) (*models.ApplicationSummary, error) {
	sql, args, err := r.summaryQuery().Where(squirrel.Eq{"a.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application summary query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying application: %w", err)
	}
	defer rows.Close()
	summary, err := pgx.CollectExactlyOneRow(rows, scanSummary)
	if err != nil {
		return nil, dberrors.Translate(err, "application")
	}
	return summary, nil
}

// StatusIDByCode resolves an active application_status code, nil when absent
func (r *ApplicationRepository) StatusIDByCode(ctx context.Context, code string) (*uuid.UUID, error) {
	sql, args, err := r.sb.Select("id").From("application_status").
		Where(squirrel.Eq{"status_code": code, "is_active": true}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build status lookup query: %w", err)
	}
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error resolving status %s: %w", code, err)
	}
	return &id, nil
}

// ProgramLevel returns the academic level a degree program belongs to, nil when unset
func (r *ApplicationRepository) ProgramLevel(ctx context.Context, programID uuid.UUID) (*uuid.UUID, error) {
	sql, args, err := r.sb.Select("level_id").From("degree_programs").
		Where(squirrel.Eq{"id": programID, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build program level query: %w", err)
	}
	var level *uuid.UUID
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&level); err != nil {
		return nil, dberrors.Translate(err, "degree program")
	}
	return level, nil
}

// CountStaleDrafts counts applications not submitted since before the cutoff
func (r *ApplicationRepository) CountStaleDrafts(ctx context.Context, cutoff time.Time) (int64, error) {
	sql, args, err := r.sb.Select("COUNT(*)").From("application").
		Where(squirrel.Eq{"term_condition": false}).
		Where(squirrel.Lt{"updated_at": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build stale drafts query: %w", err)
	}
	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting stale drafts: %w", err)
	}
	return n, nil
}

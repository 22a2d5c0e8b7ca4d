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
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/dberrors"
	"github.com/unigate/admissions/internal/pkg/logger"
)

var documentColumns = []string{
	"id", "student_id", "term_id", "academic_year_id", "document_type", "file_name",
	"storage_path", "content_type", "file_size", "country_id", "is_active", "created_at", "updated_at",
}

func scanDocument(row pgx.CollectableRow) (*models.Document, error) {
	var d models.Document
	err := row.Scan(&d.ID, &d.StudentID, &d.TermID, &d.AcademicYearID, &d.DocumentType, &d.FileName,
		&d.StoragePath, &d.ContentType, &d.FileSize, &d.CountryID, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DocumentRepository handles application document metadata
type DocumentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(db *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{db: db, sb: builder()}
}

// CreateBatch inserts all documents of one upload in a single transaction
func (r *DocumentRepository) CreateBatch(ctx context.Context, docs []*models.Document) error {
	if len(docs) == 0 {
		return nil
	}
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		for _, d := range docs {
			sql, args, err := r.sb.Insert("application_documents").
				Columns("student_id", "term_id", "academic_year_id", "document_type", "file_name",
					"storage_path", "content_type", "file_size", "country_id").
				Values(d.StudentID, d.TermID, d.AcademicYearID, d.DocumentType, d.FileName,
					d.StoragePath, d.ContentType, d.FileSize, d.CountryID).
				Suffix("RETURNING id, is_active, created_at, updated_at").
				ToSql()
			if err != nil {
				return fmt.Errorf("failed to build create document query: %w", err)
			}
			if err := tx.QueryRow(ctx, sql, args...).Scan(&d.ID, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
				logger.Error().Err(err).Str("path", d.StoragePath).Msg("Error inserting document")
				return dberrors.Translate(err, "document")
			}
		}
		return nil
	})
}

// ListByKey lists the documents attached to an application, oldest first
func (r *DocumentRepository) ListByKey(ctx context.Context, key models.ApplicationKey) ([]*models.Document, error) {
	sql, args, err := r.sb.Select(documentColumns...).
		From("application_documents").
		Where(squirrel.Eq{
			"student_id":       key.StudentID,
			"term_id":          key.TermID,
			"academic_year_id": key.AcademicYearID,
		}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list documents query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("studentID", key.StudentID.String()).Msg("Error querying documents")
		return nil, fmt.Errorf("error querying documents: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, scanDocument)
}

// GetByID retrieves a document
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	sql, args, err := r.sb.Select(documentColumns...).
		From("application_documents").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get document query: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying document: %w", err)
	}
	defer rows.Close()
	doc, err := pgx.CollectExactlyOneRow(rows, scanDocument)
	if err != nil {
		return nil, dberrors.Translate(err, "document")
	}
	return doc, nil
}

// Delete removes a document row
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Delete("application_documents").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete document query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("document not found")
	}
	return nil
}

// CountByType counts the documents of one type attached to an application
func (r *DocumentRepository) CountByType(ctx context.Context, key models.ApplicationKey, docType models.DocumentType) (int, error) {
	sql, args, err := r.sb.Select("COUNT(*)").
		From("application_documents").
		Where(squirrel.Eq{
			"student_id":       key.StudentID,
			"term_id":          key.TermID,
			"academic_year_id": key.AcademicYearID,
			"document_type":    docType,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count documents query: %w", err)
	}
	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting documents: %w", err)
	}
	return n, nil
}

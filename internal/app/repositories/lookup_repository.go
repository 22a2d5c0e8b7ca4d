package repositories

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/dberrors"
	"github.com/unigate/admissions/internal/pkg/logger"
)

// lookupAlias is the alias of the lookup table in every generated query
const lookupAlias = "t"

// LookupDefinition describes one reference table served by the generic lookup engine.
// Columns lists the writable columns in the order of the record's Values;
// ReadOnly holds qualified expressions from Joins appended after them.
type LookupDefinition struct {
	Slug      string
	Table     string
	Label     string
	Columns   []string
	ReadOnly  []string
	Joins     []string
	OrderBy   []string
	Public    bool
	NewRecord func() models.LookupRecord
}

// LookupTable is the data access surface of one lookup table
type LookupTable interface {
	Definition() LookupDefinition
	List(ctx context.Context, activeOnly bool) ([]models.LookupRecord, error)
	Get(ctx context.Context, id uuid.UUID) (models.LookupRecord, error)
	Create(ctx context.Context, rec models.LookupRecord) (models.LookupRecord, error)
	Update(ctx context.Context, id uuid.UUID, rec models.LookupRecord) (models.LookupRecord, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// LookupStore runs the CRUD queries of a single lookup definition
type LookupStore struct {
	def LookupDefinition
	db  *pgxpool.Pool
	sb  squirrel.StatementBuilderType
}

// NewLookupStore creates a store for def
func NewLookupStore(db *pgxpool.Pool, def LookupDefinition) *LookupStore {
	return &LookupStore{def: def, db: db, sb: builder()}
}

// Definition returns the table definition the store was built from
func (s *LookupStore) Definition() LookupDefinition { return s.def }

func (s *LookupStore) col(name string) string { return lookupAlias + "." + name }

// SelectQuery builds the base select: shared columns, writable columns, then read-only ones
func (s *LookupStore) SelectQuery() squirrel.SelectBuilder {
	cols := []string{s.col("id"), s.col("is_active"), s.col("created_at"), s.col("updated_at")}
	for _, c := range s.def.Columns {
		cols = append(cols, s.col(c))
	}
	cols = append(cols, s.def.ReadOnly...)

	q := s.sb.Select(cols...).From(s.def.Table + " " + lookupAlias)
	for _, j := range s.def.Joins {
		q = q.LeftJoin(j)
	}
	return q
}

func (s *LookupStore) targets(rec models.LookupRecord) []any {
	b := rec.Base()
	return append([]any{&b.ID, &b.IsActive, &b.CreatedAt, &b.UpdatedAt}, rec.Targets()...)
}

// List returns every row, or only active rows when activeOnly is set
func (s *LookupStore) List(ctx context.Context, activeOnly bool) ([]models.LookupRecord, error) {
	q := s.SelectQuery().OrderBy(s.def.OrderBy...)
	if activeOnly {
		q = q.Where(squirrel.Eq{s.col("is_active"): true})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list %s query: %w", s.def.Slug, err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("lookup", s.def.Slug).Msg("Error querying lookup table")
		return nil, fmt.Errorf("error querying %s: %w", s.def.Slug, err)
	}
	defer rows.Close()

	records := make([]models.LookupRecord, 0)
	for rows.Next() {
		rec := s.def.NewRecord()
		if err := rows.Scan(s.targets(rec)...); err != nil {
			return nil, fmt.Errorf("error scanning %s row: %w", s.def.Slug, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get retrieves a row by ID
func (s *LookupStore) Get(ctx context.Context, id uuid.UUID) (models.LookupRecord, error) {
	sql, args, err := s.SelectQuery().Where(squirrel.Eq{s.col("id"): id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get %s query: %w", s.def.Slug, err)
	}
	rec := s.def.NewRecord()
	if err := s.db.QueryRow(ctx, sql, args...).Scan(s.targets(rec)...); err != nil {
		return nil, dberrors.Translate(err, s.def.Label)
	}
	return rec, nil
}

// InsertQuery builds the insert statement for rec
func (s *LookupStore) InsertQuery(rec models.LookupRecord) (string, []any, error) {
	return s.sb.Insert(s.def.Table).
		Columns(s.def.Columns...).
		Values(rec.Values()...).
		Suffix("RETURNING id").
		ToSql()
}

// Create inserts rec and returns the stored row
func (s *LookupStore) Create(ctx context.Context, rec models.LookupRecord) (models.LookupRecord, error) {
	sql, args, err := s.InsertQuery(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to build create %s query: %w", s.def.Slug, err)
	}
	var id uuid.UUID
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Str("lookup", s.def.Slug).Msg("Error inserting lookup row")
		return nil, dberrors.Translate(err, s.def.Label)
	}
	return s.Get(ctx, id)
}

// UpdateQuery builds the update statement writing every writable column of rec
func (s *LookupStore) UpdateQuery(id uuid.UUID, rec models.LookupRecord) (string, []any, error) {
	values := rec.Values()
	set := make(map[string]interface{}, len(values)+1)
	for i, c := range s.def.Columns {
		set[c] = values[i]
	}
	set["updated_at"] = squirrel.Expr("NOW()")
	return s.sb.Update(s.def.Table).SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
}

// Update overwrites the writable columns of a row and returns it
func (s *LookupStore) Update(ctx context.Context, id uuid.UUID, rec models.LookupRecord) (models.LookupRecord, error) {
	sql, args, err := s.UpdateQuery(id, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to build update %s query: %w", s.def.Slug, err)
	}
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("lookup", s.def.Slug).Str("id", id.String()).Msg("Error updating lookup row")
		return nil, dberrors.Translate(err, s.def.Label)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.NewResourceNotFoundError(s.def.Label + " not found")
	}
	return s.Get(ctx, id)
}

// SetActive toggles is_active; rows are never physically deleted
func (s *LookupStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	sql, args, err := s.sb.Update(s.def.Table).
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set active %s query: %w", s.def.Slug, err)
	}
	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return dberrors.Translate(err, s.def.Label)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(s.def.Label + " not found")
	}
	return nil
}

// LookupRegistry indexes lookup stores by slug
type LookupRegistry struct {
	stores map[string]*LookupStore
}

// NewLookupRegistry creates a store for every definition
func NewLookupRegistry(db *pgxpool.Pool, defs ...LookupDefinition) *LookupRegistry {
	r := &LookupRegistry{stores: make(map[string]*LookupStore, len(defs))}
	for _, def := range defs {
		r.stores[def.Slug] = NewLookupStore(db, def)
	}
	return r
}

// Table returns the store registered for slug
func (r *LookupRegistry) Table(slug string) (LookupTable, bool) {
	s, ok := r.stores[slug]
	if !ok {
		return nil, false
	}
	return s, true
}

// Slugs lists the registered slugs alphabetically
func (r *LookupRegistry) Slugs() []string {
	slugs := make([]string, 0, len(r.stores))
	for slug := range r.stores {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/repositories"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/cache"
)

// LookupInfo describes a lookup table for the admin navigation
type LookupInfo struct {
	Slug   string `json:"slug" example:"terms"`
	Label  string `json:"label" example:"term"`
	Public bool   `json:"public"`
}

// LookupService defines the operations on the lookup tables
type LookupService interface {
	Tables() []LookupInfo
	NewRecord(slug string) (models.LookupRecord, error)
	List(ctx context.Context, slug string, includeInactive bool) ([]models.LookupRecord, error)
	Get(ctx context.Context, slug string, id uuid.UUID) (models.LookupRecord, error)
	Create(ctx context.Context, slug string, rec models.LookupRecord) (models.LookupRecord, error)
	Update(ctx context.Context, slug string, id uuid.UUID, rec models.LookupRecord) (models.LookupRecord, error)
	SetActive(ctx context.Context, slug string, id uuid.UUID, active bool) error
	Options(ctx context.Context, slug string) (json.RawMessage, error)
}

// lookupDependents lists the tables whose cached options embed columns of another table
var lookupDependents = map[string][]string{
	repositories.LookupAcademicLevels: {repositories.LookupDegreePrograms},
}

type lookupServiceImpl struct {
	tables lookupTables
	cache  cache.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewLookupService creates a new lookup service. A nil cache disables caching.
func NewLookupService(tables lookupTables, c cache.Cache, ttl time.Duration, logger zerolog.Logger) LookupService {
	if c == nil {
		c = cache.Noop{}
	}
	return &lookupServiceImpl{
		tables: tables,
		cache:  c,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *lookupServiceImpl) table(slug string) (repositories.LookupTable, error) {
	t, ok := s.tables.Table(slug)
	if !ok {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("Unknown lookup table %q", slug))
	}
	return t, nil
}

func optionsKey(slug string) string {
	return "lookups:" + slug
}

// invalidate drops the cached options of slug and of the tables that embed it
func (s *lookupServiceImpl) invalidate(ctx context.Context, slug string) {
	keys := []string{optionsKey(slug)}
	for _, dep := range lookupDependents[slug] {
		keys = append(keys, optionsKey(dep))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("Failed to invalidate lookup cache")
	}
}

// validateRecord trims the record and applies the table's required-field rules
func (s *lookupServiceImpl) validateRecord(rec models.LookupRecord) error {
	if rec == nil {
		return apperrors.NewValidationError("Request body is required")
	}
	rec.Normalize()
	if err := rec.Validate(); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

func (s *lookupServiceImpl) Tables() []LookupInfo {
	slugs := s.tables.Slugs()
	infos := make([]LookupInfo, 0, len(slugs))
	for _, slug := range slugs {
		t, ok := s.tables.Table(slug)
		if !ok {
			continue
		}
		def := t.Definition()
		infos = append(infos, LookupInfo{Slug: def.Slug, Label: def.Label, Public: def.Public})
	}
	return infos
}

func (s *lookupServiceImpl) NewRecord(slug string) (models.LookupRecord, error) {
	t, err := s.table(slug)
	if err != nil {
		return nil, err
	}
	return t.Definition().NewRecord(), nil
}

func (s *lookupServiceImpl) List(ctx context.Context, slug string, includeInactive bool) ([]models.LookupRecord, error) {
	t, err := s.table(slug)
	if err != nil {
		return nil, err
	}
	return t.List(ctx, !includeInactive)
}

func (s *lookupServiceImpl) Get(ctx context.Context, slug string, id uuid.UUID) (models.LookupRecord, error) {
	t, err := s.table(slug)
	if err != nil {
		return nil, err
	}
	return t.Get(ctx, id)
}

func (s *lookupServiceImpl) Create(ctx context.Context, slug string, rec models.LookupRecord) (models.LookupRecord, error) {
	t, err := s.table(slug)
	if err != nil {
		return nil, err
	}
	if err := s.validateRecord(rec); err != nil {
		return nil, err
	}

	created, err := t.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, slug)
	return created, nil
}

func (s *lookupServiceImpl) Update(ctx context.Context, slug string, id uuid.UUID, rec models.LookupRecord) (models.LookupRecord, error) {
	t, err := s.table(slug)
	if err != nil {
		return nil, err
	}
	if err := s.validateRecord(rec); err != nil {
		return nil, err
	}

	updated, err := t.Update(ctx, id, rec)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, slug)
	return updated, nil
}

func (s *lookupServiceImpl) SetActive(ctx context.Context, slug string, id uuid.UUID, active bool) error {
	t, err := s.table(slug)
	if err != nil {
		return err
	}
	if err := t.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.invalidate(ctx, slug)
	return nil
}

// Options returns the active rows of a public table, encoded for the wizard dropdowns
func (s *lookupServiceImpl) Options(ctx context.Context, slug string) (json.RawMessage, error) {
	t, err := s.table(slug)
	if err != nil {
		return nil, err
	}
	if !t.Definition().Public {
		return nil, apperrors.NewResourceNotFoundError(fmt.Sprintf("Unknown lookup table %q", slug))
	}

	key := optionsKey(slug)
	cached, err := s.cache.Get(ctx, key)
	if err == nil {
		return json.RawMessage(cached), nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("Lookup cache read failed")
	}

	records, err := t.List(ctx, true)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.LookupRecord{}
	}
	encoded, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s options: %w", slug, err)
	}

	if err := s.cache.Set(ctx, key, encoded, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("Lookup cache write failed")
	}
	return encoded, nil
}

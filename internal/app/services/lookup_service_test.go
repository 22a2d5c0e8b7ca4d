package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/repositories"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/cache"
)

// memLookupTable keeps the rows of one lookup definition in memory
type memLookupTable struct {
	def       repositories.LookupDefinition
	rows      []models.LookupRecord
	listCalls int
}

func (m *memLookupTable) Definition() repositories.LookupDefinition { return m.def }

func (m *memLookupTable) List(_ context.Context, activeOnly bool) ([]models.LookupRecord, error) {
	m.listCalls++
	var out []models.LookupRecord
	for _, r := range m.rows {
		if activeOnly && !r.Base().IsActive {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memLookupTable) Get(_ context.Context, id uuid.UUID) (models.LookupRecord, error) {
	for _, r := range m.rows {
		if r.Base().ID == id {
			return r, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError(m.def.Label + " not found")
}

func (m *memLookupTable) Create(_ context.Context, rec models.LookupRecord) (models.LookupRecord, error) {
	rec.Base().ID = uuid.New()
	rec.Base().IsActive = true
	m.rows = append(m.rows, rec)
	return rec, nil
}

func (m *memLookupTable) Update(ctx context.Context, id uuid.UUID, rec models.LookupRecord) (models.LookupRecord, error) {
	for i, r := range m.rows {
		if r.Base().ID == id {
			*rec.Base() = *r.Base()
			m.rows[i] = rec
			return rec, nil
		}
	}
	return nil, apperrors.NewResourceNotFoundError(m.def.Label + " not found")
}

func (m *memLookupTable) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	for _, r := range m.rows {
		if r.Base().ID == id {
			r.Base().IsActive = active
			return nil
		}
	}
	return apperrors.NewResourceNotFoundError(m.def.Label + " not found")
}

type memLookupRegistry map[string]*memLookupTable

func (r memLookupRegistry) Table(slug string) (repositories.LookupTable, bool) {
	t, ok := r[slug]
	if !ok {
		return nil, false
	}
	return t, true
}

func (r memLookupRegistry) Slugs() []string {
	var out []string
	for _, def := range repositories.Definitions() {
		if _, ok := r[def.Slug]; ok {
			out = append(out, def.Slug)
		}
	}
	return out
}

func newMemLookupRegistry() memLookupRegistry {
	reg := memLookupRegistry{}
	for _, def := range repositories.Definitions() {
		reg[def.Slug] = &memLookupTable{def: def}
	}
	return reg
}

func newTestCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewRedisCacheFromClient(client, "test:"), mr
}

func TestLookupCreate_ValidatesAndNormalizes(t *testing.T) {
	reg := newMemLookupRegistry()
	svc := NewLookupService(reg, nil, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Create(ctx, repositories.LookupCountries, &models.Country{CountryName: "Kenya", ISO2: "KE"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.EqualError(t, err, "All fields are required.")

	_, err = svc.Create(ctx, repositories.LookupTerms, &models.Term{TermName: "Fall"})
	assert.EqualError(t, err, "Term code and name are required!")

	rec, err := svc.Create(ctx, repositories.LookupCountries, &models.Country{CountryName: " Kenya ", ISO2: "ke", ISO3: "ken"})
	require.NoError(t, err)
	country := rec.(*models.Country)
	assert.Equal(t, "Kenya", country.CountryName)
	assert.Equal(t, "KE", country.ISO2)
	assert.Equal(t, "KEN", country.ISO3)

	_, err = svc.Create(ctx, "planets", &models.Term{})
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestLookupList_ActiveOnlyByDefault(t *testing.T) {
	reg := newMemLookupRegistry()
	svc := NewLookupService(reg, nil, time.Minute, zerolog.Nop())
	ctx := context.Background()

	rec, err := svc.Create(ctx, repositories.LookupGenders, &models.Gender{GenderName: "Female"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, repositories.LookupGenders, &models.Gender{GenderName: "Male"})
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, repositories.LookupGenders, rec.Base().ID, false))

	active, err := svc.List(ctx, repositories.LookupGenders, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.List(ctx, repositories.LookupGenders, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLookupOptions_CachedAndInvalidated(t *testing.T) {
	reg := newMemLookupRegistry()
	c, mr := newTestCache(t)
	svc := NewLookupService(reg, c, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Create(ctx, repositories.LookupTerms, &models.Term{TermCode: "fall", TermName: "Fall"})
	require.NoError(t, err)

	first, err := svc.Options(ctx, repositories.LookupTerms)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lookups:terms"))

	second, err := svc.Options(ctx, repositories.LookupTerms)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, 1, reg[repositories.LookupTerms].listCalls)

	var terms []models.Term
	require.NoError(t, json.Unmarshal(second, &terms))
	require.Len(t, terms, 1)
	assert.Equal(t, "FALL", terms[0].TermCode)

	_, err = svc.Create(ctx, repositories.LookupTerms, &models.Term{TermCode: "SPRING", TermName: "Spring"})
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:lookups:terms"))

	third, err := svc.Options(ctx, repositories.LookupTerms)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(third, &terms))
	assert.Len(t, terms, 2)
}

func TestLookupOptions_LevelChangeInvalidatesPrograms(t *testing.T) {
	reg := newMemLookupRegistry()
	c, mr := newTestCache(t)
	svc := NewLookupService(reg, c, time.Minute, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Options(ctx, repositories.LookupDegreePrograms)
	require.NoError(t, err)
	assert.True(t, mr.Exists("test:lookups:degree-programs"))

	_, err = svc.Create(ctx, repositories.LookupAcademicLevels, &models.AcademicLevel{LevelName: "Masters"})
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:lookups:degree-programs"))
}

func TestLookupOptions_PrivateTablesHidden(t *testing.T) {
	svc := NewLookupService(newMemLookupRegistry(), nil, time.Minute, zerolog.Nop())

	_, err := svc.Options(context.Background(), repositories.LookupUserRoles)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	raw, err := svc.Options(context.Background(), repositories.LookupGenders)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestLookupTables(t *testing.T) {
	svc := NewLookupService(newMemLookupRegistry(), nil, time.Minute, zerolog.Nop())

	tables := svc.Tables()
	require.Len(t, tables, 12)
	assert.Equal(t, LookupInfo{Slug: repositories.LookupTerms, Label: "term", Public: true}, tables[0])

	rec, err := svc.NewRecord(repositories.LookupScholarships)
	require.NoError(t, err)
	assert.IsType(t, &models.Scholarship{}, rec)
}

package repositories

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unigate/admissions/internal/app/models"
)

func TestDefinitions_MatchRecords(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range Definitions() {
		t.Run(def.Slug, func(t *testing.T) {
			assert.False(t, seen[def.Slug], "duplicate slug")
			seen[def.Slug] = true

			rec := def.NewRecord()
			assert.Len(t, rec.Values(), len(def.Columns), "values follow the writable columns")
			assert.Len(t, rec.Targets(), len(def.Columns)+len(def.ReadOnly), "targets add the read-only columns")
			assert.NotEmpty(t, def.OrderBy)
			assert.Len(t, def.Joins, len(def.ReadOnly))
		})
	}
}

func TestLookupStore_SelectQuery(t *testing.T) {
	store := NewLookupStore(nil, definition(t, LookupDegreePrograms))

	sql, args, err := store.SelectQuery().Where("t.is_active = ?", true).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t.id, t.is_active, t.created_at, t.updated_at, t.program_name, t.program_code, t.level_id, t.description, t.div, t.degree, al.level_name "+
			"FROM degree_programs t LEFT JOIN academic_level al ON al.id = t.level_id WHERE t.is_active = $1",
		sql)
	assert.Equal(t, []interface{}{true}, args)
}

func TestLookupStore_InsertQuery(t *testing.T) {
	store := NewLookupStore(nil, definition(t, LookupCountries))
	rec := &models.Country{CountryName: "Kenya", ISO2: "KE", ISO3: "KEN"}

	sql, args, err := store.InsertQuery(rec)
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO country (country_name,iso_2,iso_3) VALUES ($1,$2,$3) RETURNING id", sql)
	assert.Equal(t, []interface{}{"Kenya", "KE", "KEN"}, args)
}

func TestLookupStore_UpdateQuery(t *testing.T) {
	store := NewLookupStore(nil, definition(t, LookupCountries))
	id := uuid.New()

	sql, args, err := store.UpdateQuery(id, &models.Country{CountryName: "Kenya", ISO2: "KE", ISO3: "KEN"})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE country SET country_name = $1, iso_2 = $2, iso_3 = $3, updated_at = NOW() WHERE id = $4", sql)
	assert.Equal(t, []interface{}{"Kenya", "KE", "KEN", id}, args)
}

func TestLookupRegistry(t *testing.T) {
	reg := NewLookupRegistry(nil, Definitions()...)

	slugs := reg.Slugs()
	assert.Len(t, slugs, len(Definitions()))
	assert.True(t, strings.Compare(slugs[0], slugs[len(slugs)-1]) < 0)

	table, ok := reg.Table(LookupTerms)
	require.True(t, ok)
	assert.Equal(t, "term", table.Definition().Table)

	_, ok = reg.Table("planets")
	assert.False(t, ok)
}

func TestRoleRepository_ActiveRoles(t *testing.T) {
	repo := NewRoleRepository(nil)
	id := uuid.New()

	sql, args, err := repo.activeRoles(id).ToSql()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sql, "SELECT r.role_name FROM user_role ur JOIN roles r ON r.id = ur.role_id WHERE "))
	assert.Contains(t, sql, "ur.user_id = $")
	assert.Contains(t, args, id)
}

func TestTokenRepository_RevokeOnlyLiveTokens(t *testing.T) {
	repo := NewTokenRepository(nil)

	sql, args, err := repo.revokeQuery("abc").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE refresh_tokens SET revoked = $1 WHERE revoked = $2 AND token = $3", sql)
	assert.Equal(t, []interface{}{true, false, "abc"}, args)
}

func TestDocumentColumnsMatchScan(t *testing.T) {
	assert.Equal(t, "updated_at", documentColumns[len(documentColumns)-1])
	assert.Contains(t, documentColumns, "is_active")
	assert.Len(t, documentColumns, 13)
}

func TestApplicationRepository_SummaryQuery(t *testing.T) {
	repo := NewApplicationRepository(nil)

	sql, _, err := repo.summaryQuery().ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM application a LEFT JOIN term t ON t.id = a.term_id")
	assert.Contains(t, sql, "LEFT JOIN student_location sl ON sl.id = a.student_location_id")

	var s models.ApplicationSummary
	assert.Len(t, applicationTargets(&s.Application), len(applicationColumns))
}

func TestStudentColumnsMatchTargets(t *testing.T) {
	assert.Len(t, studentTargets(&models.Student{}), len(studentColumns))
}

func definition(t *testing.T, slug string) LookupDefinition {
	t.Helper()
	for _, def := range Definitions() {
		if def.Slug == slug {
			return def
		}
	}
	t.Fatalf("no definition for %s", slug)
	return LookupDefinition{}
}

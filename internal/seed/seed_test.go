package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appModels "github.com/unigate/admissions/internal/app/models"
	appRepos "github.com/unigate/admissions/internal/app/repositories"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/auth"
)

// fakeTable rejects records whose first value it has already seen
type fakeTable struct {
	slug string
	keys map[any]bool
	fail error
}

func (f *fakeTable) Definition() appRepos.LookupDefinition {
	return appRepos.LookupDefinition{Slug: f.slug}
}

func (f *fakeTable) List(context.Context, bool) ([]appModels.LookupRecord, error) { return nil, nil }

func (f *fakeTable) Get(context.Context, uuid.UUID) (appModels.LookupRecord, error) {
	return nil, apperrors.ErrResourceNotFound
}

func (f *fakeTable) Create(_ context.Context, rec appModels.LookupRecord) (appModels.LookupRecord, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	key := rec.Values()[0]
	if f.keys[key] {
		return nil, apperrors.NewConflictError("duplicate key")
	}
	f.keys[key] = true
	rec.Base().ID = uuid.New()
	return rec, nil
}

func (f *fakeTable) Update(context.Context, uuid.UUID, appModels.LookupRecord) (appModels.LookupRecord, error) {
	return nil, nil
}

func (f *fakeTable) SetActive(context.Context, uuid.UUID, bool) error { return nil }

type fakeTables map[string]*fakeTable

func (t fakeTables) Table(slug string) (appRepos.LookupTable, bool) {
	tbl, ok := t[slug]
	if !ok {
		return nil, false
	}
	return tbl, true
}

func newFakeTables() fakeTables {
	tables := fakeTables{}
	for _, group := range defaultLookups() {
		tables[group.slug] = &fakeTable{slug: group.slug, keys: map[any]bool{}}
	}
	return tables
}

type fakeAccounts struct {
	users   map[string]*appModels.User
	created []*appModels.Student
	role    string
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*appModels.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, apperrors.ErrResourceNotFound
}

func (f *fakeAccounts) CreateWithStudent(_ context.Context, user *appModels.User, student *appModels.Student, roleName string) error {
	user.ID = uuid.New()
	f.users[user.Email] = user
	f.created = append(f.created, student)
	f.role = roleName
	return nil
}

type fakeRoles struct {
	assigned map[uuid.UUID]string
}

func (f *fakeRoles) Assign(_ context.Context, userID uuid.UUID, roleName string) error {
	f.assigned[userID] = roleName
	return nil
}

func newSeeder(tables fakeTables) (*Seeder, *fakeAccounts, *fakeRoles) {
	users := &fakeAccounts{users: map[string]*appModels.User{}}
	roles := &fakeRoles{assigned: map[uuid.UUID]string{}}
	return NewSeeder(tables, users, roles, zerolog.Nop()), users, roles
}

func TestRun_CreatesLookupsAndAdmin(t *testing.T) {
	tables := newFakeTables()
	s, users, _ := newSeeder(tables)

	err := s.Run(context.Background(), AdminAccount{Email: " Admin@Example.com ", Password: "secret123"})
	require.NoError(t, err)

	assert.True(t, tables[appRepos.LookupRoles].keys[appModels.RoleAdmin])
	assert.True(t, tables[appRepos.LookupRoles].keys[appModels.RoleStudent])
	assert.True(t, tables[appRepos.LookupApplicationStatuses].keys[appModels.StatusDraft])
	assert.True(t, tables[appRepos.LookupApplicationStatuses].keys[appModels.StatusSubmitted])

	admin, ok := users.users["admin@example.com"]
	require.True(t, ok, "admin email should be normalized")
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "secret123"))
	assert.Equal(t, appModels.RoleAdmin, users.role)
	require.Len(t, users.created, 1)
	assert.Equal(t, "admin@example.com", users.created[0].Email)
}

func TestRun_IsIdempotent(t *testing.T) {
	tables := newFakeTables()
	s, users, roles := newSeeder(tables)
	admin := AdminAccount{Email: "admin@example.com", Password: "secret123"}

	require.NoError(t, s.Run(context.Background(), admin))
	require.NoError(t, s.Run(context.Background(), admin))

	assert.Len(t, users.created, 1)
	id := users.users["admin@example.com"].ID
	assert.Equal(t, appModels.RoleAdmin, roles.assigned[id])
}

func TestRun_SkipsAdminWithoutEmail(t *testing.T) {
	s, users, _ := newSeeder(newFakeTables())

	require.NoError(t, s.Run(context.Background(), AdminAccount{}))
	assert.Empty(t, users.users)
}

func TestRun_RejectsShortAdminPassword(t *testing.T) {
	s, users, _ := newSeeder(newFakeTables())

	err := s.Run(context.Background(), AdminAccount{Email: "admin@example.com", Password: "123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least")
	assert.Empty(t, users.users)
}

func TestRun_CollectsTableErrors(t *testing.T) {
	tables := newFakeTables()
	boom := errors.New("connection reset")
	tables[appRepos.LookupTerms].fail = boom
	s, users, _ := newSeeder(tables)

	err := s.Run(context.Background(), AdminAccount{Email: "admin@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	// later tables and the admin are still seeded
	assert.True(t, tables[appRepos.LookupCountries].keys["Kenya"])
	assert.Contains(t, users.users, "admin@example.com")
}

func TestDefaultLookupsAreValid(t *testing.T) {
	for _, group := range defaultLookups() {
		for _, rec := range group.records {
			rec.Normalize()
			assert.NoError(t, rec.Validate(), group.slug)
		}
	}
}

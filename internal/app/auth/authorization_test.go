package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/pkg/apperrors"
)

type stubRoles struct {
	roles map[uuid.UUID][]string
	err   error
}

func (s stubRoles) HasRole(_ context.Context, userID uuid.UUID, role string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for _, r := range s.roles[userID] {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

func TestAuthorizationService(t *testing.T) {
	ctx := context.Background()
	admin, student := uuid.New(), uuid.New()
	svc := NewAuthorizationService(stubRoles{roles: map[uuid.UUID][]string{
		admin:   {models.RoleAdmin},
		student: {models.RoleStudent},
	}})

	ok, err := svc.HasRole(ctx, admin, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasRole(ctx, student, models.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, svc.RequireRole(ctx, admin, models.RoleAdmin))

	assert.NoError(t, svc.RequireRole(ctx, student, models.RoleAdmin, models.RoleStudent))
	assert.ErrorIs(t, svc.RequireRole(ctx, student, models.RoleAdmin), apperrors.ErrPermissionDenied)
}

func TestAuthorizationService_LookupError(t *testing.T) {
	boom := errors.New("db down")
	svc := NewAuthorizationService(stubRoles{err: boom})

	err := svc.RequireRole(context.Background(), uuid.New(), models.RoleAdmin)
	assert.ErrorIs(t, err, boom)
}

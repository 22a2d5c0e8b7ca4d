package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/logger"
)

// RoleChecker reports whether a user holds an active role
type RoleChecker interface {
	HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error)
}

// AuthorizationService answers role questions against the database, so that
// a revoked role takes effect on the next request rather than at token expiry.
type AuthorizationService struct {
	roles RoleChecker
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(roles RoleChecker) *AuthorizationService {
	return &AuthorizationService{roles: roles}
}

// HasRole checks if the user currently holds roleName
func (s *AuthorizationService) HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error) {
	ok, err := s.roles.HasRole(ctx, userID, roleName)
	if err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Str("role", roleName).Msg("Error checking user role")
		return false, err
	}
	return ok, nil
}

// RequireRole returns a forbidden error (ErrPermissionDenied) unless the user
// holds one of roleNames
func (s *AuthorizationService) RequireRole(ctx context.Context, userID uuid.UUID, roleNames ...string) error {
	for _, role := range roleNames {
		ok, err := s.HasRole(ctx, userID, role)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return apperrors.NewForbiddenError("You don't have permission for this action")
}

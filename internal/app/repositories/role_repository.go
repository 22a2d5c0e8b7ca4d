package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/dberrors"
	"github.com/unigate/admissions/internal/pkg/logger"
)

// RoleRepository answers role membership questions over user_role and roles
type RoleRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRoleRepository creates a new RoleRepository
func NewRoleRepository(db *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{db: db, sb: builder()}
}

// activeRoles selects role names of a user where both the assignment and the role are active
func (r *RoleRepository) activeRoles(userID uuid.UUID) squirrel.SelectBuilder {
	return r.sb.Select("r.role_name").
		From("user_role ur").
		Join("roles r ON r.id = ur.role_id").
		Where(squirrel.Eq{"ur.user_id": userID, "ur.is_active": true, "r.is_active": true})
}

// RoleNames lists the active roles of a user ordered by the role order
func (r *RoleRepository) RoleNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	sql, args, err := r.activeRoles(userID).OrderBy("r.sort_order ASC", "r.role_name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build role names query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Msg("Error querying user roles")
		return nil, fmt.Errorf("error querying user roles: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("error scanning role name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// HasRole reports whether the user holds the named role right now
func (r *RoleRepository) HasRole(ctx context.Context, userID uuid.UUID, roleName string) (bool, error) {
	sql, args, err := r.activeRoles(userID).
		Where(squirrel.Eq{"r.role_name": roleName}).
		Prefix("SELECT EXISTS(").
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build has role query: %w", err)
	}

	var ok bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&ok); err != nil {
		logger.Error().Err(err).Str("userID", userID.String()).Str("role", roleName).Msg("Error checking user role")
		return false, fmt.Errorf("error checking user role: %w", err)
	}
	return ok, nil
}

// Assign gives the user the named role, reactivating an old assignment
func (r *RoleRepository) Assign(ctx context.Context, userID uuid.UUID, roleName string) error {
	tag, err := r.db.Exec(ctx, assignRoleSQL, userID, roleName)
	if err != nil {
		return dberrors.Translate(err, "role")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError(fmt.Sprintf("role %q not found", roleName))
	}
	return nil
}

// Revoke deactivates the user's assignment of the named role
func (r *RoleRepository) Revoke(ctx context.Context, userID uuid.UUID, roleName string) error {
	sql, args, err := r.sb.Update("user_role").
		Set("is_active", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Expr("role_id IN (SELECT id FROM roles WHERE role_name = ?)", roleName)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build revoke role query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error revoking role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("role assignment not found")
	}
	return nil
}

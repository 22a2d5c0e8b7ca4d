package repositories

import (
	"context"
	"fmt"
	"strings"

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

const usersEmailConstraint = "users_email_key"

// assignRoleSQL is a no-op when the role does not exist or is inactive
const assignRoleSQL = `INSERT INTO user_role (user_id, role_id)
SELECT $1, id FROM roles WHERE role_name = $2 AND is_active
ON CONFLICT (user_id, role_id) DO UPDATE SET is_active = TRUE, updated_at = NOW()`

var userColumns = []string{"id", "email", "password_hash", "is_active", "last_login_at", "created_at", "updated_at"}

// UserRepository handles account database operations
type UserRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db, sb: builder()}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateWithStudent inserts the account, its student profile and, when roleName
// names an existing role, the role assignment in one transaction.
func (r *UserRepository) CreateWithStudent(ctx context.Context, user *models.User, student *models.Student, roleName string) error {
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Insert("users").
			Columns("email", "password_hash", "is_active").
			Values(strings.ToLower(user.Email), user.PasswordHash, true).
			Suffix("RETURNING id, is_active, created_at, updated_at").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build create user query: %w", err)
		}
		if err := tx.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt); err != nil {
			if dberrors.IsDuplicateConstraintError(err, usersEmailConstraint) {
				return apperrors.ErrEmailAlreadyExists
			}
			logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
			return fmt.Errorf("error creating user: %w", err)
		}

		student.UserID = user.ID
		if err := insertStudent(ctx, tx, r.sb, student); err != nil {
			return err
		}

		if roleName == "" {
			return nil
		}
		if _, err := tx.Exec(ctx, assignRoleSQL, user.ID, roleName); err != nil {
			logger.Error().Err(err).Str("role", roleName).Msg("Error assigning role to new user")
			return dberrors.Translate(err, "role")
		}
		user.Roles = append(user.Roles, roleName)
		return nil
	})
}

// GetByID retrieves an account by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}
	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Translate(err, "user")
	}
	return user, nil
}

// GetByEmail retrieves an account by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").
		Where(squirrel.Expr("LOWER(email) = LOWER(?)", email)).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user by email query: %w", err)
	}
	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, dberrors.Translate(err, "user")
	}
	return user, nil
}

// EmailExists checks whether an account uses the email
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	sql, args, err := r.sb.Select("1").Prefix("SELECT EXISTS(").From("users").
		Where(squirrel.Expr("LOWER(email) = LOWER(?)", email)).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build email exists query: %w", err)
	}
	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Msg("Error checking email existence")
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

// UpdateLastLogin stamps last_login_at
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.sb.Update("users").
		Set("last_login_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update last login query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("userID", id.String()).Msg("Error updating last login")
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}

// UpdatePassword replaces the password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	sql, args, err := r.sb.Update("users").
		Set("password_hash", hash).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update password query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewResourceNotFoundError("user not found")
	}
	return nil
}

// UpdateEmail changes the login email and the contact email of the student profile
func (r *UserRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	email = strings.ToLower(email)
	return db.WithTx(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("users").
			Set("email", email).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update email query: %w", err)
		}
		tag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			if dberrors.IsDuplicateConstraintError(err, usersEmailConstraint) {
				return apperrors.ErrEmailAlreadyExists
			}
			return fmt.Errorf("error updating email: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return apperrors.NewResourceNotFoundError("user not found")
		}

		sql, args, err = r.sb.Update("student").
			Set("email", email).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"user_id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update student email query: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return dberrors.Translate(err, "student")
		}
		return nil
	})
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/auth"
	"github.com/unigate/admissions/internal/pkg/validation"
)

// AuthService handles sign-up, sign-in and session management
type AuthService interface {
	SignUp(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	SignIn(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error)
	SignOut(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error
	ChangeEmail(ctx context.Context, userID uuid.UUID, email string) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type authServiceImpl struct {
	userRepo   userStore
	tokenRepo  tokenStore
	roleRepo   roleStore
	jwtService *auth.JWTService
	notifier   Notifier
	logger     zerolog.Logger
	now        func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo userStore,
	tokenRepo tokenStore,
	roleRepo roleStore,
	jwtService *auth.JWTService,
	notifier Notifier,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		roleRepo:   roleRepo,
		jwtService: jwtService,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// validateEmail validates an email address
func (s *authServiceImpl) validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return apperrors.NewValidationError("Email is required")
	}
	if !validation.IsEmail(email) {
		return apperrors.NewValidationError("Invalid email format")
	}
	return nil
}

// validatePassword checks if password meets requirements
func (s *authServiceImpl) validatePassword(password string) error {
	if len(password) < auth.MinPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("Password must be at least %d characters long", auth.MinPasswordLength))
	}
	return nil
}

// SignUp creates the account and its student profile, then signs the user in
func (s *authServiceImpl) SignUp(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}
	if err := s.validatePassword(req.Password); err != nil {
		return nil, err
	}
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, apperrors.NewValidationError("First name and last name are required")
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: hash}
	student := &models.Student{FirstName: firstName, LastName: lastName, Email: email}
	if err := s.userRepo.CreateWithStudent(ctx, user, student, models.RoleStudent); err != nil {
		return nil, err
	}

	s.logger.Info().Str("userID", user.ID.String()).Msg("User signed up")
	s.notifier.Welcome(ctx, user.Email, firstName)

	return s.generateAuthResponse(ctx, user)
}

// SignIn authenticates a user
func (s *authServiceImpl) SignIn(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if err := s.validateEmail(req.Email); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, apperrors.NewValidationError("Password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("userID", user.ID.String()).Msg("Could not record last login")
	}

	return s.generateAuthResponse(ctx, user)
}

// Refresh rotates a refresh token and issues a new pair
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ErrTokenInvalid
	}

	token, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if token.Revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if token.ExpiresAt.Before(s.now()) {
		_ = s.tokenRepo.RevokeToken(ctx, refreshToken)
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}

	// A concurrent refresh with the same token loses here
	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		if errors.Is(err, apperrors.ErrTokenRevoked) {
			return nil, apperrors.ErrTokenRevoked
		}
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}

	return s.generateAuthResponse(ctx, user)
}

// SignOut revokes a refresh token
func (s *authServiceImpl) SignOut(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return apperrors.ErrTokenInvalid
	}
	return s.tokenRepo.RevokeToken(ctx, refreshToken)
}

// ChangePassword replaces the password and ends every other session
func (s *authServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	if err := s.validatePassword(req.NewPassword); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.tokenRepo.RevokeAllForUser(ctx, userID)
}

// ChangeEmail changes the login email and the student's contact email. Tokens
// carry the email, so existing sessions are revoked and a fresh pair is returned.
func (s *authServiceImpl) ChangeEmail(ctx context.Context, userID uuid.UUID, email string) (*dto.AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.validateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Email == email {
		return s.generateAuthResponse(ctx, user)
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.ErrEmailAlreadyExists
	}
	if err := s.userRepo.UpdateEmail(ctx, userID, email); err != nil {
		return nil, err
	}
	if err := s.tokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		return nil, err
	}

	user.Email = email
	s.logger.Info().Str("userID", userID.String()).Msg("Login email changed")
	return s.generateAuthResponse(ctx, user)
}

// Me returns the user with its active roles
func (s *authServiceImpl) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	roles, err := s.roleRepo.RoleNames(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return user, nil
}

// generateAuthResponse loads the roles, issues a token pair and stores the refresh token
func (s *authServiceImpl) generateAuthResponse(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	roles, err := s.roleRepo.RoleNames(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles

	pair, err := s.jwtService.IssueTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.CreateToken(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken:           pair.AccessToken,
			RefreshToken:          pair.RefreshToken,
			TokenType:             "Bearer",
			ExpiresIn:             int64(pair.AccessTTL.Seconds()),
			RefreshTokenExpiresIn: int64(pair.RefreshTTL.Seconds()),
		},
		User: dto.NewUserResponse(user),
	}, nil
}

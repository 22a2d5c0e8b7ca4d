package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unigate/admissions/internal/app/models"
	"github.com/unigate/admissions/internal/app/models/dto"
	"github.com/unigate/admissions/internal/pkg/apperrors"
	"github.com/unigate/admissions/internal/pkg/auth"
)

type authFixture struct {
	users    *fakeUsers
	tokens   *fakeTokens
	roles    *fakeRoles
	students *fakeStudents
	notifier *recordingNotifier
	jwt      *auth.JWTService
	svc      AuthService
}

func newAuthFixture() *authFixture {
	students := newFakeStudents()
	roles := newFakeRoles()
	f := &authFixture{
		users:    newFakeUsers(students, roles),
		tokens:   newFakeTokens(),
		roles:    roles,
		students: students,
		notifier: &recordingNotifier{},
	}
	f.jwt = auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "admissions-test",
	})
	f.svc = NewAuthService(f.users, f.tokens, f.roles, f.jwt, f.notifier, zerolog.Nop())
	return f
}

func (f *authFixture) signUp(t *testing.T, email, password string) *dto.AuthResponse {
	t.Helper()
	resp, err := f.svc.SignUp(context.Background(), &dto.RegisterRequest{
		Email:     email,
		Password:  password,
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	return resp
}

func TestSignUp_CreatesUserStudentAndSession(t *testing.T) {
	f := newAuthFixture()

	resp := f.signUp(t, "  Jane.Doe@Example.com ", "secret1")

	assert.Equal(t, "jane.doe@example.com", resp.User.Email)
	assert.Equal(t, []string{models.RoleStudent}, resp.User.Roles)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Contains(t, f.tokens.tokens, resp.Token.RefreshToken)

	student, err := f.students.GetByUserID(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", student.FirstName)
	assert.Equal(t, "jane.doe@example.com", student.Email)
	assert.Equal(t, []string{"jane.doe@example.com"}, f.notifier.welcomed)
}

func TestSignUp_Validation(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, &dto.RegisterRequest{Email: "not-an-email", Password: "secret1", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = f.svc.SignUp(ctx, &dto.RegisterRequest{Email: "a@b.io", Password: "12345", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.EqualError(t, err, "Password must be at least 6 characters long")

	f.signUp(t, "taken@example.com", "secret1")
	_, err = f.svc.SignUp(ctx, &dto.RegisterRequest{Email: "taken@example.com", Password: "secret1", FirstName: "A", LastName: "B"})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestSignIn(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	signedUp := f.signUp(t, "jane@example.com", "secret1")

	resp, err := f.svc.SignIn(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, resp.User.ID)
	assert.NotNil(t, f.users.byID[signedUp.User.ID].LastLoginAt)

	_, err = f.svc.SignIn(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = f.svc.SignIn(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	f.users.byID[signedUp.User.ID].IsActive = false
	_, err = f.svc.SignIn(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefresh_RotatesToken(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	first := f.signUp(t, "jane@example.com", "secret1")

	second, err := f.svc.Refresh(ctx, first.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token.RefreshToken, second.Token.RefreshToken)
	assert.True(t, f.tokens.tokens[first.Token.RefreshToken].Revoked)

	_, err = f.svc.Refresh(ctx, first.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = f.svc.Refresh(ctx, "unknown")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestRefresh_LosesConcurrentRotation(t *testing.T) {
	f := newAuthFixture()
	resp := f.signUp(t, "jane@example.com", "secret1")
	before := len(f.tokens.tokens)

	f.tokens.revokedElsewhere = true
	_, err := f.svc.Refresh(context.Background(), resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
	assert.Len(t, f.tokens.tokens, before, "no new pair is issued")
}

func TestRefresh_Expired(t *testing.T) {
	f := newAuthFixture()
	resp := f.signUp(t, "jane@example.com", "secret1")
	f.tokens.tokens[resp.Token.RefreshToken].ExpiresAt = time.Now().Add(-time.Minute)

	_, err := f.svc.Refresh(context.Background(), resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestSignOut_RevokesToken(t *testing.T) {
	f := newAuthFixture()
	resp := f.signUp(t, "jane@example.com", "secret1")

	require.NoError(t, f.svc.SignOut(context.Background(), resp.Token.RefreshToken))
	assert.True(t, f.tokens.tokens[resp.Token.RefreshToken].Revoked)

	err := f.svc.SignOut(context.Background(), resp.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestChangePassword_RevokesAllSessions(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	resp := f.signUp(t, "jane@example.com", "secret1")
	other, err := f.svc.SignIn(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, resp.User.ID, &dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "secret2"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	require.NoError(t, f.svc.ChangePassword(ctx, resp.User.ID, &dto.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}))
	assert.True(t, f.tokens.tokens[resp.Token.RefreshToken].Revoked)
	assert.True(t, f.tokens.tokens[other.Token.RefreshToken].Revoked)

	_, err = f.svc.SignIn(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "secret2"})
	assert.NoError(t, err)
}

func TestChangeEmail(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	jane := f.signUp(t, "jane@example.com", "secret1")
	f.signUp(t, "john@example.com", "secret1")

	_, err := f.svc.ChangeEmail(ctx, jane.User.ID, "john@example.com")
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)

	resp, err := f.svc.ChangeEmail(ctx, jane.User.ID, "Jane.New@Example.com")
	require.NoError(t, err)
	user, err := f.svc.Me(ctx, jane.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane.new@example.com", user.Email)
	assert.Equal(t, []string{models.RoleStudent}, user.Roles)
	assert.Equal(t, "jane.new@example.com", f.students.byUser[jane.User.ID].Email)

	claims, err := f.jwt.ParseAccessToken(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "jane.new@example.com", claims.Email, "the new session carries the new email")
	assert.Equal(t, "jane.new@example.com", resp.User.Email)

	assert.True(t, f.tokens.tokens[jane.Token.RefreshToken].Revoked, "old sessions end")
	assert.False(t, f.tokens.tokens[resp.Token.RefreshToken].Revoked)
}

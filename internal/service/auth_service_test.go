package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicecraft/internal/apperr"
	"slicecraft/internal/token"
	"slicecraft/models"
)

func newAuthService(repo *fakeUserRepo, mailer *fakeMailer) *AuthService {
	return NewAuthService(repo, token.NewManager("test-secret"), mailer, testLogger())
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	user, signed, err := svc.Register("Asha", "asha@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, signed)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsVerified)
	assert.NotEqual(t, "hunter22", user.PasswordHash, "password must never be stored in plain text")

	loggedIn, signed, err := svc.Login("asha@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, signed)

	_, _, err = svc.Login("asha@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, _, err = svc.Login("nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeMailer{})

	_, _, err := svc.Register("", "asha@example.com", "hunter22")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, _, err = svc.Register("Asha", "asha@example.com", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeMailer{})

	_, _, err := svc.Register("Asha", "asha@example.com", "hunter22")
	require.NoError(t, err)

	_, _, err = svc.Register("Other", "asha@example.com", "different")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegisterAdminRequiresAdmin(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeMailer{})

	_, err := svc.RegisterAdmin(models.RoleUser, "Boss", "boss@example.com", "hunter22")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	admin, err := svc.RegisterAdmin(models.RoleAdmin, "Boss", "boss@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, admin.Role)
}

func TestPasswordResetFlow(t *testing.T) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := newAuthService(repo, mailer)

	user, _, err := svc.Register("Asha", "asha@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword("asha@example.com", "http://localhost:5173"))
	require.Equal(t, 1, mailer.resetMailCount())

	resetURL := mailer.lastResetMail()
	assert.True(t, strings.HasPrefix(resetURL, "http://localhost:5173/reset-password/"))
	resetToken := strings.TrimPrefix(resetURL, "http://localhost:5173/reset-password/")
	require.NotEmpty(t, resetToken)

	require.NoError(t, svc.ResetPassword(resetToken, "new-password"))

	_, _, err = svc.Login("asha@example.com", "hunter22")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	loggedIn, _, err := svc.Login("asha@example.com", "new-password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	// The token is single-use.
	err = svc.ResetPassword(resetToken, "another-password")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo, &fakeMailer{})

	user, _, err := svc.Register("Asha", "asha@example.com", "hunter22")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, repo.SetResetToken(user.ID, "stale-token", expired))

	err = svc.ResetPassword("stale-token", "new-password")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc := newAuthService(newFakeUserRepo(), &fakeMailer{})

	err := svc.ForgotPassword("ghost@example.com", "http://localhost:5173")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicecraft/internal/apperr"
	"slicecraft/models"
)

func seedUser(t *testing.T, repo *fakeUserRepo, name, email string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, Role: role, IsVerified: true}
	require.NoError(t, repo.Create(user))
	return user
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testLogger())

	user := seedUser(t, repo, "Asha", "asha@example.com", models.RoleUser)

	updated, err := svc.UpdateProfile(user.ID, "Asha K", "", "/uploads/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Asha K", updated.Name)
	assert.Equal(t, "asha@example.com", updated.Email, "empty email keeps the old value")
	assert.Equal(t, "/uploads/photo.jpg", updated.ProfilePhoto)
}

func TestUpdateProfileEmailConflict(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testLogger())

	user := seedUser(t, repo, "Asha", "asha@example.com", models.RoleUser)
	seedUser(t, repo, "Ravi", "ravi@example.com", models.RoleUser)

	_, err := svc.UpdateProfile(user.ID, "", "ravi@example.com", "")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// Keeping your own email is not a conflict.
	_, err = svc.UpdateProfile(user.ID, "", "asha@example.com", "")
	assert.NoError(t, err)
}

func TestAdminUserManagement(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, testLogger())

	user := seedUser(t, repo, "Asha", "asha@example.com", models.RoleUser)

	_, err := svc.ListUsers(models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	users, err := svc.ListUsers(models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = svc.UpdateUserDetails(models.RoleAdmin, user.ID, "", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	updated, err := svc.UpdateUserDetails(models.RoleAdmin, user.ID, "Asha K", "")
	require.NoError(t, err)
	assert.Equal(t, "Asha K", updated.Name)

	_, err = svc.UpdateUserRole(models.RoleAdmin, user.ID, "superuser")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	promoted, err := svc.UpdateUserRole(models.RoleAdmin, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	err = svc.DeleteUser(models.RoleUser, user.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, svc.DeleteUser(models.RoleAdmin, user.ID))
	err = svc.DeleteUser(models.RoleAdmin, user.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

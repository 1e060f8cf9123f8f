package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicecraft/internal/apperr"
	"slicecraft/models"
)

func TestSubscribe(t *testing.T) {
	svc := NewSubscriptionService(newFakeSubscriptionRepo(), testLogger())

	sub, err := svc.Subscribe("asha@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)

	_, err = svc.Subscribe("asha@example.com")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestSubscribeRejectsBadAddresses(t *testing.T) {
	svc := NewSubscriptionService(newFakeSubscriptionRepo(), testLogger())

	for _, email := range []string{"", "not-an-email", "a b@example.com", "asha@nodot"} {
		_, err := svc.Subscribe(email)
		assert.ErrorIs(t, err, apperr.ErrValidation, "email %q", email)
	}
}

func TestSubscriptionAdminOnly(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc := NewSubscriptionService(repo, testLogger())

	sub, err := svc.Subscribe("asha@example.com")
	require.NoError(t, err)

	_, err = svc.GetAll(models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	subs, err := svc.GetAll(models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	err = svc.Delete(models.RoleUser, sub.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, svc.Delete(models.RoleAdmin, sub.ID))
}

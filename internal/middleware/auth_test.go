package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicecraft/internal/apperr"
	"slicecraft/internal/repositories"
	"slicecraft/internal/token"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

// fakeUsers stubs only the lookup the middleware performs.
type fakeUsers struct {
	repositories.UserRepositoryInterface
	users map[string]*models.User
}

func (f *fakeUsers) GetByID(id string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user with id %s not found", id)
	}
	return u, nil
}

func authFixture(t *testing.T) (*Auth, *token.Manager, *fakeUsers) {
	t.Helper()
	tokens := token.NewManager("test-secret")
	users := &fakeUsers{users: map[string]*models.User{
		"user-1":  {ID: "user-1", Role: models.RoleUser},
		"admin-1": {ID: "admin-1", Role: models.RoleAdmin},
	}}
	log := logger.New(logger.Config{Level: logger.LevelError, Format: "text", Output: "stdout"})
	return NewAuth(tokens, users, log), tokens, users
}

func echoIdentity(t *testing.T) (http.Handler, *string, *models.Role) {
	t.Helper()
	var gotID string
	var gotRole models.Role
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &gotID, &gotRole
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	auth, _, _ := authFixture(t)
	next, _, _ := echoIdentity(t)

	rec := httptest.NewRecorder()
	auth.RequireAuth(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/orders/cart", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	auth, _, _ := authFixture(t)
	next, _, _ := echoIdentity(t)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	rec := httptest.NewRecorder()
	auth.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsDeletedAccount(t *testing.T) {
	auth, tokens, users := authFixture(t)
	next, _, _ := echoIdentity(t)

	signed, err := tokens.Generate("user-1", models.RoleUser)
	require.NoError(t, err)
	delete(users.users, "user-1")

	req := httptest.NewRequest(http.MethodGet, "/api/orders/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	rec := httptest.NewRecorder()
	auth.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthSetsIdentity(t *testing.T) {
	auth, tokens, _ := authFixture(t)
	next, gotID, gotRole := echoIdentity(t)

	signed, err := tokens.Generate("user-1", models.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signed)

	rec := httptest.NewRecorder()
	auth.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", *gotID)
	assert.Equal(t, models.RoleUser, *gotRole)
}

func TestRequireAuthAcceptsLegacyHeader(t *testing.T) {
	auth, tokens, _ := authFixture(t)
	next, gotID, _ := echoIdentity(t)

	signed, err := tokens.Generate("user-1", models.RoleUser)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/cart", nil)
	req.Header.Set("x-auth-token", signed)

	rec := httptest.NewRecorder()
	auth.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", *gotID)
}

func TestRequireAdmin(t *testing.T) {
	auth, tokens, _ := authFixture(t)
	next, _, _ := echoIdentity(t)
	chain := auth.RequireAuth(auth.RequireAdmin(next))

	signed, err := tokens.Generate("user-1", models.RoleUser)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	signed, err = tokens.Generate("admin-1", models.RoleAdmin)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	chain.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
)

func protected(v Verifier, roles ...models.Role) http.Handler {
	log := logger.Nop()
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, _ := ActorFrom(r)
		w.Header().Set("X-Actor", actor.ID)
		w.WriteHeader(http.StatusOK)
	})
	return Middleware(v, log)(RequireRole(log, roles...)(final))
}

func TestMiddlewareAcceptsSignedToken(t *testing.T) {
	v := NewHMACVerifier("secret")
	token, err := v.Sign(models.Actor{ID: "cust-1", Role: models.RoleCustomer}, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protected(v, models.RoleCustomer).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cust-1", rec.Header().Get("X-Actor"))
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	protected(NewHMACVerifier("secret"), models.RoleCustomer).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddlewareRejectsWrongSecret(t *testing.T) {
	token, err := NewHMACVerifier("other").Sign(models.Actor{ID: "cust-1", Role: models.RoleCustomer}, jwt.RegisteredClaims{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protected(NewHMACVerifier("secret"), models.RoleCustomer).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	v := NewHMACVerifier("secret")
	token, err := v.Sign(models.Actor{ID: "cust-1", Role: models.RoleCustomer}, jwt.RegisteredClaims{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/transactions/accept/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protected(v, models.RoleOrganizer, models.RoleAdmin).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClaimsFallBackToID(t *testing.T) {
	actor, err := Claims{ID: "u-9", Role: models.RoleAdmin}.actor()
	require.NoError(t, err)
	assert.Equal(t, "u-9", actor.ID)

	_, err = Claims{Sub: "u-1", Role: "GUEST"}.actor()
	assert.Error(t, err)
}

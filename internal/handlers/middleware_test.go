package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studyhub/studyhub-gobackend/internal/models"
	"github.com/studyhub/studyhub-gobackend/internal/services"
)

func newMiddleware(t *testing.T) (*AuthMiddleware, *services.TokenManager) {
	t.Helper()
	tokens, err := services.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return NewAuthMiddleware(tokens), tokens
}

func echoIdentity(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		role, _ := RoleFromContext(r.Context())
		w.Write([]byte(userID + ":" + role))
	})
}

func TestAuthenticate(t *testing.T) {
	mw, tokens := newMiddleware(t)
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleStudent}
	signed, err := tokens.Issue(user)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	mw.Authenticate(echoIdentity(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID.Hex()+":student", rec.Body.String())
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	mw, _ := newMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec := httptest.NewRecorder()
	mw.Authenticate(echoIdentity(t)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsGarbageToken(t *testing.T) {
	mw, _ := newMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	mw.Authenticate(echoIdentity(t)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	mw, tokens := newMiddleware(t)
	student, err := tokens.Issue(&models.User{ID: primitive.NewObjectID(), Role: models.RoleStudent})
	require.NoError(t, err)
	admin, err := tokens.Issue(&models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin})
	require.NoError(t, err)

	handler := mw.Authenticate(mw.RequireRole(models.RoleAdmin)(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	req := httptest.NewRequest(http.MethodGet, "/api/payments", nil)
	req.Header.Set("Authorization", "Bearer "+student)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/payments", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

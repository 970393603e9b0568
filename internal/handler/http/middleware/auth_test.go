package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradelaunch/apprentice-backend-go/internal/pkg/jwt"
)

func protectedEndpoint(ja *jwtauth.JWTAuth) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return jwtauth.Verifier(ja)(AuthRequired(ja)(next))
}

func mintToken(t *testing.T, ja *jwtauth.JWTAuth, claims map[string]interface{}) string {
	t.Helper()

	_, tokenString, err := ja.Encode(claims)
	require.NoError(t, err)
	return tokenString
}

func TestAuthRequired_AcceptsAccessToken(t *testing.T) {
	ja := jwt.NewJWTService("test-secret").JWTAuth()
	token := mintToken(t, ja, map[string]interface{}{
		"user_id": "user-1",
		"type":    "access",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protectedEndpoint(ja).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired_RejectsMissingToken(t *testing.T) {
	ja := jwt.NewJWTService("test-secret").JWTAuth()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	protectedEndpoint(ja).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired_RejectsWrongTokenType(t *testing.T) {
	ja := jwt.NewJWTService("test-secret").JWTAuth()
	token := mintToken(t, ja, map[string]interface{}{
		"user_id": "user-1",
		"type":    "refresh",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protectedEndpoint(ja).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired_RejectsForeignSignature(t *testing.T) {
	ja := jwt.NewJWTService("test-secret").JWTAuth()
	foreign := jwt.NewJWTService("other-secret").JWTAuth()
	token := mintToken(t, foreign, map[string]interface{}{
		"user_id": "user-1",
		"type":    "access",
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	protectedEndpoint(ja).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

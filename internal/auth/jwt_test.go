package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fcaqualink/aqualink-monitor/internal/config"
)

func newManager(secret string) *JWTManager {
	return NewJWTManager(&config.JWTConfig{
		SecretKey:         secret,
		ExpirationMinutes: 30,
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newManager("test-secret")

	token, err := m.GenerateToken("admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "aqualink-monitor", claims.Issuer)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	token, err := newManager("secret-a").GenerateToken("admin")
	require.NoError(t, err)

	_, err = newManager("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := newManager("test-secret").ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestAuthenticateMiddleware(t *testing.T) {
	m := newManager("test-secret")
	mw := NewAuthMiddleware(m, zap.NewNop())

	var user *User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := mw.Authenticate(next)

	// No token: rejected.
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/sensores/actual", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Malformed header: rejected.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sensores/actual", nil)
	req.Header.Set("Authorization", "Token abc")
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token: passes and carries the user.
	token, err := m.GenerateToken("admin")
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/sensores/actual", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, user)
	assert.Equal(t, "admin", user.Username)
}

func TestAuthenticateSkipsPublicPaths(t *testing.T) {
	mw := NewAuthMiddleware(newManager("test-secret"), zap.NewNop())
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := mw.Authenticate(next)

	for _, path := range []string{"/health", "/metrics", "/auth/login"} {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

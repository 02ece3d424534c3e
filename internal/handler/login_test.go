package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fcaqualink/aqualink-monitor/internal/auth"
	"github.com/fcaqualink/aqualink-monitor/internal/config"
)

func newLoginHandler() *LoginHandler {
	jwtManager := auth.NewJWTManager(&config.JWTConfig{
		SecretKey:         "test-secret",
		ExpirationMinutes: 30,
	})
	cfg := config.AuthConfig{Username: "admin", Password: "hunter2"}
	return NewLoginHandler(cfg, jwtManager, zap.NewNop())
}

func postLogin(h *LoginHandler, body string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLoginIssuesToken(t *testing.T) {
	h := newLoginHandler()

	rec := postLogin(h, `{"username":"admin","password":"hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["token"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := newLoginHandler()

	for _, body := range []string{
		`{"username":"admin","password":"wrong"}`,
		`{"username":"intruder","password":"hunter2"}`,
		`{}`,
	} {
		rec := postLogin(h, body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, body)
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	h := newLoginHandler()

	rec := postLogin(h, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fcaqualink/aqualink-monitor/internal/auth"
	"github.com/fcaqualink/aqualink-monitor/internal/config"
)

// LoginHandler issues dashboard session tokens
type LoginHandler struct {
	cfg        config.AuthConfig
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(cfg config.AuthConfig, jwtManager *auth.JWTManager, logger *zap.Logger) *LoginHandler {
	return &LoginHandler{
		cfg:        cfg,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// RegisterRoutes registers the auth routes
func (h *LoginHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/login", h.Login).Methods("POST")

	h.logger.Info("Auth routes registered")
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login validates the dashboard credentials and returns a JWT
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.Password)) == 1
	if !userOK || !passOK {
		h.logger.Warn("Failed login attempt", zap.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.jwtManager.GenerateToken(req.Username)
	if err != nil {
		h.logger.Error("Failed to sign token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"token":  token,
	})
}

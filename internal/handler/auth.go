package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mathachew7/JoslaSync/internal/security/middleware"
	"github.com/mathachew7/JoslaSync/internal/service"
	"github.com/mathachew7/JoslaSync/pkg/config"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse contains the issued token pair. The refresh token also
// travels in an HTTP-only cookie for browser clients.
type LoginResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	TokenType    string           `json:"token_type"`
	User         service.UserInfo `json:"user"`
}

// LoginHandler handles user authentication
type LoginHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
	config      *config.Config
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(authService *service.AuthService, logger *slog.Logger, cfg *config.Config) *LoginHandler {
	return &LoginHandler{authService: authService, logger: logger, config: cfg}
}

// ServeHTTP handles POST /api/auth/login requests
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode login request", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "username and password required"})
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}

	setRefreshCookie(w, h.config, result.RefreshToken)
	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "bearer",
		User:         result.User,
	})
}

// RefreshHandler rotates a token pair from the refresh cookie.
type RefreshHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
	config      *config.Config
}

// NewRefreshHandler creates a new refresh handler
func NewRefreshHandler(authService *service.AuthService, logger *slog.Logger, cfg *config.Config) *RefreshHandler {
	return &RefreshHandler{authService: authService, logger: logger, config: cfg}
}

// ServeHTTP handles POST /api/auth/refresh requests
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.config.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing refresh token"})
		return
	}

	result, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}

	setRefreshCookie(w, h.config, result.RefreshToken)
	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		TokenType:    "bearer",
		User:         result.User,
	})
}

// RegisterUserRequest represents a new account in the master directory.
type RegisterUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	CompanyID *int64 `json:"company_id,omitempty"`
}

// RegisterUserHandler creates additional user accounts.
type RegisterUserHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
	config      *config.Config
}

// NewRegisterUserHandler creates a new user registration handler
func NewRegisterUserHandler(authService *service.AuthService, logger *slog.Logger, cfg *config.Config) *RegisterUserHandler {
	return &RegisterUserHandler{authService: authService, logger: logger, config: cfg}
}

// ServeHTTP handles POST /api/auth/register requests
func (h *RegisterUserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	user, err := h.authService.RegisterUser(r.Context(), req.Username, req.Email, req.Password, req.CompanyID)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// MeHandler returns the user behind the presented access token.
type MeHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
	config      *config.Config
}

// NewMeHandler creates a new current-user handler
func NewMeHandler(authService *service.AuthService, logger *slog.Logger, cfg *config.Config) *MeHandler {
	return &MeHandler{authService: authService, logger: logger, config: cfg}
}

// ServeHTTP handles GET /api/auth/me requests
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	user, err := h.authService.Me(r.Context(), claims)
	if err != nil {
		writeError(w, h.logger, err, h.config.IsDevelopment())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func setRefreshCookie(w http.ResponseWriter, cfg *config.Config, token string) {
	sameSite := http.SameSiteLaxMode
	switch strings.ToLower(cfg.CookieSameSite) {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.RefreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cfg.RefreshTokenExpiry.Seconds()),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: sameSite,
	})
}

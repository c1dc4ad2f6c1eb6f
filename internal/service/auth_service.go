package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mathachew7/JoslaSync/internal/domain"
	"github.com/mathachew7/JoslaSync/internal/observability/metrics"
	"github.com/mathachew7/JoslaSync/internal/security/auth"
)

// UserInfo is the API-safe view of an account, with the password digest
// stripped.
type UserInfo struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResult is the outcome of a successful login or refresh. The refresh
// token is handed back separately so the HTTP layer can place it in a cookie.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         UserInfo
}

// AuthService authenticates users against the master directory and issues
// tenant-scoped tokens. The configured master operator bypasses the
// directory entirely.
type AuthService struct {
	users     domain.UserRepository
	directory domain.CompanyDirectory
	tokens    *auth.TokenManager
	master    auth.MasterIdentity
	logger    *slog.Logger
}

// NewAuthService creates the authentication service
func NewAuthService(
	users domain.UserRepository,
	directory domain.CompanyDirectory,
	tokens *auth.TokenManager,
	master auth.MasterIdentity,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:     users,
		directory: directory,
		tokens:    tokens,
		master:    master,
		logger:    logger,
	}
}

// Login verifies credentials and issues an access/refresh token pair whose
// claims carry the tenant database the user belongs to.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	// Master operator short-circuit: constant-time credential check,
	// no directory lookup, fixed master tenant.
	if s.master.IsMasterCredentials(username, password) {
		s.logger.Info("master login", slog.String("username", username))
		result, err := s.issue(s.master.Claims(), s.masterUserInfo())
		if err != nil {
			metrics.ObserveLogin("failure")
			return nil, err
		}
		metrics.ObserveLogin("master")
		return result, nil
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		s.logger.Warn("login attempt for unknown user", slog.String("username", username))
		metrics.ObserveLogin("failure")
		return nil, domain.ErrInvalidCredentials
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.logger.Warn("login attempt with bad password", slog.String("username", username))
		metrics.ObserveLogin("failure")
		return nil, domain.ErrInvalidCredentials
	}

	claims, err := s.claimsFor(ctx, user)
	if err != nil {
		metrics.ObserveLogin("failure")
		return nil, err
	}

	result, err := s.issue(claims, userInfo(user))
	if err != nil {
		metrics.ObserveLogin("failure")
		return nil, err
	}

	s.logger.Info("tokens issued",
		slog.String("username", username),
		slog.String("db_name", claims.DBName),
	)
	metrics.ObserveLogin("success")
	return result, nil
}

// Refresh verifies a refresh token and reissues a token pair preserving the
// tenant context. Tenant users are re-resolved against the directory so a
// deactivated user or company stops refreshing.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.tokens.DecodeRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.Username == "" || claims.DBName == "" {
		return nil, domain.ErrInvalidTokenPayload
	}

	// Master refresh reuses the decoded claims as-is.
	if s.master.IsMasterUsername(claims.Subject) {
		s.logger.Info("master token refresh")
		return s.issue(s.master.Claims(), s.masterUserInfo())
	}

	user, err := s.users.GetByUsername(ctx, claims.Username)
	if err != nil {
		return nil, err
	}
	fresh, err := s.claimsFor(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("token refreshed", slog.String("username", user.Username))
	return s.issue(fresh, userInfo(user))
}

// RegisterUser creates an additional account in the master directory.
func (s *AuthService) RegisterUser(ctx context.Context, username, email, password string, companyID *int64) (*UserInfo, error) {
	if username == "" || password == "" {
		return nil, &domain.ValidationError{Field: "username", Reason: "username and password are required"}
	}
	if err := validateEmail(email); err != nil {
		return nil, &domain.ValidationError{Field: "email", Reason: "invalid email format"}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         "user",
		IsActive:     true,
		CompanyID:    companyID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", slog.String("username", username))
	info := userInfo(user)
	return &info, nil
}

// Me resolves the user behind a verified claim set.
func (s *AuthService) Me(ctx context.Context, claims *auth.Claims) (*UserInfo, error) {
	if claims == nil || claims.Subject == "" {
		return nil, domain.ErrInvalidTokenPayload
	}
	if s.master.IsMasterUsername(claims.Subject) {
		info := s.masterUserInfo()
		return &info, nil
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, domain.ErrInvalidTokenPayload
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := userInfo(user)
	return &info, nil
}

// claimsFor builds the canonical tenant claim set for a directory user.
func (s *AuthService) claimsFor(ctx context.Context, user *domain.User) (auth.Claims, error) {
	if user.CompanyID == nil {
		s.logger.Error("user not linked to a company", slog.String("username", user.Username))
		return auth.Claims{}, domain.ErrUserNotLinked
	}
	company, err := s.directory.GetByID(ctx, *user.CompanyID)
	if err != nil {
		return auth.Claims{}, err
	}

	slug := strings.ReplaceAll(strings.ToLower(company.CompanyName), " ", "_")
	return auth.BuildClaims(
		strconv.FormatInt(user.ID, 10),
		user.Username,
		user.Role,
		strconv.FormatInt(*user.CompanyID, 10),
		slug,
		company.DBName,
		user.Email,
	), nil
}

func (s *AuthService) issue(claims auth.Claims, user UserInfo) (*LoginResult, error) {
	access, err := s.tokens.IssueAccessToken(claims)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(claims)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func (s *AuthService) masterUserInfo() UserInfo {
	return UserInfo{
		ID:        0,
		Username:  "master",
		Email:     s.master.Email,
		Role:      "master",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}

func userInfo(u *domain.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

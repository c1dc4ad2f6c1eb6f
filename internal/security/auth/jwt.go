package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mathachew7/JoslaSync/internal/domain"
)

// Claims is the canonical claim set carried by both access and refresh
// tokens: identity fields plus the tenant-routing fields the request
// resolver uses to select a tenant database. Empty optional fields are
// omitted from the signed token.
type Claims struct {
	Username    string `json:"username"`
	Role        string `json:"role,omitempty"`
	Email       string `json:"email,omitempty"`
	CompanyID   string `json:"company_id,omitempty"`
	CompanySlug string `json:"company_slug,omitempty"`
	DBName      string `json:"db_name,omitempty"`
	jwt.RegisteredClaims
}

// BuildClaims merges required identity fields with optional tenant-routing
// fields and stamps issued-at. Pass empty strings for absent fields; they are
// dropped from the token via omitempty.
func BuildClaims(userID, username, role, companyID, companySlug, dbName, email string) Claims {
	return Claims{
		Username:    username,
		Role:        role,
		Email:       email,
		CompanyID:   companyID,
		CompanySlug: companySlug,
		DBName:      dbName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
}

// TokenManager signs and verifies access and refresh tokens. The two classes
// use distinct secrets so compromise of one cannot forge the other.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager creates a token manager with both signing secrets.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssueAccessToken signs claims with the access secret and a short expiry.
func (tm *TokenManager) IssueAccessToken(claims Claims) (string, error) {
	return tm.sign(claims, tm.accessSecret, tm.accessTTL)
}

// IssueRefreshToken signs the same claim shape with the refresh secret and a
// long expiry, so a refresh can reissue tokens with the same tenant context.
func (tm *TokenManager) IssueRefreshToken(claims Claims) (string, error) {
	return tm.sign(claims, tm.refreshSecret, tm.refreshTTL)
}

func (tm *TokenManager) sign(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// DecodeAccess verifies an access token and returns its claims.
func (tm *TokenManager) DecodeAccess(tokenString string) (*Claims, error) {
	return decode(tokenString, tm.accessSecret)
}

// DecodeRefresh verifies a refresh token and returns its claims.
func (tm *TokenManager) DecodeRefresh(tokenString string) (*Claims, error) {
	return decode(tokenString, tm.refreshSecret)
}

// decode maps every parse failure onto the two-error taxonomy: expired or
// invalid. Callers must not distinguish further.
func decode(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

// ExtractToken pulls the bearer token out of an Authorization header value.
func ExtractToken(authHeader string) (string, error) {
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", domain.ErrMissingAuth
	}
	return parts[1], nil
}

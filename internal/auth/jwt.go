package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "coperto"

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrInvalidToken is returned when a JWT cannot be parsed or has expired.
var ErrInvalidToken = errors.New("auth: invalid or expired token")

// Claims is the payload of both token kinds. TokenType tells them apart so a
// long-lived refresh token can never be presented as an access token.
type Claims struct {
	jwt.RegisteredClaims
	TenantID  string `json:"tid"`
	UserID    string `json:"uid"`
	Role      string `json:"role"`
	TokenType string `json:"typ"`
}

// Principal is the authenticated staff member behind an access token.
type Principal struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     string
}

func IssueAccessToken(secret string, tenantID, userID uuid.UUID, role string, ttl time.Duration) (string, error) {
	return sign(secret, Principal{TenantID: tenantID, UserID: userID, Role: role}, tokenTypeAccess, ttl)
}

func IssueRefreshToken(secret string, tenantID, userID uuid.UUID, role string, ttl time.Duration) (string, error) {
	return sign(secret, Principal{TenantID: tenantID, UserID: userID, Role: role}, tokenTypeRefresh, ttl)
}

func sign(secret string, p Principal, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TenantID:  p.TenantID.String(),
		UserID:    p.UserID.String(),
		Role:      p.Role,
		TokenType: typ,
	}).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("auth.sign: %w", err)
	}
	return signed, nil
}

// ValidateToken checks signature, algorithm, issuer and expiry. Every
// failure is reported as ErrInvalidToken.
func ValidateToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("auth.ValidateToken: %w", ErrInvalidToken)
	}
	return claims, nil
}

// ParseAccessToken validates an access token and extracts its principal.
func ParseAccessToken(secret, tokenString string) (*Principal, error) {
	p, err := parseTyped(secret, tokenString, tokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("auth.ParseAccessToken: %w", err)
	}
	return p, nil
}

func parseTyped(secret, tokenString, typ string) (*Principal, error) {
	claims, err := ValidateToken(secret, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != typ {
		return nil, fmt.Errorf("want %s token, got %q: %w", typ, claims.TokenType, ErrInvalidToken)
	}
	return claims.principal()
}

func (c *Claims) principal() (*Principal, error) {
	tenantID, err := uuid.Parse(c.TenantID)
	if err != nil {
		return nil, fmt.Errorf("tenant id: %w", ErrInvalidToken)
	}
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, fmt.Errorf("user id: %w", ErrInvalidToken)
	}
	return &Principal{TenantID: tenantID, UserID: userID, Role: c.Role}, nil
}

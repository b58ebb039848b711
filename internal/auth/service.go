package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/coperto/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrInvalidRole        = errors.New("auth: invalid role")
)

// Service manages staff accounts of a restaurant and issues their tokens.
type Service struct {
	users      domain.UserRepository
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(users domain.UserRepository, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{users: users, secret: jwtSecret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// CreateUser adds a staff account with an explicit role. There is no
// self-service signup: the tenant bootstrap creates the first admin and
// admins add the rest of their staff.
func (s *Service) CreateUser(ctx context.Context, tenantID uuid.UUID, email, password, name, role string) (*domain.User, error) {
	if !validRole(role) {
		return nil, fmt.Errorf("auth.CreateUser: %q: %w", role, ErrInvalidRole)
	}
	email = normalizeEmail(email)

	if _, err := s.users.GetByEmail(ctx, tenantID, email); err == nil {
		return nil, fmt.Errorf("auth.CreateUser: %w", ErrUserAlreadyExists)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth.CreateUser: %w", err)
	}

	now := time.Now()
	u := &domain.User{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index still decides when two creations race.
	switch err := s.users.Create(ctx, u); {
	case errors.Is(err, domain.ErrConflict):
		return nil, fmt.Errorf("auth.CreateUser: %w", ErrUserAlreadyExists)
	case err != nil:
		return nil, fmt.Errorf("auth.CreateUser: %w", err)
	}
	return u, nil
}

// Login checks the password and returns an access and a refresh token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, tenantID uuid.UUID, email, password string) (accessToken, refreshToken string, err error) {
	u, err := s.users.GetByEmail(ctx, tenantID, normalizeEmail(email))
	if err != nil || !verifyPassword(password, u.PasswordHash) {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	p := Principal{TenantID: u.TenantID, UserID: u.ID, Role: u.Role}
	if accessToken, err = sign(s.secret, p, tokenTypeAccess, s.accessTTL); err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}
	if refreshToken, err = sign(s.secret, p, tokenTypeRefresh, s.refreshTTL); err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}
	return accessToken, refreshToken, nil
}

// RefreshToken trades a refresh token for a new access token. The user is
// reloaded so a role change or removal takes effect.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	p, err := parseTyped(s.secret, refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	u, err := s.users.GetByID(ctx, p.TenantID, p.UserID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrUserNotFound)
	}

	access, err := sign(s.secret, Principal{TenantID: u.TenantID, UserID: u.ID, Role: u.Role}, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}
	return access, nil
}

func (s *Service) GetUser(ctx context.Context, tenantID, userID uuid.UUID) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("auth.GetUser: %w", err)
	}
	return u, nil
}

func validRole(role string) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleMember, domain.RoleViewer:
		return true
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Package service issues access tokens for the API.
package service

import (
	"context"
	"errors"
	"time"

	"salesops_backend/internal/auth/repository"
	"salesops_backend/platform/apperr"
	"salesops_backend/platform/config"
	"salesops_backend/platform/db"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type accessClaims struct {
	Type  string   `json:"type"`
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

type Service struct {
	repo *repository.Repository
	pool db.DBTX
	cfg  config.AuthServiceConfig
}

func New(repo *repository.Repository, pool db.DBTX, cfg config.AuthServiceConfig) *Service {
	return &Service{repo: repo, pool: pool, cfg: cfg}
}

// LoginResult carries the issued token and the user it belongs to.
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        repository.User
}

// Login verifies the credentials and issues an HS256 access token. A wrong
// password and an unknown email both come back as the same unauthorized
// error, so the response does not leak which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	invalid := apperr.Unauthorized("invalid credentials")

	user, err := s.repo.GetByEmail(ctx, s.pool, email)
	if err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			return LoginResult{}, invalid
		}
		return LoginResult{}, err
	}
	if !user.IsActive {
		return LoginResult{}, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return LoginResult{}, invalid
		}
		return LoginResult{}, err
	}

	expiresAt := time.Now().Add(s.cfg.GetAccessTokenTTL())
	claims := accessClaims{
		Type:  "access",
		Name:  user.Name,
		Roles: []string{user.Role},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.KindInternal, "sign access token", err)
	}

	return LoginResult{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

// Me returns the account behind an authenticated request.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (repository.User, error) {
	return s.repo.GetByID(ctx, s.pool, userID)
}

// ListAgents returns active users for assignment pickers.
func (s *Service) ListAgents(ctx context.Context) ([]repository.User, error) {
	return s.repo.ListAgents(ctx, s.pool)
}

// Package service implements manager authentication: credential checks and
// access token issuance. The claims minted here feed the tenancy context on
// every authenticated request.
package service

import (
	"context"
	"strings"
	"time"

	"leasing_portal_backend/internal/auth/password"
	"leasing_portal_backend/internal/config"
	"leasing_portal_backend/internal/managers/repository"
	"leasing_portal_backend/platform/apperr"
	"leasing_portal_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

// CredentialStore loads a manager with its password hash by email.
type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (repository.Manager, string, error)
}

// LoginResult carries the issued token and the authenticated manager.
type LoginResult struct {
	AccessToken string
	ExpiresIn   int64
	Manager     repository.Manager
}

type Service struct {
	store CredentialStore
	cfg   *config.Config
	log   *logger.Logger
}

func New(store CredentialStore, cfg *config.Config, log *logger.Logger) *Service {
	return &Service{store: store, cfg: cfg, log: log}
}

// Login verifies the credentials and issues a signed access token. Lookup
// failures and bad passwords both surface as the same Unauthorized error.
func (s *Service) Login(ctx context.Context, email, plaintext string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	manager, hash, err := s.store.GetByEmail(ctx, email)
	if err != nil || hash == "" || !password.Verify(hash, plaintext) {
		s.log.AuthEvent("login", email, false, "invalid credentials")
		return LoginResult{}, apperr.Unauthorized("invalid email or password")
	}

	token, err := s.signAccessToken(manager)
	if err != nil {
		return LoginResult{}, apperr.Wrap(apperr.KindInternal, "could not issue token", err)
	}

	s.log.AuthEvent("login", email, true, "")
	return LoginResult{
		AccessToken: token,
		ExpiresIn:   int64(s.cfg.AccessTokenTTL.Seconds()),
		Manager:     manager,
	}, nil
}

func (s *Service) signAccessToken(manager repository.Manager) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":          manager.ID.String(),
		"type":         accessTokenType,
		"access_level": manager.AccessLevel,
		"exp":          now.Add(s.cfg.AccessTokenTTL).Unix(),
		"iat":          now.Unix(),
	}
	if manager.CompanyID != nil && *manager.CompanyID != uuid.Nil {
		claims["company_id"] = manager.CompanyID.String()
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.JWTAccessSecret))
}

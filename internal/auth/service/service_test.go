package service

import (
	"context"
	"testing"
	"time"

	"leasing_portal_backend/internal/auth/password"
	"leasing_portal_backend/internal/config"
	"leasing_portal_backend/internal/managers/repository"
	"leasing_portal_backend/internal/tenancy"
	"leasing_portal_backend/platform/apperr"
	"leasing_portal_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret-0123456789"

type fakeCredentialStore struct {
	manager repository.Manager
	hash    string
	err     error
}

func (f *fakeCredentialStore) GetByEmail(_ context.Context, _ string) (repository.Manager, string, error) {
	return f.manager, f.hash, f.err
}

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret: testSecret,
		AccessTokenTTL:  15 * time.Minute,
	}
}

func testManager(t *testing.T, plaintext string) (repository.Manager, string) {
	t.Helper()

	hash, err := password.Hash(plaintext)
	if err != nil {
		t.Fatalf("password.Hash: %v", err)
	}

	companyID := uuid.New()
	return repository.Manager{
		ID:          uuid.New(),
		CompanyID:   &companyID,
		Email:       "dana@example.com",
		AccessLevel: tenancy.AccessAdmin,
	}, hash
}

func TestLoginIssuesTokenWithIdentityClaims(t *testing.T) {
	manager, hash := testManager(t, "correct horse battery")
	svc := New(&fakeCredentialStore{manager: manager, hash: hash}, testConfig(), logger.New("development"))

	result, err := svc.Login(context.Background(), "Dana@Example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	parsed, err := jwt.Parse(result.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("issued token does not parse: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != manager.ID.String() {
		t.Errorf("sub = %v, want %s", claims["sub"], manager.ID)
	}
	if claims["company_id"] != manager.CompanyID.String() {
		t.Errorf("company_id = %v, want %s", claims["company_id"], manager.CompanyID)
	}
	if claims["access_level"] != tenancy.AccessAdmin {
		t.Errorf("access_level = %v, want admin", claims["access_level"])
	}
	if claims["type"] != "access" {
		t.Errorf("type = %v, want access", claims["type"])
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	manager, hash := testManager(t, "correct horse battery")
	svc := New(&fakeCredentialStore{manager: manager, hash: hash}, testConfig(), logger.New("development"))

	_, err := svc.Login(context.Background(), "dana@example.com", "wrong password")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsManagerWithoutPassword(t *testing.T) {
	manager, _ := testManager(t, "unused")
	svc := New(&fakeCredentialStore{manager: manager, hash: ""}, testConfig(), logger.New("development"))

	_, err := svc.Login(context.Background(), "dana@example.com", "anything")
	if !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginOmitsCompanyClaimForOrphanedManager(t *testing.T) {
	manager, hash := testManager(t, "correct horse battery")
	manager.CompanyID = nil
	svc := New(&fakeCredentialStore{manager: manager, hash: hash}, testConfig(), logger.New("development"))

	result, err := svc.Login(context.Background(), "dana@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	parsed, _ := jwt.Parse(result.AccessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	claims := parsed.Claims.(jwt.MapClaims)
	if _, present := claims["company_id"]; present {
		t.Error("company_id claim should be absent for orphaned managers")
	}
}

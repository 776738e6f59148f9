package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type testJWTConfig struct {
	secret string
}

func (c testJWTConfig) GetJWTAccessSecret() string { return c.secret }

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

type capturedIdentity struct {
	managerID  any
	companyID  any
	companySet bool
	level      any
}

func authRequest(t *testing.T, cfg JWTConfig, authHeader string) (*httptest.ResponseRecorder, capturedIdentity) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	var captured capturedIdentity

	engine := gin.New()
	engine.GET("/probe", AuthRequired(cfg), func(c *gin.Context) {
		captured.managerID, _ = c.Get(ContextManagerIDKey)
		captured.companyID, captured.companySet = c.Get(ContextCompanyIDKey)
		captured.level, _ = c.Get(ContextAccessLevelKey)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	engine.ServeHTTP(rec, req)

	return rec, captured
}

func TestAuthRequiredLoadsIdentity(t *testing.T) {
	cfg := testJWTConfig{secret: "test-secret"}
	managerID := uuid.New()
	companyID := uuid.New()

	signed := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":          managerID.String(),
		"type":         "access",
		"access_level": "admin",
		"company_id":   companyID.String(),
		"exp":          time.Now().Add(time.Hour).Unix(),
	})

	rec, captured := authRequest(t, cfg, "Bearer "+signed)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if captured.managerID != managerID {
		t.Fatalf("expected manager %s in context, got %v", managerID, captured.managerID)
	}
	if captured.companyID != companyID {
		t.Fatalf("expected company %s in context, got %v", companyID, captured.companyID)
	}
	if captured.level != "admin" {
		t.Fatalf("expected access level admin, got %v", captured.level)
	}
}

func TestAuthRequiredOmitsCompanyForOrphanedManager(t *testing.T) {
	cfg := testJWTConfig{secret: "test-secret"}

	signed := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":          uuid.New().String(),
		"type":         "access",
		"access_level": "read",
		"exp":          time.Now().Add(time.Hour).Unix(),
	})

	rec, captured := authRequest(t, cfg, "Bearer "+signed)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.companySet {
		t.Fatal("company ID must not be set without a company_id claim")
	}
}

func TestAuthRequiredRejectsMissingHeader(t *testing.T) {
	rec, _ := authRequest(t, testJWTConfig{secret: "test-secret"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRequiredRejectsWrongSecret(t *testing.T) {
	signed := signToken(t, "other-secret", jwt.MapClaims{
		"sub":  uuid.New().String(),
		"type": "access",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec, _ := authRequest(t, testJWTConfig{secret: "test-secret"}, "Bearer "+signed)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRequiredRejectsNonAccessToken(t *testing.T) {
	cfg := testJWTConfig{secret: "test-secret"}
	signed := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"type": "refresh",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	rec, _ := authRequest(t, cfg, "Bearer "+signed)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRequiredRejectsExpiredToken(t *testing.T) {
	cfg := testJWTConfig{secret: "test-secret"}
	signed := signToken(t, cfg.secret, jwt.MapClaims{
		"sub":  uuid.New().String(),
		"type": "access",
		"exp":  time.Now().Add(-time.Minute).Unix(),
	})

	rec, _ := authRequest(t, cfg, "Bearer "+signed)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	if _, ok := extractBearerToken("Token abc"); ok {
		t.Fatal("non-bearer scheme must be rejected")
	}
	if _, ok := extractBearerToken("Bearer "); ok {
		t.Fatal("empty bearer token must be rejected")
	}
	token, ok := extractBearerToken("Bearer abc.def.ghi")
	if !ok || token != "abc.def.ghi" {
		t.Fatalf("expected token extracted, got %q ok=%v", token, ok)
	}
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

var secret = []byte("dev-secret")

func TestNewDevToken_RoundTrip(t *testing.T) {
	token, err := NewDevToken(secret, "doctor", time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	role, err := ParseRole(secret, token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if role != "doctor" {
		t.Errorf("role = %q, want doctor", role)
	}
}

func TestParseRole_WrongSecret(t *testing.T) {
	token, err := NewDevToken(secret, "doctor", time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseRole([]byte("other-secret"), token); err == nil {
		t.Error("token verified with wrong secret")
	}
}

func TestParseRole_Expired(t *testing.T) {
	token, err := NewDevToken(secret, "doctor", -time.Minute)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseRole(secret, token); err == nil {
		t.Error("expired token verified")
	}
}

func setupEcho(mwSecret []byte) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(mwSecret))
	e.GET("/ping", func(c echo.Context) error {
		role, _ := c.Get(RoleContextKey).(string)
		return c.String(http.StatusOK, role)
	})
	return e
}

func TestMiddleware_RequiresToken(t *testing.T) {
	e := setupEcho(secret)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	token, _ := NewDevToken(secret, "nurse", time.Minute)
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d", rec.Code)
	}
	if rec.Body.String() != "nurse" {
		t.Errorf("role in context = %q", rec.Body.String())
	}
}

func TestMiddleware_DisabledWithoutSecret(t *testing.T) {
	e := setupEcho(nil)
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", rec.Code)
	}
}

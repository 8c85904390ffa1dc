package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testKey = []byte("test-signing-key")

func signToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func doRequest(mw echo.MiddlewareFunc, header string) (*echo.HTTPError, echo.Context) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := mw(func(c echo.Context) error { return nil })(c)
	httpErr, _ := err.(*echo.HTTPError)
	return httpErr, c
}

func TestJWTMiddlewareValidToken(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Roles: []string{"lab_tech"},
	}
	token := signToken(t, claims)

	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	httpErr, c := doRequest(mw, "Bearer "+token)
	if httpErr != nil {
		t.Fatalf("unexpected error: %v", httpErr)
	}
	if got := UserIDFromContext(c.Request().Context()); got != "user-1" {
		t.Errorf("expected subject user-1, got %q", got)
	}
	if roles := RolesFromContext(c.Request().Context()); len(roles) != 1 || roles[0] != "lab_tech" {
		t.Errorf("unexpected roles: %v", roles)
	}
}

func TestJWTMiddlewareMissingHeader(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	httpErr, _ := doRequest(mw, "")
	if httpErr == nil || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", httpErr)
	}
}

func TestJWTMiddlewareBadToken(t *testing.T) {
	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	httpErr, _ := doRequest(mw, "Bearer not-a-token")
	if httpErr == nil || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", httpErr)
	}
}

func TestJWTMiddlewareExpiredToken(t *testing.T) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token := signToken(t, claims)

	mw := JWTMiddleware(JWTConfig{SigningKey: testKey})
	httpErr, _ := doRequest(mw, "Bearer "+token)
	if httpErr == nil || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %v", httpErr)
	}
}

func TestDevAuthMiddlewareGrantsAdmin(t *testing.T) {
	httpErr, c := doRequest(DevAuthMiddleware(), "")
	if httpErr != nil {
		t.Fatalf("unexpected error: %v", httpErr)
	}
	roles := RolesFromContext(c.Request().Context())
	if len(roles) != 1 || roles[0] != "admin" {
		t.Errorf("expected admin role, got %v", roles)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	run := func(userRoles []string, required ...string) *echo.HTTPError {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		ctx := context.WithValue(c.Request().Context(), UserRolesKey, userRoles)
		c.SetRequest(c.Request().WithContext(ctx))

		err := RequireRole(required...)(func(c echo.Context) error { return nil })(c)
		httpErr, _ := err.(*echo.HTTPError)
		return httpErr
	}

	if err := run([]string{"lab_tech"}, "lab_tech"); err != nil {
		t.Errorf("expected lab_tech to pass, got %v", err)
	}
	if err := run([]string{"admin"}, "lab_tech"); err != nil {
		t.Errorf("expected admin to pass, got %v", err)
	}
	if err := run([]string{"reception"}, "lab_tech"); err == nil || err.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

func guardedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", identityMiddleware([]byte(testSecret)), func(c *gin.Context) {
		c.String(http.StatusOK, currentUser(c).ID)
	})
	router.GET("/admin", identityMiddleware([]byte(testSecret)), requireRole(domain.RoleAdmin, domain.RoleSeller), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestIdentityMiddleware_MissingToken(t *testing.T) {
	rec := httptest.NewRecorder()
	guardedRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestIdentityMiddleware_BadSignature(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()
	guardedRouter().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestIdentityMiddleware_StoresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", tokenFor(t, domain.User{ID: "u-42", Email: "u@example.com"}))
	rec := httptest.NewRecorder()
	guardedRouter().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "u-42" {
		t.Fatalf("unexpected user id %q", rec.Body.String())
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name  string
		roles []string
		want  int
	}{
		{"plain user", []string{"USER"}, http.StatusForbidden},
		{"admin", []string{domain.RoleAdmin}, http.StatusOK},
		{"seller", []string{domain.RoleSeller}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", tokenFor(t, domain.User{ID: "u1", Roles: tc.roles}))
			rec := httptest.NewRecorder()
			guardedRouter().ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

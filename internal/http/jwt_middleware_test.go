package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBearerAuthMiddleware_AllowsValidAccessToken(t *testing.T) {
	s := newTestServer(nil)
	token, err := s.tokens.IssueAccess("u1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	r := gin.New()
	r.GET("/protected", BearerAuthMiddleware(s.auth), func(c *gin.Context) {
		userID, ok := GetAuthUserID(c)
		if !ok || userID != "u1" {
			c.Status(http.StatusUnauthorized)
			return
		}
		c.Status(http.StatusOK)
	})

	for _, scheme := range []string{"Bearer ", "bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", scheme+token)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for scheme %q, got %d", scheme, rec.Code)
		}
	}
}

func TestBearerAuthMiddleware_RejectsMissingOrInvalidToken(t *testing.T) {
	s := newTestServer(nil)

	r := gin.New()
	r.GET("/protected", BearerAuthMiddleware(s.auth), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, header := range []string{"", "Bearer", "Bearer ", "Basic dXNlcjpwdw==", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %q, got %d", header, rec.Code)
		}
		if rec.Header().Get("WWW-Authenticate") != "Bearer" {
			t.Fatalf("expected WWW-Authenticate header for %q", header)
		}
	}
}

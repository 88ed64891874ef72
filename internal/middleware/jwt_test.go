package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"antidote/internal/utils"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(secret string) *gin.Engine {
	r := gin.New()
	r.GET("/protected", JWTAuthMiddleware(secret), func(c *gin.Context) {
		userID := c.MustGet("userID").(uint)
		role := c.MustGet("userRole").(string)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})
	return r
}

func TestJWTAuthMiddlewareMissingHeader(t *testing.T) {
	r := protectedRouter("s3cret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestJWTAuthMiddlewareBadToken(t *testing.T) {
	r := protectedRouter("s3cret")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestJWTAuthMiddlewareValidToken(t *testing.T) {
	token, err := utils.GenerateJWT(9, "clinic", "s3cret")
	if err != nil {
		t.Fatalf("GenerateJWT failed: %v", err)
	}
	r := protectedRouter("s3cret")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPhoneLimiterIsPerPhone(t *testing.T) {
	limiter := NewPhoneLimiter(0, 1) // One send ever per phone
	if !limiter.Allow("+919876543210") {
		t.Fatal("expected first send to pass")
	}
	if limiter.Allow("+919876543210") {
		t.Fatal("expected second send to be limited")
	}
	if !limiter.Allow("+919812345678") {
		t.Fatal("expected a different phone to have its own budget")
	}
}

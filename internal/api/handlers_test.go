package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"antidote/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(t *testing.T, handler gin.HandlerFunc, path, body string, ctxValues map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.POST(path, func(c *gin.Context) {
		for k, v := range ctxValues {
			c.Set(k, v)
		}
		handler(c)
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestIsValidPhone(t *testing.T) {
	valid := []string{"9876543210", "+919876543210", "6123456789"}
	for _, p := range valid {
		if !isValidPhone(p) {
			t.Errorf("expected %q to be valid", p)
		}
	}
	invalid := []string{"12345", "5876543210", "98765432101", "+1415555000", "abcdefghij"}
	for _, p := range invalid {
		if isValidPhone(p) {
			t.Errorf("expected %q to be invalid", p)
		}
	}
}

func TestIsValidUsername(t *testing.T) {
	if !isValidUsername("clinic_admin9") {
		t.Error("expected alphanumeric username to be valid")
	}
	if isValidUsername("ab") || isValidUsername("9starts-with-digit") || isValidUsername("has space") {
		t.Error("expected malformed usernames to be invalid")
	}
}

func TestRegisterHandlerRejectsBadUsername(t *testing.T) {
	w := postJSON(t, RegisterHandler(nil), "/auth/register",
		`{"username":"x","password":"longenough1"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRegisterHandlerRejectsShortPassword(t *testing.T) {
	w := postJSON(t, RegisterHandler(nil), "/auth/register",
		`{"username":"validname","password":"short"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLoginHandlerRejectsMissingFields(t *testing.T) {
	w := postJSON(t, LoginHandler(nil, "secret"), "/auth/login", `{"username":"only"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSendOTPHandlerRejectsBadPhone(t *testing.T) {
	limiter := middleware.NewPhoneLimiter(rate.Every(time.Minute), 1)
	w := postJSON(t, SendOTPHandler(nil, limiter, false), "/auth/otp/send",
		`{"phone":"12345"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSendOTPHandlerRateLimited(t *testing.T) {
	// Zero burst: every request over the limit
	limiter := middleware.NewPhoneLimiter(rate.Every(time.Minute), 0)
	w := postJSON(t, SendOTPHandler(nil, limiter, false), "/auth/otp/send",
		`{"phone":"+919876543210"}`, nil)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
}

func TestCreateLeadHandlerRequiresAuth(t *testing.T) {
	w := postJSON(t, CreateLeadHandler(nil, nil, nil, nil), "/api/leads",
		`{"clinic_id":1,"patient_name":"A","phone":"9876543210"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCreateLeadHandlerRejectsBadPhone(t *testing.T) {
	w := postJSON(t, CreateLeadHandler(nil, nil, nil, nil), "/api/leads",
		`{"clinic_id":1,"patient_name":"A","phone":"123"}`,
		map[string]any{"userID": uint(7)})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateDisputeHandlerRejectsMissingReason(t *testing.T) {
	w := postJSON(t, CreateDisputeHandler(nil), "/api/clinic/disputes",
		`{"lead_id":3}`, map[string]any{"clinicID": uint(1)})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAdminUpdateDisputeRejectsUnknownStatus(t *testing.T) {
	r := gin.New()
	r.PATCH("/api/admin/disputes/:id", AdminUpdateDisputeHandler(nil, nil))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/disputes/1",
		strings.NewReader(`{"status":"whatever"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestRecommendHandlerRejectsEmptyQuery(t *testing.T) {
	w := postJSON(t, RecommendHandler(nil, nil, nil, nil), "/api/recommendations", `{}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetRecommendationsRejectsBadSession(t *testing.T) {
	r := gin.New()
	r.GET("/api/recommendations/:session_id", GetRecommendationsHandler(nil))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/recommendations/not-a-uuid", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestComparePackagesRequiresProcedureID(t *testing.T) {
	r := gin.New()
	r.GET("/api/packages/compare", ComparePackagesHandler(nil))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/packages/compare", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUpdateLeadStatusRejectsUnknownStatus(t *testing.T) {
	r := gin.New()
	r.PATCH("/api/clinic/leads/:id", func(c *gin.Context) {
		c.Set("clinicID", uint(1))
		UpdateLeadStatusHandler(nil)(c)
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/clinic/leads/5",
		strings.NewReader(`{"status":"archived"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"leavedesk/internal/shared/model"
)

func doRequest(t *testing.T, cfg Config, path, authHeader string, next http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	Middleware(cfg)(next).ServeHTTP(rec, req)
	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	return body["message"]
}

func TestMiddlewarePublicRoutesPass(t *testing.T) {
	cfg := testConfig()
	for _, path := range []string{"/api/user/signup", "/api/user/login", "/health", "/metrics", "/ws/notifications"} {
		rec := doRequest(t, cfg, path, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected pass-through, got %d", path, rec.Code)
		}
	}
}

func TestMiddlewareNoToken(t *testing.T) {
	rec := doRequest(t, testConfig(), "/api/leave/getAllLeaveRequests", "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := messageOf(t, rec); msg != "Authentication failed - No token provided" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestMiddlewareInvalidToken(t *testing.T) {
	rec := doRequest(t, testConfig(), "/api/leave/getAllLeaveRequests", "Bearer garbage", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := messageOf(t, rec); msg != "Invalid token - Please login again" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestMiddlewareExpiredToken(t *testing.T) {
	cfg := testConfig()
	token, err := generateExpiredToken(cfg, "usr-1", model.RoleEmployee)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	rec := doRequest(t, cfg, "/api/leave/getAllLeaveRequests", "Bearer "+token, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := messageOf(t, rec); msg != "Token expired - Please login again" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestMiddlewareInjectsAuthUser(t *testing.T) {
	cfg := testConfig()
	token, err := GenerateToken(cfg, "usr-42", model.RoleManager)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	var seen *AuthUser
	rec := doRequest(t, cfg, "/api/leave/getAllLeaveRequests", "Bearer "+token, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetAuthUser(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.ID != "usr-42" || seen.Role != model.RoleManager {
		t.Fatalf("unexpected auth user: %+v", seen)
	}
}

func TestRequireRoles(t *testing.T) {
	handler := RequireRoles(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, model.RoleManager)

	// 角色不在白名单
	req := httptest.NewRequest(http.MethodGet, "/api/user/getAllEmployees", nil)
	req = req.WithContext(WithAuthUser(req.Context(), &AuthUser{ID: "usr-1", Role: model.RoleEmployee}))
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if msg := messageOf(t, rec); msg != "Forbidden Request. Insufficient permissions" {
		t.Fatalf("unexpected message: %q", msg)
	}

	// 角色在白名单
	req = httptest.NewRequest(http.MethodGet, "/api/user/getAllEmployees", nil)
	req = req.WithContext(WithAuthUser(req.Context(), &AuthUser{ID: "usr-2", Role: model.RoleManager}))
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// 无认证信息
	req = httptest.NewRequest(http.MethodGet, "/api/user/getAllEmployees", nil)
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without auth user, got %d", rec.Code)
	}
}

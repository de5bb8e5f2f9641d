package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecurityHeadersOnEveryResponse(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	mw := SecurityHeaders()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	mw(handler).ServeHTTP(rec, req)

	want := map[string]string{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"Referrer-Policy":           "no-referrer",
		"Strict-Transport-Security": "max-age=63072000; includeSubDomains",
	}
	for name, value := range want {
		if got := rec.Header().Get(name); got != value {
			t.Fatalf("expected %s: %q, got %q", name, value, got)
		}
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Fatal("expected Content-Security-Policy header")
	}
	if rec.Header().Get("Permissions-Policy") == "" {
		t.Fatal("expected Permissions-Policy header")
	}
}

func TestSecurityHeaderValuesReturnsCopy(t *testing.T) {
	first := SecurityHeaderValues()
	first["X-Frame-Options"] = "tampered"
	second := SecurityHeaderValues()
	if second["X-Frame-Options"] != "DENY" {
		t.Fatal("mutating the returned map must not affect the shared set")
	}
}

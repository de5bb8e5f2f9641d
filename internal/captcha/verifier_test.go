package captcha

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestVerifier(t *testing.T, handler http.HandlerFunc) *Verifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	v := NewVerifier("test-secret", 0.5, nil)
	v.endpoint = srv.URL
	return v
}

func TestVerifySkippedWithoutSecret(t *testing.T) {
	v := NewVerifier("", 0.5, nil)
	if !v.Verify(context.Background(), "anything-at-all") {
		t.Fatal("verification must pass when no secret key is configured")
	}
	if !v.Verify(context.Background(), "") {
		t.Fatal("bypass applies regardless of token content")
	}
}

func TestVerifyScoreThreshold(t *testing.T) {
	tests := []struct {
		name    string
		success bool
		score   float64
		want    bool
	}{
		{"below threshold", true, 0.4, false},
		{"at threshold", true, 0.5, true},
		{"above threshold", true, 0.9, true},
		{"provider failure", false, 0.9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintf(w, `{"success":%t,"score":%g}`, tt.success, tt.score)
			})
			if got := v.Verify(context.Background(), "tok"); got != tt.want {
				t.Fatalf("Verify() = %t, want %t", got, tt.want)
			}
		})
	}
}

func TestVerifyFailsClosed(t *testing.T) {
	t.Run("endpoint error status", func(t *testing.T) {
		v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		if v.Verify(context.Background(), "tok") {
			t.Fatal("non-200 response must fail closed")
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "{not json")
		})
		if v.Verify(context.Background(), "tok") {
			t.Fatal("unparseable response must fail closed")
		}
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		v := NewVerifier("test-secret", 0.5, nil)
		v.endpoint = "http://127.0.0.1:1/siteverify"
		if v.Verify(context.Background(), "tok") {
			t.Fatal("network failure must fail closed")
		}
	})
}

func TestVerifySendsSecretAndToken(t *testing.T) {
	var gotSecret, gotToken string
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotSecret = r.PostFormValue("secret")
		gotToken = r.PostFormValue("response")
		fmt.Fprint(w, `{"success":true,"score":0.9}`)
	})

	if !v.Verify(context.Background(), "client-token") {
		t.Fatal("expected verification to pass")
	}
	if gotSecret != "test-secret" || gotToken != "client-token" {
		t.Fatalf("expected secret/token forwarded, got %q/%q", gotSecret, gotToken)
	}
}
